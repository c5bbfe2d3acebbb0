package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (kopecks). Storing integers keeps the
// ledger's conditional SQL arithmetic exact; decimal is only used at the JSON boundary.
type Money int64

var (
	ErrMoneyPrecision = errors.New("amount must have at most two decimal places")
	ErrMoneyRange     = errors.New("amount is out of range")
)

// NewMoney converts a decimal amount of major units into Money.
func NewMoney(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Truncate(2)) {
		return 0, ErrMoneyPrecision
	}
	minor := d.Shift(2).BigInt()
	if !minor.IsInt64() {
		return 0, ErrMoneyRange
	}
	return Money(minor.Int64()), nil
}

// ParseMoney parses a major-unit amount such as "150" or "99.90".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return NewMoney(d)
}

// Rubles builds Money from whole major units.
func Rubles(n int64) Money {
	return Money(n * 100)
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := NewMoney(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
