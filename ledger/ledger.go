// Package ledger owns every change to user balances and dish stock.
//
// Each primitive is a single conditional UPDATE, so it is atomic on its own. Composite
// effects (order creation, cancellation, restock on approval) call the primitives on a
// transaction-bound store so that either all of them apply or none do.
package ledger

import (
	"context"
	"log/slog"

	"school-cafe-api/apperr"
	"school-cafe-api/logger"
	"school-cafe-api/models"
	"school-cafe-api/store"
)

type Ledger struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Ledger {
	return &Ledger{log: logger.WithComponent(log, "ledger")}
}

// AdjustBalance adds delta to the user's balance and returns the new balance.
// It fails with InsufficientFunds if the balance would go negative.
func (l *Ledger) AdjustBalance(ctx context.Context, tx *store.Store, userID uint, delta models.Money) (models.Money, error) {
	applied, err := tx.AddBalance(ctx, userID, delta)
	if err != nil {
		return 0, err
	}

	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !applied {
		l.log.Warn("Balance adjustment refused",
			"user_id", userID,
			"balance", u.Balance.String(),
			"delta", delta.String())
		return 0, apperr.New(apperr.InsufficientFunds,
			"Insufficient balance: %s available, %s required", u.Balance, -delta)
	}

	l.log.Debug("Balance adjusted", "user_id", userID, "delta", delta.String(), "balance", u.Balance.String())
	return u.Balance, nil
}

// AdjustStock adds delta to the dish quantity and returns the updated dish. Availability
// is recomputed as quantity > 0 unless an admin has hidden the dish.
// It fails with InsufficientStock if the quantity would go negative.
func (l *Ledger) AdjustStock(ctx context.Context, tx *store.Store, dishID uint, delta int) (*models.Dish, error) {
	applied, err := tx.AddStock(ctx, dishID, delta)
	if err != nil {
		return nil, err
	}

	d, err := tx.GetDish(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if !applied {
		l.log.Warn("Stock adjustment refused",
			"dish_id", dishID,
			"quantity", d.Quantity,
			"delta", delta)
		return nil, apperr.New(apperr.InsufficientStock,
			"Insufficient stock for %s: %d left", d.Name, d.Quantity)
	}

	l.log.Debug("Stock adjusted", "dish_id", dishID, "delta", delta, "quantity", d.Quantity)
	return d, nil
}
