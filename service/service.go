// Package service implements the cafeteria workflows. Every operation takes the calling
// Principal, checks its role, and runs its writes in a single store transaction.
package service

import (
	"context"
	"log/slog"

	"school-cafe-api/auth"
	"school-cafe-api/events"
	"school-cafe-api/ledger"
	"school-cafe-api/logger"
	"school-cafe-api/store"
)

type Deps struct {
	Store       *store.Store
	Ledger      *ledger.Ledger
	Credentials auth.Credentials
	Events      events.Publisher
	Log         *slog.Logger
}

type Services struct {
	Accounts  *AccountService
	Menu      *MenuService
	Orders    *OrderService
	Purchases *PurchaseService
	Reports   *ReportService
}

func New(d Deps) *Services {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Ledger == nil {
		d.Ledger = ledger.New(d.Log)
	}
	return &Services{
		Accounts:  &AccountService{base: newBase(d, "accounts"), creds: d.Credentials},
		Menu:      &MenuService{base: newBase(d, "menu")},
		Orders:    &OrderService{base: newBase(d, "orders")},
		Purchases: &PurchaseService{base: newBase(d, "purchases")},
		Reports:   newReportService(newBase(d, "reports")),
	}
}

type base struct {
	store  *store.Store
	ledger *ledger.Ledger
	events events.Publisher
	log    *slog.Logger
}

func newBase(d Deps, component string) base {
	return base{
		store:  d.Store,
		ledger: d.Ledger,
		events: d.Events,
		log:    logger.WithComponent(d.Log, component),
	}
}

// publish runs after commit. A broker failure is logged and never undoes the change.
func (b *base) publish(ctx context.Context, e events.Event) {
	if err := b.events.Publish(ctx, e); err != nil {
		b.log.Error("Failed to publish event", "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}
