package statemachine

import (
	"testing"

	"school-cafe-api/apperr"
	"school-cafe-api/models"
)

func TestOrders_CanTransition(t *testing.T) {
	tests := []struct {
		from  models.OrderStatus
		to    models.OrderStatus
		actor models.UserRole
		ok    bool
	}{
		{models.StatusPending, models.StatusServed, models.RoleCook, true},
		{models.StatusPending, models.StatusServed, models.RoleStudent, false},
		{models.StatusPending, models.StatusServed, models.RoleAdmin, false},
		{models.StatusPending, models.StatusCancelled, models.RoleStudent, true},
		{models.StatusPending, models.StatusCancelled, models.RoleCook, true},
		{models.StatusPending, models.StatusCancelled, models.RoleAdmin, true},
		{models.StatusServed, models.StatusCancelled, models.RoleCook, false},
		{models.StatusServed, models.StatusCancelled, models.RoleStudent, false},
		{models.StatusCancelled, models.StatusServed, models.RoleCook, false},
		{models.StatusServed, models.StatusServed, models.RoleCook, false},
	}
	for _, tt := range tests {
		err := Orders.CanTransition(tt.from, tt.to, tt.actor)
		if tt.ok && err != nil {
			t.Errorf("%s → %s by %s: unexpected error %v", tt.from, tt.to, tt.actor, err)
		}
		if !tt.ok && apperr.KindOf(err) != apperr.InvalidState {
			t.Errorf("%s → %s by %s: expected invalid_state, got %v", tt.from, tt.to, tt.actor, err)
		}
	}
}

func TestPurchaseRequests_TerminalStates(t *testing.T) {
	for _, s := range []models.PurchaseStatus{models.PurchaseApproved, models.PurchaseRejected} {
		if !PurchaseRequests.Terminal(s) {
			t.Errorf("%s should be terminal", s)
		}
		for _, to := range []models.PurchaseStatus{models.PurchaseApproved, models.PurchaseRejected} {
			if err := PurchaseRequests.CanTransition(s, to, models.RoleAdmin); err == nil {
				t.Errorf("%s → %s allowed", s, to)
			}
		}
	}
	if PurchaseRequests.Terminal(models.PurchasePending) {
		t.Error("pending should not be terminal")
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	got := Orders.ValidTransitionsFrom(models.StatusPending)
	if len(got) != 2 || got[0] != models.StatusServed || got[1] != models.StatusCancelled {
		t.Errorf("from pending = %v", got)
	}
	if n := len(Orders.ValidTransitionsFrom(models.StatusServed)); n != 0 {
		t.Errorf("served has %d exits", n)
	}
}
