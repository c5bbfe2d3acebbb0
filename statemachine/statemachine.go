// Package statemachine holds the authoritative transition tables for orders and
// purchase requests, and who may perform each transition.
package statemachine

import (
	"strings"

	"school-cafe-api/apperr"
	"school-cafe-api/models"
)

// Transition defines a valid state change and who can perform it
type Transition[S ~string] struct {
	From  S               `json:"from"`
	To    S               `json:"to"`
	Actor models.UserRole `json:"actor"`
}

type transitionKey[S ~string] struct {
	From  S
	To    S
	Actor models.UserRole
}

// Machine validates transitions against a fixed table.
type Machine[S ~string] struct {
	name        string
	transitions []Transition[S]
	lookup      map[transitionKey[S]]bool
}

func newMachine[S ~string](name string, transitions []Transition[S]) *Machine[S] {
	m := &Machine[S]{name: name, transitions: transitions, lookup: make(map[transitionKey[S]]bool)}
	for _, t := range transitions {
		m.lookup[transitionKey[S]{t.From, t.To, t.Actor}] = true
	}
	return m
}

// ValidTransitionsFrom returns all valid next states from a given state
func (m *Machine[S]) ValidTransitionsFrom(status S) []S {
	var nexts []S
	seen := map[S]bool{}
	for _, t := range m.transitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// Terminal reports whether no transition leaves status.
func (m *Machine[S]) Terminal(status S) bool {
	return len(m.ValidTransitionsFrom(status)) == 0
}

// CanTransition checks whether actor may move from one state to another. Leaving a
// terminal state, or any move the table does not list, is InvalidState.
func (m *Machine[S]) CanTransition(from, to S, actor models.UserRole) error {
	if m.lookup[transitionKey[S]{from, to, actor}] {
		return nil
	}
	if m.Terminal(from) {
		return apperr.New(apperr.InvalidState,
			"%s is already %s and cannot become %s", m.name, from, to)
	}
	return apperr.New(apperr.InvalidState,
		"invalid transition: %s → %s is not allowed for %s. Valid transitions from %s are: %s",
		from, to, actor, from, m.describeValidFrom(from))
}

func (m *Machine[S]) describeValidFrom(status S) string {
	nexts := m.ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Transitions returns the full table for documentation
func (m *Machine[S]) Transitions() []Transition[S] {
	return m.transitions
}

// Orders: a pending order is served by a cook or cancelled by its owner, a cook or an
// admin. Served and cancelled are terminal.
var Orders = newMachine("Order", []Transition[models.OrderStatus]{
	{From: models.StatusPending, To: models.StatusServed, Actor: models.RoleCook},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleStudent},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleCook},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleAdmin},
})

// PurchaseRequests: resolved exactly once, by an admin.
var PurchaseRequests = newMachine("Purchase request", []Transition[models.PurchaseStatus]{
	{From: models.PurchasePending, To: models.PurchaseApproved, Actor: models.RoleAdmin},
	{From: models.PurchasePending, To: models.PurchaseRejected, Actor: models.RoleAdmin},
})
