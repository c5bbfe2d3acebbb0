// Package events publishes domain events after workflow transactions commit.
package events

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock_events/mock_publisher.go -package=mock_events school-cafe-api/events Publisher

type Type string

const (
	OrderCreated            Type = "order.created"
	OrderCancelled          Type = "order.cancelled"
	OrderServed             Type = "order.served"
	PurchaseRequestCreated  Type = "purchase_request.created"
	PurchaseRequestApproved Type = "purchase_request.approved"
	PurchaseRequestRejected Type = "purchase_request.rejected"
)

// Event is the message body. Type doubles as the routing key.
type Event struct {
	Type       Type      `json:"type"`
	EntityID   uint      `json:"entity_id"`
	ActorID    uint      `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func New(t Type, entityID, actorID uint, payload any) Event {
	return Event{Type: t, EntityID: entityID, ActorID: actorID, OccurredAt: time.Now().UTC(), Payload: payload}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
