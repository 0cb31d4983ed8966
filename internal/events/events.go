// Package events fans domain events out to message brokers and live
// WebSocket sessions after the originating transaction has committed.
package events

import (
	"context"
	"encoding/json"
	"time"

	"budgetly/internal/logger"
)

// Type names a domain event. It doubles as the AMQP routing key.
type Type string

const (
	BudgetCreated     Type = "budget.created"
	BudgetUpdated     Type = "budget.updated"
	BudgetActivated   Type = "budget.activated"
	BudgetDeactivated Type = "budget.deactivated"
	BudgetDeleted     Type = "budget.deleted"
	ExpenseCreated    Type = "expense.created"
	ExpenseDeleted    Type = "expense.deleted"
)

// Event is a fact about a user's data. Payload carries event-specific fields.
type Event struct {
	Type       Type           `json:"type"`
	UserID     uint           `json:"user_id"`
	ResourceID uint           `json:"resource_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// New stamps an event with the current time.
func New(t Type, userID, resourceID uint, payload map[string]any) Event {
	return Event{
		Type:       t,
		UserID:     userID,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// JSON encodes the event for the wire.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations are best effort: a failed
// delivery is logged and never reported back to the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Nop drops every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) {}

// Multi publishes to each publisher in order.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, event Event) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

// Recorder keeps published events in memory. Tests use it to assert what a
// service emitted.
type Recorder struct {
	Events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, event Event) {
	r.Events = append(r.Events, event)
}

// Types lists the recorded event types in publish order.
func (r *Recorder) Types() []Type {
	out := make([]Type, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}

func logPublishError(sink string, event Event, err error) {
	logger.Get().Warnw("event publish failed",
		"sink", sink,
		"type", event.Type,
		"user_id", event.UserID,
		"resource_id", event.ResourceID,
		"error", err,
	)
}
