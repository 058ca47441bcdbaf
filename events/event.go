// Package events defines workflow notifications published to the message broker.
package events

import (
	"context"
	"time"
)

const (
	TypePackageUsed       = "package.used"
	TypePackageCompleted  = "package.completed"
	TypePackageAdjusted   = "package.adjusted"
	TypeOrderCompleted    = "order.completed"
	TypeApprovalFiled     = "discount_approval.filed"
	TypeApprovalResolved  = "discount_approval.resolved"
	TypeBackfillCompleted = "package_backfill.completed"
)

// Event is one workflow notification. Payload must be JSON encodable.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event of the given type
func New(eventType string, payload interface{}) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events after the change they describe has been committed
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

// Types returns the type of every recorded event in publish order
func (r *Recorder) Types() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
