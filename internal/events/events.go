// Package events publishes order lifecycle notifications.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shubz284/biryani-house/internal/models"
)

// Event types
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderDeleted       = "order.deleted"
)

// Event is one change to an order.
type Event struct {
	ID            string             `json:"event_id"`
	Type          string             `json:"type"`
	OrderID       string             `json:"order_id"`
	Status        models.OrderStatus `json:"status"`
	CustomerPhone string             `json:"customer_phone"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// NewEvent describes a change of kind eventType to o.
func NewEvent(eventType string, o models.Order, at time.Time) Event {
	return Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		OrderID:       o.ID,
		Status:        o.Status,
		CustomerPhone: o.CustomerPhone,
		TotalAmount:   o.TotalAmount,
		OccurredAt:    at,
	}
}

// RoutingKey is the event type, with the new status appended for status
// changes so consumers can bind to e.g. order.status_changed.delivered.
func (e Event) RoutingKey() string {
	if e.Type == OrderStatusChanged {
		return e.Type + "." + e.Status.String()
	}
	return e.Type
}

// Publisher delivers events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	// Err, when set, is returned from every Publish after recording.
	Err error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of each recorded event in order.
func (r *Recorder) Types() []string {
	events := r.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}
