// Package orders validates checkout submissions, owns the order status
// lifecycle and serves order lookups joined against the live catalog.
package orders

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Shubz284/biryani-house/internal/events"
	"github.com/Shubz284/biryani-house/internal/metrics"
	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/store"
)

// Manager creates orders, moves them between statuses and deletes them.
//
// Status changes are permissive: any of the six statuses may follow any
// other, terminal ones included. Only membership in the enumeration is
// checked.
type Manager struct {
	repo      store.OrderRepository
	validator Validator
	publisher events.Publisher
	now       func() time.Time
}

// NewManager creates a lifecycle manager. A nil publisher drops events.
func NewManager(repo store.OrderRepository, validator Validator, publisher events.Publisher) *Manager {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Manager{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create validates sub and stores it as a new pending order. Any status in
// sub is ignored.
func (m *Manager) Create(ctx context.Context, sub models.OrderSubmission) (models.Order, error) {
	draft, err := m.validator.Validate(sub)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("validation_failed").Inc()
		log.WithFields(log.Fields{
			"customer_phone": sub.CustomerPhone,
			"items":          len(sub.Items),
		}).WithError(err).Info("Order rejected")
		return models.Order{}, err
	}

	now := m.now().UTC()
	draft.Status = models.OrderStatusPending
	if draft.OrderDate.IsZero() {
		draft.OrderDate = now
	}
	draft.CreatedAt = now
	draft.UpdatedAt = now

	order, err := m.repo.InsertOrder(ctx, draft)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		return models.Order{}, err
	}

	metrics.OrdersTotal.WithLabelValues("created").Inc()
	metrics.OrderAmount.Observe(order.TotalAmount.InexactFloat64())
	log.WithFields(log.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
		"total":    order.TotalAmount.StringFixed(2),
	}).Info("Order created")

	m.publish(ctx, events.OrderCreated, order)
	return order, nil
}

// SetStatus moves order id to the named status.
func (m *Manager) SetStatus(ctx context.Context, id, status string) (models.Order, error) {
	if status == "" {
		return models.Order{}, models.Invalid("status", "Status is required")
	}
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return models.Order{}, models.Invalid("status", status+" is not a valid status")
	}

	order, err := m.repo.SetOrderStatus(ctx, id, next, m.now().UTC())
	if err != nil {
		return models.Order{}, err
	}

	metrics.OrderStatusChanges.WithLabelValues(next.String()).Inc()
	log.WithFields(log.Fields{
		"order_id": id,
		"status":   next.String(),
	}).Info("Order status updated")

	m.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

// Delete removes an order together with its line items.
func (m *Manager) Delete(ctx context.Context, id string) (models.Order, error) {
	order, err := m.repo.DeleteOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	log.WithField("order_id", id).Info("Order deleted")

	m.publish(ctx, events.OrderDeleted, order)
	return order, nil
}

// publish never fails the caller; the order change is already stored.
func (m *Manager) publish(ctx context.Context, eventType string, order models.Order) {
	err := m.publisher.Publish(ctx, events.NewEvent(eventType, order, m.now().UTC()))
	if err != nil {
		metrics.EventsPublished.WithLabelValues(eventType, "failed").Inc()
		log.WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).WithError(err).Warn("Failed to publish order event")
		return
	}
	metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()
}
