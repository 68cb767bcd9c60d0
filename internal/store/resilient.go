package store

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Shubz284/biryani-house/internal/metrics"
	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/patterns"
)

const serviceName = "storefront"

// Policy configures how the resilient store treats each call.
type Policy struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration
	// Attempts is the total number of tries for transient failures.
	Attempts      int
	Backoff       time.Duration
	MaxBackoff    time.Duration
	MaxConcurrent int
	// QueueWait is how long a call waits for a bulkhead slot.
	QueueWait time.Duration
}

// DefaultPolicy retries a transient failure twice with a short backoff.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:       patterns.StoreTimeout,
		Attempts:      3,
		Backoff:       100 * time.Millisecond,
		MaxBackoff:    time.Second,
		MaxConcurrent: 50,
		QueueWait:     time.Second,
	}
}

// Resilient decorates a Store with a per-attempt timeout, a bulkhead, a
// circuit breaker and bounded retries. Only TransientError failures are
// retried or counted by the breaker; NotFound and validation outcomes pass
// straight through.
type Resilient struct {
	inner    Store
	policy   Policy
	breaker  *patterns.CircuitBreakerWrapper
	bulkhead *patterns.Bulkhead
}

// NewResilient wraps inner with policy.
func NewResilient(inner Store, policy Policy) *Resilient {
	if policy.QueueWait <= 0 {
		policy.QueueWait = time.Second
	}
	return &Resilient{
		inner:  inner,
		policy: policy,
		breaker: patterns.NewCircuitBreakerWithSettings("DocumentStore", serviceName, patterns.BreakerSettings{
			IsFailure: models.IsTransient,
		}),
		bulkhead: patterns.NewBulkhead(policy.MaxConcurrent, "document-store", serviceName).WithWait(policy.QueueWait),
	}
}

// Breaker exposes the breaker for status reporting.
func (r *Resilient) Breaker() *patterns.CircuitBreakerWrapper { return r.breaker }

func (r *Resilient) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()

	err := r.bulkhead.Execute(ctx, func() error {
		return patterns.Retry(ctx, patterns.RetryPolicy{
			Attempts:   r.policy.Attempts,
			Backoff:    r.policy.Backoff,
			MaxBackoff: r.policy.MaxBackoff,
			Retryable: func(err error) bool {
				return models.IsTransient(err) && !patterns.IsRejection(err)
			},
			OnRetry: func(attempt int, err error) {
				metrics.StoreRetries.WithLabelValues(op).Inc()
				log.WithFields(log.Fields{
					"operation": op,
					"attempt":   attempt,
				}).WithError(err).Warn("Retrying document store call")
			},
		}, func() error {
			_, cbErr := r.breaker.Execute(func() (interface{}, error) {
				actx, cancel := patterns.WithTimeout(ctx, r.policy.Timeout)
				defer cancel()
				return nil, fn(actx)
			})
			if patterns.IsRejection(cbErr) {
				return &models.TransientError{Op: op, Err: patterns.FormatError("DocumentStore", cbErr)}
			}
			return cbErr
		})
	})
	if errors.Is(err, patterns.ErrBulkheadFull) {
		err = &models.TransientError{Op: op, Err: err}
	}

	metrics.StoreOperationDuration.WithLabelValues(op, outcome(err)).Observe(time.Since(start).Seconds())
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case models.IsTransient(err):
		return "transient"
	}
	return "error"
}

func (r *Resilient) ListMenuItems(ctx context.Context, filter models.MenuFilter) (items []models.MenuItem, err error) {
	err = r.do(ctx, "menu.list", func(ctx context.Context) error {
		items, err = r.inner.ListMenuItems(ctx, filter)
		return err
	})
	return items, err
}

func (r *Resilient) GetMenuItem(ctx context.Context, id string) (item models.MenuItem, err error) {
	err = r.do(ctx, "menu.get", func(ctx context.Context) error {
		item, err = r.inner.GetMenuItem(ctx, id)
		return err
	})
	return item, err
}

func (r *Resilient) GetMenuItems(ctx context.Context, ids []string) (items map[string]models.MenuItem, err error) {
	err = r.do(ctx, "menu.get_many", func(ctx context.Context) error {
		items, err = r.inner.GetMenuItems(ctx, ids)
		return err
	})
	return items, err
}

// InsertMenuItem names the item before the first attempt so a retry after a
// lost acknowledgement finds the committed copy instead of writing a second.
func (r *Resilient) InsertMenuItem(ctx context.Context, item models.MenuItem) (stored models.MenuItem, err error) {
	if item.ID == "" {
		item.ID = r.inner.NewID()
	}
	attempt := 0
	err = r.do(ctx, "menu.insert", func(ctx context.Context) error {
		attempt++
		stored, err = r.inner.InsertMenuItem(ctx, item)
		if attempt > 1 && errors.Is(err, ErrDuplicateID) {
			stored, err = r.inner.GetMenuItem(ctx, item.ID)
		}
		return err
	})
	return stored, err
}

func (r *Resilient) ReplaceMenuItem(ctx context.Context, item models.MenuItem) (stored models.MenuItem, err error) {
	err = r.do(ctx, "menu.replace", func(ctx context.Context) error {
		stored, err = r.inner.ReplaceMenuItem(ctx, item)
		return err
	})
	return stored, err
}

func (r *Resilient) DeleteMenuItem(ctx context.Context, id string) (item models.MenuItem, err error) {
	err = r.do(ctx, "menu.delete", func(ctx context.Context) error {
		item, err = r.inner.DeleteMenuItem(ctx, id)
		return err
	})
	return item, err
}

func (r *Resilient) DeleteAllMenuItems(ctx context.Context) (n int64, err error) {
	err = r.do(ctx, "menu.delete_all", func(ctx context.Context) error {
		n, err = r.inner.DeleteAllMenuItems(ctx)
		return err
	})
	return n, err
}

func (r *Resilient) ListOrders(ctx context.Context, filter models.OrderFilter, sort models.OrderSort) (orders []models.Order, err error) {
	err = r.do(ctx, "order.list", func(ctx context.Context) error {
		orders, err = r.inner.ListOrders(ctx, filter, sort)
		return err
	})
	return orders, err
}

func (r *Resilient) GetOrder(ctx context.Context, id string) (order models.Order, err error) {
	err = r.do(ctx, "order.get", func(ctx context.Context) error {
		order, err = r.inner.GetOrder(ctx, id)
		return err
	})
	return order, err
}

// InsertOrder is idempotent across retries in the same way as InsertMenuItem.
func (r *Resilient) InsertOrder(ctx context.Context, order models.Order) (stored models.Order, err error) {
	if order.ID == "" {
		order.ID = r.inner.NewID()
	}
	attempt := 0
	err = r.do(ctx, "order.insert", func(ctx context.Context) error {
		attempt++
		stored, err = r.inner.InsertOrder(ctx, order)
		if attempt > 1 && errors.Is(err, ErrDuplicateID) {
			stored, err = r.inner.GetOrder(ctx, order.ID)
		}
		return err
	})
	return stored, err
}

func (r *Resilient) SetOrderStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) (order models.Order, err error) {
	err = r.do(ctx, "order.set_status", func(ctx context.Context) error {
		order, err = r.inner.SetOrderStatus(ctx, id, status, at)
		return err
	})
	return order, err
}

func (r *Resilient) DeleteOrder(ctx context.Context, id string) (order models.Order, err error) {
	err = r.do(ctx, "order.delete", func(ctx context.Context) error {
		order, err = r.inner.DeleteOrder(ctx, id)
		return err
	})
	return order, err
}

func (r *Resilient) NewID() string { return r.inner.NewID() }

func (r *Resilient) Ping(ctx context.Context) error {
	return r.do(ctx, "ping", r.inner.Ping)
}

func (r *Resilient) Close(ctx context.Context) error {
	return r.inner.Close(ctx)
}
