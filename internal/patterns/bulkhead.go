package patterns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shubz284/biryani-house/internal/metrics"
)

// ErrBulkheadFull is returned when no slot frees up within the wait time.
var ErrBulkheadFull = errors.New("bulkhead full")

// Bulkhead implements the bulkhead pattern for resource isolation
type Bulkhead struct {
	semaphore chan struct{}
	wait      time.Duration
	name      string
	service   string
}

// NewBulkhead creates a new bulkhead with specified capacity
func NewBulkhead(size int, name, service string) *Bulkhead {
	if size < 1 {
		size = 1
	}
	return &Bulkhead{
		semaphore: make(chan struct{}, size),
		wait:      time.Second,
		name:      name,
		service:   service,
	}
}

// WithWait sets how long Execute waits for a free slot.
func (b *Bulkhead) WithWait(d time.Duration) *Bulkhead {
	b.wait = d
	return b
}

// Execute runs a function within the bulkhead's resource limits
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	timer := time.NewTimer(b.wait)
	defer timer.Stop()

	select {
	case b.semaphore <- struct{}{}:
		metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Inc()

		defer func() {
			<-b.semaphore
			metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Dec()
		}()

		return fn()

	case <-timer.C:
		metrics.BulkheadRejectedRequests.WithLabelValues(b.service, b.name).Inc()
		return fmt.Errorf("bulkhead %s: timeout acquiring resource: %w", b.name, ErrBulkheadFull)

	case <-ctx.Done():
		return ctx.Err()
	}
}
