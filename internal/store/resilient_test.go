package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubz284/biryani-house/internal/models"
)

// flakyStore fails GetMenuItem with a transient error a set number of times.
type flakyStore struct {
	*Memory
	failures int
	calls    int
	hang     bool
}

func (f *flakyStore) GetMenuItem(ctx context.Context, id string) (models.MenuItem, error) {
	f.calls++
	if f.hang {
		<-ctx.Done()
		return models.MenuItem{}, &models.TransientError{Op: "menu.get", Err: ctx.Err()}
	}
	if f.calls <= f.failures {
		return models.MenuItem{}, &models.TransientError{Op: "menu.get", Err: errors.New("connection reset")}
	}
	return f.Memory.GetMenuItem(ctx, id)
}

// lossyStore commits inserts but reports the first few as timed out, the way
// a write looks when the acknowledgement is lost on the wire.
type lossyStore struct {
	*Memory
	lost    int
	inserts int
}

func (l *lossyStore) InsertOrder(ctx context.Context, o models.Order) (models.Order, error) {
	l.inserts++
	stored, err := l.Memory.InsertOrder(ctx, o)
	if err == nil && l.inserts <= l.lost {
		return models.Order{}, &models.TransientError{Op: "order.insert", Err: context.DeadlineExceeded}
	}
	return stored, err
}

func (l *lossyStore) InsertMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	l.inserts++
	stored, err := l.Memory.InsertMenuItem(ctx, item)
	if err == nil && l.inserts <= l.lost {
		return models.MenuItem{}, &models.TransientError{Op: "menu.insert", Err: context.DeadlineExceeded}
	}
	return stored, err
}

func fastPolicy() Policy {
	return Policy{
		Timeout:       50 * time.Millisecond,
		Attempts:      3,
		Backoff:       time.Millisecond,
		MaxBackoff:    5 * time.Millisecond,
		MaxConcurrent: 4,
		QueueWait:     50 * time.Millisecond,
	}
}

func TestResilient_RetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{Memory: NewMemory(), failures: 2}
	item, err := inner.InsertMenuItem(ctx, menuItem("raita", models.CategorySides, false, true, t0))
	require.NoError(t, err)

	r := NewResilient(inner, fastPolicy())
	got, err := r.GetMenuItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "raita", got.Name)
	assert.Equal(t, 3, inner.calls)
}

func TestResilient_SurfacesTransientAfterExhaustion(t *testing.T) {
	inner := &flakyStore{Memory: NewMemory(), failures: 10}
	r := NewResilient(inner, fastPolicy())

	_, err := r.GetMenuItem(context.Background(), "any")
	require.Error(t, err)
	assert.True(t, models.IsTransient(err))
	assert.Equal(t, 3, inner.calls)
}

func TestResilient_NotFoundIsNotRetried(t *testing.T) {
	inner := &flakyStore{Memory: NewMemory()}
	r := NewResilient(inner, fastPolicy())

	_, err := r.GetMenuItem(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 1, inner.calls)
}

func TestResilient_AttemptTimeout(t *testing.T) {
	inner := &flakyStore{Memory: NewMemory(), hang: true}
	policy := fastPolicy()
	policy.Attempts = 1
	r := NewResilient(inner, policy)

	start := time.Now()
	_, err := r.GetMenuItem(context.Background(), "any")
	assert.True(t, models.IsTransient(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResilient_PassesThroughWrites(t *testing.T) {
	ctx := context.Background()
	r := NewResilient(NewMemory(), fastPolicy())

	stored, err := r.InsertOrder(ctx, order("9876543210", models.OrderStatusPending, t0, 300))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)

	_, err = r.DeleteOrder(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, r.Ping(ctx))
}

func TestResilient_RetriedInsertOrderWritesOnce(t *testing.T) {
	ctx := context.Background()
	inner := &lossyStore{Memory: NewMemory(), lost: 1}
	r := NewResilient(inner, fastPolicy())

	stored, err := r.InsertOrder(ctx, order("9876543210", models.OrderStatusPending, t0, 300))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.inserts)

	all, err := inner.ListOrders(ctx, models.OrderFilter{}, models.DefaultOrderSort)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, all[0].ID, stored.ID)
	assert.Equal(t, "9876543210", stored.CustomerPhone)
}

func TestResilient_RetriedInsertMenuItemWritesOnce(t *testing.T) {
	ctx := context.Background()
	inner := &lossyStore{Memory: NewMemory(), lost: 1}
	r := NewResilient(inner, fastPolicy())

	stored, err := r.InsertMenuItem(ctx, menuItem("raita", models.CategorySides, false, true, t0))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.inserts)

	items, err := inner.ListMenuItems(ctx, models.MenuFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, items[0].ID, stored.ID)
}

func TestResilient_DuplicateIDOnFirstAttemptSurfaces(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	first, err := inner.InsertOrder(ctx, order("9876543210", models.OrderStatusPending, t0, 300))
	require.NoError(t, err)

	r := NewResilient(inner, fastPolicy())
	clash := order("9123456780", models.OrderStatusPending, t0, 100)
	clash.ID = first.ID
	_, err = r.InsertOrder(ctx, clash)
	assert.ErrorIs(t, err, ErrDuplicateID)

	kept, err := inner.GetOrder(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", kept.CustomerPhone)
}
