// Package store persists menu items and orders in a document store. Every
// order is one document with its line items embedded, so each mutation
// touches a single document and relies on the store's per-document
// atomicity.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Shubz284/biryani-house/internal/models"
)

// ErrDuplicateID is returned by an insert whose record already carries an id
// that is in use.
var ErrDuplicateID = errors.New("duplicate id")

// MenuRepository stores catalog entries.
type MenuRepository interface {
	// ListMenuItems returns matching items, newest first.
	ListMenuItems(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (models.MenuItem, error)
	// GetMenuItems resolves ids to live items. Unknown ids are left out.
	GetMenuItems(ctx context.Context, ids []string) (map[string]models.MenuItem, error)
	// InsertMenuItem stores item and returns the stored copy. An item without
	// an id gets a fresh one.
	InsertMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
	ReplaceMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) (models.MenuItem, error)
	DeleteAllMenuItems(ctx context.Context) (int64, error)
}

// OrderRepository stores orders with their embedded line items.
type OrderRepository interface {
	ListOrders(ctx context.Context, filter models.OrderFilter, sort models.OrderSort) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	// InsertOrder stores order, keeping a preset id and minting one otherwise.
	InsertOrder(ctx context.Context, order models.Order) (models.Order, error)
	// SetOrderStatus overwrites the status; concurrent writers race and the
	// last one wins.
	SetOrderStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) (models.Order, error)
	DeleteOrder(ctx context.Context, id string) (models.Order, error)
}

// Store is the full document store.
type Store interface {
	MenuRepository
	OrderRepository
	// NewID mints an identifier the store accepts on insert.
	NewID() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
