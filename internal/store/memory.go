package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shubz284/biryani-house/internal/models"
)

type menuEntry struct {
	item models.MenuItem
	seq  uint64
}

type orderEntry struct {
	order models.Order
	seq   uint64
}

// Memory is an in-process Store. It backs the development profile and the
// tests.
type Memory struct {
	mutex  sync.RWMutex
	menu   map[string]menuEntry
	orders map[string]orderEntry
	seq    uint64
	newID  func() string
}

// NewMemory creates an empty in-memory store with UUID identifiers.
func NewMemory() *Memory {
	return NewMemoryWithIDs(func() string { return uuid.New().String() })
}

// NewMemoryWithIDs creates an empty store that names records with nextID.
func NewMemoryWithIDs(nextID func() string) *Memory {
	return &Memory{
		menu:   make(map[string]menuEntry),
		orders: make(map[string]orderEntry),
		newID:  nextID,
	}
}

// NewID returns the next identifier from the store's generator.
func (m *Memory) NewID() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.newID()
}

func (m *Memory) next() uint64 {
	m.seq++
	return m.seq
}

func (m *Memory) ListMenuItems(_ context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entries := make([]menuEntry, 0, len(m.menu))
	for _, e := range m.menu {
		if filter.Matches(e.item) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.item.CreatedAt.Equal(b.item.CreatedAt) {
			return a.item.CreatedAt.After(b.item.CreatedAt)
		}
		return a.seq > b.seq
	})

	items := make([]models.MenuItem, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return items, nil
}

func (m *Memory) GetMenuItem(_ context.Context, id string) (models.MenuItem, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	e, ok := m.menu[id]
	if !ok {
		return models.MenuItem{}, models.ErrNotFound
	}
	return e.item, nil
}

func (m *Memory) GetMenuItems(_ context.Context, ids []string) (map[string]models.MenuItem, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	found := make(map[string]models.MenuItem, len(ids))
	for _, id := range ids {
		if e, ok := m.menu[id]; ok {
			found[id] = e.item
		}
	}
	return found, nil
}

func (m *Memory) InsertMenuItem(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if item.ID == "" {
		item.ID = m.newID()
	}
	if _, taken := m.menu[item.ID]; taken {
		return models.MenuItem{}, ErrDuplicateID
	}
	m.menu[item.ID] = menuEntry{item: item, seq: m.next()}
	return item, nil
}

func (m *Memory) ReplaceMenuItem(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.menu[item.ID]
	if !ok {
		return models.MenuItem{}, models.ErrNotFound
	}
	e.item = item
	m.menu[item.ID] = e
	return item, nil
}

func (m *Memory) DeleteMenuItem(_ context.Context, id string) (models.MenuItem, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.menu[id]
	if !ok {
		return models.MenuItem{}, models.ErrNotFound
	}
	delete(m.menu, id)
	return e.item, nil
}

func (m *Memory) DeleteAllMenuItems(_ context.Context) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	n := int64(len(m.menu))
	m.menu = make(map[string]menuEntry)
	return n, nil
}

func (m *Memory) ListOrders(_ context.Context, filter models.OrderFilter, by models.OrderSort) ([]models.Order, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entries := make([]orderEntry, 0, len(m.orders))
	for _, e := range m.orders {
		if filter.Matches(e.order) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if by.Less(a.order, b.order) {
			return true
		}
		if by.Less(b.order, a.order) {
			return false
		}
		if by.Descending {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	orders := make([]models.Order, len(entries))
	for i, e := range entries {
		orders[i] = cloneOrder(e.order)
	}
	return orders, nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (models.Order, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	e, ok := m.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	return cloneOrder(e.order), nil
}

func (m *Memory) InsertOrder(_ context.Context, order models.Order) (models.Order, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if order.ID == "" {
		order.ID = m.newID()
	}
	if _, taken := m.orders[order.ID]; taken {
		return models.Order{}, ErrDuplicateID
	}
	order = cloneOrder(order)
	m.orders[order.ID] = orderEntry{order: order, seq: m.next()}
	return cloneOrder(order), nil
}

func (m *Memory) SetOrderStatus(_ context.Context, id string, status models.OrderStatus, at time.Time) (models.Order, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	e.order.Status = status
	e.order.UpdatedAt = at
	m.orders[id] = e
	return cloneOrder(e.order), nil
}

func (m *Memory) DeleteOrder(_ context.Context, id string) (models.Order, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	delete(m.orders, id)
	return e.order, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close(context.Context) error { return nil }

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderLineItem(nil), o.Items...)
	return o
}
