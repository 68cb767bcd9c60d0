package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubz284/biryani-house/internal/models"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func menuItem(name string, c models.Category, featured, available bool, created time.Time) models.MenuItem {
	return models.MenuItem{
		Name:        name,
		Description: name + " description",
		Price:       decimal.NewFromInt(100),
		Category:    c,
		Available:   available,
		IsFeatured:  featured,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func order(phone string, status models.OrderStatus, date time.Time, total int64) models.Order {
	return models.Order{
		CustomerName:    "Asha",
		CustomerPhone:   phone,
		DeliveryAddress: "12 MG Road",
		TotalAmount:     decimal.NewFromInt(total),
		OrderDate:       date,
		Status:          status,
		Items: []models.OrderLineItem{{
			MenuItemID: "m1", MenuItemName: "Raita", Quantity: 1,
			Price: decimal.NewFromInt(total), Subtotal: decimal.NewFromInt(total),
		}},
		CreatedAt: date,
		UpdatedAt: date,
	}
}

func TestMemory_ListMenuItems_FilterAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.InsertMenuItem(ctx, menuItem("old biryani", models.CategoryBiryani, true, true, t0))
	require.NoError(t, err)
	_, err = m.InsertMenuItem(ctx, menuItem("new biryani", models.CategoryBiryani, false, true, t0.Add(time.Hour)))
	require.NoError(t, err)
	_, err = m.InsertMenuItem(ctx, menuItem("lassi", models.CategoryBeverages, true, false, t0.Add(2*time.Hour)))
	require.NoError(t, err)

	all, err := m.ListMenuItems(ctx, models.MenuFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"lassi", "new biryani", "old biryani"}, names(all))

	biryani := models.CategoryBiryani
	featured := true
	got, err := m.ListMenuItems(ctx, models.MenuFilter{Category: &biryani, IsFeatured: &featured})
	require.NoError(t, err)
	assert.Equal(t, []string{"old biryani"}, names(got))

	available := false
	got, err = m.ListMenuItems(ctx, models.MenuFilter{Available: &available})
	require.NoError(t, err)
	assert.Equal(t, []string{"lassi"}, names(got))
}

func TestMemory_MenuItemNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	stored, err := m.InsertMenuItem(ctx, menuItem("papad", models.CategorySides, false, true, t0))
	require.NoError(t, err)

	_, err = m.GetMenuItem(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = m.DeleteMenuItem(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = m.ReplaceMenuItem(ctx, models.MenuItem{ID: "missing"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := m.ListMenuItems(ctx, models.MenuFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1, "failed deletes leave the store unchanged")
	assert.Equal(t, stored.ID, all[0].ID)
}

func TestMemory_GetMenuItemsSkipsUnknown(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a, _ := m.InsertMenuItem(ctx, menuItem("kheer", models.CategorySweets, false, true, t0))

	found, err := m.GetMenuItems(ctx, []string{a.ID, "gone"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "kheer", found[a.ID].Name)
}

func TestMemory_ListOrders_FilterAndSort(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a, _ := m.InsertOrder(ctx, order("9876543210", models.OrderStatusPending, t0, 300))
	b, _ := m.InsertOrder(ctx, order("9876543210", models.OrderStatusDelivered, t0.Add(time.Hour), 100))
	c, _ := m.InsertOrder(ctx, order("9123456780", models.OrderStatusPending, t0.Add(2*time.Hour), 200))

	got, err := m.ListOrders(ctx, models.OrderFilter{}, models.DefaultOrderSort)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(got))

	got, err = m.ListOrders(ctx, models.OrderFilter{}, models.OrderSort{Field: models.SortTotalAmount})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(got))

	pending := models.OrderStatusPending
	got, err = m.ListOrders(ctx, models.OrderFilter{Status: &pending, CustomerPhone: "9876543210"}, models.DefaultOrderSort)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(got))
}

func TestMemory_OrdersAreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	stored, err := m.InsertOrder(ctx, order("9876543210", models.OrderStatusPending, t0, 300))
	require.NoError(t, err)

	stored.Items[0].MenuItemName = "mutated"
	again, err := m.GetOrder(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Raita", again.Items[0].MenuItemName)
}

func TestMemory_SetOrderStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	stored, _ := m.InsertOrder(ctx, order("9876543210", models.OrderStatusPending, t0, 300))

	updated, err := m.SetOrderStatus(ctx, stored.ID, models.OrderStatusPreparing, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, updated.Status)
	assert.Equal(t, t0.Add(time.Minute), updated.UpdatedAt)

	_, err = m.SetOrderStatus(ctx, "missing", models.OrderStatusPreparing, t0)
	assert.ErrorIs(t, err, models.ErrNotFound)

	deleted, err := m.DeleteOrder(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, deleted.ID)

	_, err = m.GetOrder(ctx, stored.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = m.DeleteOrder(ctx, stored.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func names(items []models.MenuItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func ids(orders []models.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func TestMemory_InsertKeepsPresetID(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithIDs(func() string { return "minted" })
	assert.Equal(t, "minted", m.NewID())

	o := order("9876543210", models.OrderStatusPending, t0, 300)
	o.ID = "o-1"
	stored, err := m.InsertOrder(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, "o-1", stored.ID)

	_, err = m.InsertOrder(ctx, o)
	assert.ErrorIs(t, err, ErrDuplicateID)

	item := menuItem("papad", models.CategorySides, false, true, t0)
	item.ID = "m-1"
	_, err = m.InsertMenuItem(ctx, item)
	require.NoError(t, err)
	_, err = m.InsertMenuItem(ctx, item)
	assert.ErrorIs(t, err, ErrDuplicateID)

	all, err := m.ListOrders(ctx, models.OrderFilter{}, models.DefaultOrderSort)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
