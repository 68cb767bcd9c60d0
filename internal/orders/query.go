package orders

import (
	"context"
	"strings"

	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/store"
)

// Query reads orders and joins each line with the current catalog entry.
type Query struct {
	orders store.OrderRepository
	menu   store.MenuRepository
}

// NewQuery creates a query service.
func NewQuery(orders store.OrderRepository, menu store.MenuRepository) *Query {
	return &Query{orders: orders, menu: menu}
}

// ParseListParams turns raw query parameters into a filter and sort order.
// Empty values mean "any" and the default sort respectively.
func ParseListParams(status, phone, sort string) (models.OrderFilter, models.OrderSort, error) {
	var issues models.ValidationError
	var filter models.OrderFilter

	if status = strings.TrimSpace(status); status != "" {
		st, err := models.ParseOrderStatus(status)
		if err != nil {
			issues.Add("status", "%s is not a valid status", status)
		} else {
			filter.Status = &st
		}
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		if !phonePattern.MatchString(phone) {
			issues.Add("customer_phone", "Valid 10-digit phone number required")
		}
		filter.CustomerPhone = phone
	}
	by, err := models.ParseOrderSort(sort)
	if err != nil {
		issues.Add("sort", "%s", err.Error())
	}

	if err := issues.Err(); err != nil {
		return models.OrderFilter{}, models.OrderSort{}, err
	}
	return filter, by, nil
}

// List returns matching orders in the requested order.
func (q *Query) List(ctx context.Context, filter models.OrderFilter, by models.OrderSort) ([]models.OrderView, error) {
	orders, err := q.orders.ListOrders(ctx, filter, by)
	if err != nil {
		return nil, err
	}
	live, err := q.menu.GetMenuItems(ctx, menuItemIDs(orders...))
	if err != nil {
		return nil, err
	}
	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, join(o, live))
	}
	return views, nil
}

// Get returns one order or models.ErrNotFound.
func (q *Query) Get(ctx context.Context, id string) (models.OrderView, error) {
	o, err := q.orders.GetOrder(ctx, id)
	if err != nil {
		return models.OrderView{}, err
	}
	live, err := q.menu.GetMenuItems(ctx, menuItemIDs(o))
	if err != nil {
		return models.OrderView{}, err
	}
	return join(o, live), nil
}

func menuItemIDs(orders ...models.Order) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, o := range orders {
		for _, line := range o.Items {
			if _, ok := seen[line.MenuItemID]; !ok {
				seen[line.MenuItemID] = struct{}{}
				ids = append(ids, line.MenuItemID)
			}
		}
	}
	return ids
}

// join attaches live catalog entries. The line's own name and price are left
// as recorded at order time.
func join(o models.Order, live map[string]models.MenuItem) models.OrderView {
	view := models.OrderView{Order: o, Items: make([]models.OrderLineView, 0, len(o.Items))}
	for _, line := range o.Items {
		lv := models.OrderLineView{OrderLineItem: line}
		if item, ok := live[line.MenuItemID]; ok {
			item := item
			lv.MenuItem = &item
		}
		view.Items = append(view.Items, lv)
	}
	return view
}
