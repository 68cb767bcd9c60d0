package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineItem represents one catalog item within a placed order. Name and
// price are captured at order time and stay authoritative for display.
type OrderLineItem struct {
	MenuItemID   string          `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

func (l OrderLineItem) UnitPrice() decimal.Decimal { return l.Price }
func (l OrderLineItem) Count() int                 { return l.Quantity }

// Order represents a customer order
type Order struct {
	ID                  string          `json:"id"`
	CustomerName        string          `json:"customer_name"`
	CustomerPhone       string          `json:"customer_phone"`
	CustomerEmail       string          `json:"customer_email,omitempty"`
	DeliveryAddress     string          `json:"delivery_address"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	OrderDate           time.Time       `json:"order_date"`
	Status              OrderStatus     `json:"status"`
	Items               []OrderLineItem `json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// OrderSubmission is the checkout payload as sent by a client. Numeric fields
// stay raw until the validator has looked at them; Status is accepted but
// never trusted.
type OrderSubmission struct {
	CustomerName        string                `json:"customer_name"`
	CustomerPhone       string                `json:"customer_phone"`
	CustomerEmail       string                `json:"customer_email,omitempty"`
	DeliveryAddress     string                `json:"delivery_address"`
	SpecialInstructions string                `json:"special_instructions,omitempty"`
	TotalAmount         json.RawMessage       `json:"total_amount"`
	OrderDate           *time.Time            `json:"order_date,omitempty"`
	Status              string                `json:"status,omitempty"`
	Items               []OrderLineSubmission `json:"items"`
}

// OrderLineSubmission is one raw line of an OrderSubmission.
type OrderLineSubmission struct {
	MenuItemID   string          `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name"`
	Quantity     json.RawMessage `json:"quantity"`
	Price        json.RawMessage `json:"price"`
	Subtotal     json.RawMessage `json:"subtotal"`
}

// StatusUpdateRequest is the body of PATCH /orders/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderFilter narrows an order listing. Zero fields match everything.
type OrderFilter struct {
	Status        *OrderStatus
	CustomerPhone string
}

// Matches reports whether o satisfies every set field of f.
func (f OrderFilter) Matches(o Order) bool {
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	if f.CustomerPhone != "" && o.CustomerPhone != f.CustomerPhone {
		return false
	}
	return true
}

// Sortable order fields
const (
	SortOrderDate   = "order_date"
	SortCreatedAt   = "created_at"
	SortTotalAmount = "total_amount"
)

// OrderSort is a single-key ordering for order listings.
type OrderSort struct {
	Field      string
	Descending bool
}

// DefaultOrderSort is newest order date first.
var DefaultOrderSort = OrderSort{Field: SortOrderDate, Descending: true}

// ParseOrderSort parses "field" or "-field". An empty string yields the default.
func ParseOrderSort(s string) (OrderSort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultOrderSort, nil
	}
	sort := OrderSort{Field: s}
	if strings.HasPrefix(s, "-") {
		sort = OrderSort{Field: s[1:], Descending: true}
	}
	switch sort.Field {
	case SortOrderDate, SortCreatedAt, SortTotalAmount:
		return sort, nil
	}
	return OrderSort{}, fmt.Errorf("cannot sort by %q", sort.Field)
}

func (s OrderSort) String() string {
	if s.Descending {
		return "-" + s.Field
	}
	return s.Field
}

// Less orders a before b according to s.
func (s OrderSort) Less(a, b Order) bool {
	var cmp int
	switch s.Field {
	case SortCreatedAt:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	case SortTotalAmount:
		cmp = a.TotalAmount.Cmp(b.TotalAmount)
	default:
		cmp = a.OrderDate.Compare(b.OrderDate)
	}
	if s.Descending {
		return cmp > 0
	}
	return cmp < 0
}

// OrderLineView is a line item joined with the current catalog record, which
// is nil when the item has since been removed from the menu.
type OrderLineView struct {
	OrderLineItem
	MenuItem *MenuItem `json:"menu_item,omitempty"`
}

// OrderView is an order as returned by the query endpoints.
type OrderView struct {
	Order
	Items []OrderLineView `json:"items"`
}
