package models

import (
	"fmt"
)

// Category is the closed set of menu sections.
type Category uint8

// Category values. The zero value is not a valid category.
const (
	categoryInvalid Category = iota
	CategoryBiryani
	CategoryBeverages
	CategorySweets
	CategorySides
	CategorySpecials
)

var categoryNames = map[Category]string{
	CategoryBiryani:   "biryani",
	CategoryBeverages: "beverages",
	CategorySweets:    "sweets",
	CategorySides:     "sides",
	CategorySpecials:  "specials",
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryBiryani, CategoryBeverages, CategorySweets, CategorySides, CategorySpecials}
}

// ParseCategory converts the wire name into a Category.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return categoryInvalid, fmt.Errorf("%q is not a valid category", s)
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SpiceLevel is the closed set of heat ratings. The zero value is SpiceNone.
type SpiceLevel uint8

// SpiceLevel values
const (
	SpiceNone SpiceLevel = iota
	SpiceMild
	SpiceMedium
	SpiceHot
	SpiceExtraHot
)

var spiceNames = [...]string{
	SpiceNone:     "none",
	SpiceMild:     "mild",
	SpiceMedium:   "medium",
	SpiceHot:      "hot",
	SpiceExtraHot: "extra_hot",
}

// ParseSpiceLevel converts the wire name into a SpiceLevel.
func ParseSpiceLevel(s string) (SpiceLevel, error) {
	for i, name := range spiceNames {
		if name == s {
			return SpiceLevel(i), nil
		}
	}
	return SpiceNone, fmt.Errorf("%q is not a valid spice level", s)
}

func (l SpiceLevel) String() string {
	if l.Valid() {
		return spiceNames[l]
	}
	return fmt.Sprintf("SpiceLevel(%d)", uint8(l))
}

// Valid reports whether l is one of the declared spice levels.
func (l SpiceLevel) Valid() bool {
	return int(l) < len(spiceNames)
}

func (l SpiceLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid spice level %d", uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *SpiceLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseSpiceLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus uint8

// OrderStatus values. The zero value is not a valid status.
const (
	statusInvalid OrderStatus = iota
	OrderStatusPending
	OrderStatusConfirmed
	OrderStatusPreparing
	OrderStatusOutForDelivery
	OrderStatusDelivered
	OrderStatusCancelled
)

var statusNames = map[OrderStatus]string{
	OrderStatusPending:        "pending",
	OrderStatusConfirmed:      "confirmed",
	OrderStatusPreparing:      "preparing",
	OrderStatusOutForDelivery: "out_for_delivery",
	OrderStatusDelivered:      "delivered",
	OrderStatusCancelled:      "cancelled",
}

// OrderStatuses lists every status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// ParseOrderStatus converts the wire name into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return statusInvalid, fmt.Errorf("%q is not a valid status", s)
}

func (s OrderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", uint8(s))
}

// Valid reports whether s is one of the six lifecycle states.
func (s OrderStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether s ends the normal lifecycle. Terminal orders can
// still be moved to another status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled:
		return true
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusOutForDelivery:
		return false
	}
	return false
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *OrderStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
