// Package cart is the client-side basket: one line per menu item, priced on
// every read and persisted under a single storage key between sessions.
//
// A Cart is plain mutable state owned by one caller. It takes no locks.
package cart

import (
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/pricing"
)

// Line is one distinct menu item in the cart. Name, price and image are
// copied when the item is first added; later catalog edits do not reach the
// cart.
type Line struct {
	ItemID   string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
	Quantity int             `json:"quantity"`
}

func (l Line) UnitPrice() decimal.Decimal { return l.Price }
func (l Line) Count() int                 { return l.Quantity }

// Snapshot is the cart as observers see it after a change.
type Snapshot struct {
	Lines []Line `json:"lines"`
	Count int    `json:"count"`
	pricing.Breakdown
	AmountForFreeDelivery decimal.Decimal `json:"amount_for_free_delivery"`
}

// Cart holds lines in insertion order.
type Cart struct {
	lines     []Line
	storage   Storage
	observers map[int]func(Snapshot)
	nextID    int
}

// New loads the cart from storage. Unreadable or malformed data yields an
// empty cart. A nil storage keeps the cart in memory only.
func New(storage Storage) *Cart {
	if storage == nil {
		storage = &MemoryStorage{}
	}
	c := &Cart{storage: storage, observers: make(map[int]func(Snapshot))}
	c.lines = load(storage)
	return c
}

// Add puts quantity units of item in the cart, merging with an existing line.
// A quantity below 1 adds one unit.
func (c *Cart) Add(item models.MenuItem, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity += quantity
	} else {
		c.lines = append(c.lines, Line{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			ImageURL: item.ImageURL,
			Quantity: quantity,
		})
	}
	c.changed()
}

// SetQuantity replaces the quantity of an existing line. Quantities below 1
// and unknown ids are ignored.
func (c *Cart) SetQuantity(itemID string, quantity int) {
	if quantity < 1 {
		return
	}
	i := c.index(itemID)
	if i < 0 {
		return
	}
	c.lines[i].Quantity = quantity
	c.changed()
}

// Remove drops the line for itemID if there is one.
func (c *Cart) Remove(itemID string) {
	i := c.index(itemID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.changed()
}

// Clear empties the cart and its storage.
func (c *Cart) Clear() {
	c.lines = nil
	if err := c.storage.Clear(); err != nil {
		log.WithError(err).Warn("Failed to clear stored cart")
	}
	c.notify()
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Count is the total number of units, as shown on the cart badge.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal    { return pricing.Subtotal(c.lines) }
func (c *Cart) Tax() decimal.Decimal         { return pricing.Tax(c.Subtotal()) }
func (c *Cart) DeliveryFee() decimal.Decimal { return pricing.Delivery(c.Subtotal()) }
func (c *Cart) Total() decimal.Decimal       { return pricing.Quote(c.Subtotal()).Total }

// AmountForFreeDelivery is how much more must be added before delivery is
// free, zero once it already is.
func (c *Cart) AmountForFreeDelivery() decimal.Decimal {
	return pricing.ShortOfFreeDelivery(c.Subtotal())
}

// Snapshot captures the current lines and prices.
func (c *Cart) Snapshot() Snapshot {
	subtotal := c.Subtotal()
	return Snapshot{
		Lines:                 c.Lines(),
		Count:                 c.Count(),
		Breakdown:             pricing.Quote(subtotal),
		AmountForFreeDelivery: pricing.ShortOfFreeDelivery(subtotal),
	}
}

// Subscribe registers fn to be called synchronously after every change. The
// returned func removes it.
func (c *Cart) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	return func() { delete(c.observers, id) }
}

func (c *Cart) index(itemID string) int {
	for i, l := range c.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

// changed persists the lines, then tells observers.
func (c *Cart) changed() {
	if err := save(c.storage, c.lines); err != nil {
		log.WithError(err).Warn("Failed to persist cart")
	}
	c.notify()
}

func (c *Cart) notify() {
	if len(c.observers) == 0 {
		return
	}
	snap := c.Snapshot()
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.observers[id]; ok {
			fn(snap)
		}
	}
}
