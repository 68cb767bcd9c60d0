package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultImageURL is used for menu items created without an image.
const DefaultImageURL = "https://images.unsplash.com/photo-1563379091339-03b21ab4a4f8?w=400&q=80"

// MenuItem represents a purchasable catalog entry
type MenuItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     Category        `json:"category"`
	ImageURL     string          `json:"image_url"`
	Available    bool            `json:"available"`
	SpiceLevel   SpiceLevel      `json:"spice_level"`
	IsVegetarian bool            `json:"is_vegetarian"`
	IsFeatured   bool            `json:"is_featured"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MenuItemInput is the body of a create request. Price is kept raw so the
// validator can report a non-numeric value as a field issue.
type MenuItemInput struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        json.RawMessage `json:"price"`
	Category     string          `json:"category"`
	ImageURL     string          `json:"image_url"`
	Available    *bool           `json:"available"`
	SpiceLevel   string          `json:"spice_level"`
	IsVegetarian bool            `json:"is_vegetarian"`
	IsFeatured   bool            `json:"is_featured"`
}

// MenuItemPatch is the body of a partial update; nil fields are left alone.
type MenuItemPatch struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	Price        json.RawMessage `json:"price"`
	Category     *string         `json:"category"`
	ImageURL     *string         `json:"image_url"`
	Available    *bool           `json:"available"`
	SpiceLevel   *string         `json:"spice_level"`
	IsVegetarian *bool           `json:"is_vegetarian"`
	IsFeatured   *bool           `json:"is_featured"`
}

// MenuFilter narrows a catalog listing. Nil fields match everything.
type MenuFilter struct {
	Category   *Category
	IsFeatured *bool
	Available  *bool
}

// Matches reports whether item satisfies every set field of f.
func (f MenuFilter) Matches(item MenuItem) bool {
	if f.Category != nil && item.Category != *f.Category {
		return false
	}
	if f.IsFeatured != nil && item.IsFeatured != *f.IsFeatured {
		return false
	}
	if f.Available != nil && item.Available != *f.Available {
		return false
	}
	return true
}
