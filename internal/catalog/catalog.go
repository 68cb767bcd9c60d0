// Package catalog manages the menu: filtered listing, lookup and the
// administrative writes, each validated against the menu item constraints
// before anything reaches the store.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Shubz284/biryani-house/internal/metrics"
	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/store"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

// Service manages menu item operations
type Service struct {
	repo store.MenuRepository
	now  func() time.Time
}

// NewService creates a catalog service over repo.
func NewService(repo store.MenuRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the items matching filter, newest first.
func (s *Service) List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	return s.repo.ListMenuItems(ctx, filter)
}

// Get returns one item or models.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (models.MenuItem, error) {
	return s.repo.GetMenuItem(ctx, id)
}

// Create validates in, applies defaults and stores the new item.
func (s *Service) Create(ctx context.Context, in models.MenuItemInput) (models.MenuItem, error) {
	item, err := checkInput(in)
	if err != nil {
		return models.MenuItem{}, err
	}
	now := s.now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	stored, err := s.repo.InsertMenuItem(ctx, item)
	if err != nil {
		return models.MenuItem{}, err
	}
	metrics.MenuChanges.WithLabelValues("create").Inc()
	log.WithFields(log.Fields{
		"menu_item_id": stored.ID,
		"name":         stored.Name,
		"category":     stored.Category.String(),
	}).Info("Menu item created")
	return stored, nil
}

// Update applies the fields present in patch to an existing item. The patch
// is validated before the item is looked up.
func (s *Service) Update(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	apply, err := checkPatch(patch)
	if err != nil {
		return models.MenuItem{}, err
	}
	item, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return models.MenuItem{}, err
	}
	apply(&item)
	item.UpdatedAt = s.now().UTC()

	stored, err := s.repo.ReplaceMenuItem(ctx, item)
	if err != nil {
		return models.MenuItem{}, err
	}
	metrics.MenuChanges.WithLabelValues("update").Inc()
	log.WithField("menu_item_id", id).Info("Menu item updated")
	return stored, nil
}

// Delete removes an item and returns it. Orders that reference it keep their
// own copy of its name and price.
func (s *Service) Delete(ctx context.Context, id string) (models.MenuItem, error) {
	item, err := s.repo.DeleteMenuItem(ctx, id)
	if err != nil {
		return models.MenuItem{}, err
	}
	metrics.MenuChanges.WithLabelValues("delete").Inc()
	log.WithField("menu_item_id", id).Info("Menu item deleted")
	return item, nil
}

func checkInput(in models.MenuItemInput) (models.MenuItem, error) {
	var issues models.ValidationError
	item := models.MenuItem{
		ImageURL:     models.CleanText(in.ImageURL),
		Available:    true,
		IsVegetarian: in.IsVegetarian,
		IsFeatured:   in.IsFeatured,
	}

	item.Name = checkName(&issues, in.Name)
	item.Description = checkDescription(&issues, in.Description)
	item.Price = checkPrice(&issues, in.Price)
	item.Category = checkCategory(&issues, in.Category)
	if in.SpiceLevel != "" {
		item.SpiceLevel = checkSpiceLevel(&issues, in.SpiceLevel)
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if item.ImageURL == "" {
		item.ImageURL = models.DefaultImageURL
	}

	return item, issues.Err()
}

func checkPatch(p models.MenuItemPatch) (func(*models.MenuItem), error) {
	var issues models.ValidationError
	var steps []func(*models.MenuItem)

	if p.Name != nil {
		name := checkName(&issues, *p.Name)
		steps = append(steps, func(m *models.MenuItem) { m.Name = name })
	}
	if p.Description != nil {
		desc := checkDescription(&issues, *p.Description)
		steps = append(steps, func(m *models.MenuItem) { m.Description = desc })
	}
	if len(p.Price) > 0 {
		price := checkPrice(&issues, p.Price)
		steps = append(steps, func(m *models.MenuItem) { m.Price = price })
	}
	if p.Category != nil {
		category := checkCategory(&issues, *p.Category)
		steps = append(steps, func(m *models.MenuItem) { m.Category = category })
	}
	if p.SpiceLevel != nil {
		spice := checkSpiceLevel(&issues, *p.SpiceLevel)
		steps = append(steps, func(m *models.MenuItem) { m.SpiceLevel = spice })
	}
	if p.ImageURL != nil {
		url := models.CleanText(*p.ImageURL)
		if url == "" {
			url = models.DefaultImageURL
		}
		steps = append(steps, func(m *models.MenuItem) { m.ImageURL = url })
	}
	if p.Available != nil {
		v := *p.Available
		steps = append(steps, func(m *models.MenuItem) { m.Available = v })
	}
	if p.IsVegetarian != nil {
		v := *p.IsVegetarian
		steps = append(steps, func(m *models.MenuItem) { m.IsVegetarian = v })
	}
	if p.IsFeatured != nil {
		v := *p.IsFeatured
		steps = append(steps, func(m *models.MenuItem) { m.IsFeatured = v })
	}

	if err := issues.Err(); err != nil {
		return nil, err
	}
	return func(m *models.MenuItem) {
		for _, step := range steps {
			step(m)
		}
	}, nil
}

func checkName(issues *models.ValidationError, raw string) string {
	name := models.CleanText(raw)
	switch {
	case name == "":
		issues.Add("name", "Name is required")
	case models.TooLong(name, maxNameLength):
		issues.Add("name", "Name cannot exceed %d characters", maxNameLength)
	}
	return name
}

func checkDescription(issues *models.ValidationError, raw string) string {
	desc := models.CleanText(raw)
	switch {
	case desc == "":
		issues.Add("description", "Description is required")
	case models.TooLong(desc, maxDescriptionLength):
		issues.Add("description", "Description cannot exceed %d characters", maxDescriptionLength)
	}
	return desc
}

func checkPrice(issues *models.ValidationError, raw []byte) decimal.Decimal {
	price, err := models.DecodeAmount(raw)
	switch {
	case errors.Is(err, models.ErrMissing):
		issues.Add("price", "Price is required")
	case err != nil:
		issues.Add("price", "Price must be a number")
	case price.IsNegative():
		issues.Add("price", "Price cannot be negative")
	case models.AmountTooLarge(price):
		issues.Add("price", "Price must be less than %s", models.MaxAmount.String())
	case !models.WholePaise(price):
		issues.Add("price", "Price cannot have more than 2 decimal places")
	}
	return price
}

func checkCategory(issues *models.ValidationError, raw string) models.Category {
	if raw == "" {
		issues.Add("category", "Category is required")
		return 0
	}
	c, err := models.ParseCategory(raw)
	if err != nil {
		issues.Add("category", "%s is not a valid category", raw)
	}
	return c
}

func checkSpiceLevel(issues *models.ValidationError, raw string) models.SpiceLevel {
	l, err := models.ParseSpiceLevel(raw)
	if err != nil {
		issues.Add("spice_level", "%s is not a valid spice level", raw)
	}
	return l
}
