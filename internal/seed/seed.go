// Package seed loads the starter menu into a store.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/store"
)

//go:embed menu.yaml
var menuYAML []byte

type entry struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Price        decimal.Decimal   `yaml:"price"`
	Category     models.Category   `yaml:"category"`
	ImageURL     string            `yaml:"image_url"`
	SpiceLevel   models.SpiceLevel `yaml:"spice_level"`
	IsVegetarian bool              `yaml:"is_vegetarian"`
	IsFeatured   bool              `yaml:"is_featured"`
	Available    bool              `yaml:"available"`
}

// Menu returns the starter catalog in listing order. The items carry no
// ids or timestamps.
func Menu() ([]models.MenuItem, error) {
	return parse(menuYAML)
}

func parse(data []byte) ([]models.MenuItem, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var entries []entry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode seed menu: %w", err)
	}

	items := make([]models.MenuItem, 0, len(entries))
	for i, e := range entries {
		if e.Name == "" || e.Price.IsNegative() || !e.Category.Valid() {
			return nil, fmt.Errorf("seed menu entry %d (%q) is incomplete", i, e.Name)
		}
		items = append(items, models.MenuItem{
			Name:         e.Name,
			Description:  e.Description,
			Price:        e.Price,
			Category:     e.Category,
			ImageURL:     e.ImageURL,
			Available:    e.Available,
			SpiceLevel:   e.SpiceLevel,
			IsVegetarian: e.IsVegetarian,
			IsFeatured:   e.IsFeatured,
		})
	}
	return items, nil
}

// Options controls a seeding run.
type Options struct {
	// Reset removes every existing menu item first.
	Reset bool
	Now   time.Time
}

// Run inserts the starter menu into repo and returns the stored items.
// Creation times step back one millisecond per item so a newest-first
// listing shows the menu in file order.
func Run(ctx context.Context, repo store.MenuRepository, opts Options) ([]models.MenuItem, error) {
	items, err := Menu()
	if err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	now := opts.Now.UTC()

	if opts.Reset {
		n, err := repo.DeleteAllMenuItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("clear menu: %w", err)
		}
		log.WithField("removed", n).Info("Cleared existing menu items")
	}

	stored := make([]models.MenuItem, 0, len(items))
	for i, item := range items {
		at := now.Add(-time.Duration(i) * time.Millisecond)
		item.CreatedAt = at
		item.UpdatedAt = at
		saved, err := repo.InsertMenuItem(ctx, item)
		if err != nil {
			return stored, fmt.Errorf("insert %q: %w", item.Name, err)
		}
		stored = append(stored, saved)
	}

	log.WithField("count", len(stored)).Info("Seeded menu items")
	return stored, nil
}
