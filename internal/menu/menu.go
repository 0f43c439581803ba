// Package menu holds the static catalog: menu items, categories and the
// global drink option list. Items are immutable during a service session
// except through the admin endpoints.
package menu

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("menu item not found")

// LocalizedName carries the display name per supported language.
type LocalizedName struct {
	ES string `json:"es"`
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// Item is a catalog entry.
type Item struct {
	ID           string          `json:"id"`
	Name         LocalizedName   `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	AllowExtras  bool            `json:"allow_extras"`
	DrinkOptions []string        `json:"drink_options,omitempty"` // overrides the global list when set
	Enabled      bool            `json:"enabled"`
}

// Journal matches state.Journal; the catalog reuses the same outbox.
type Journal interface {
	MarkDirty(section string)
}

// Catalog owns the menu items and drink options.
type Catalog struct {
	mu           sync.RWMutex
	items        map[string]Item
	order        []string // insertion order for stable listings
	drinks       []string
	journal      Journal
	section      string
	drinkSection string
}

// NewCatalog creates an empty catalog. journal may be nil.
func NewCatalog(journal Journal, itemSection, drinkSection string) *Catalog {
	return &Catalog{
		items:        make(map[string]Item),
		journal:      journal,
		section:      itemSection,
		drinkSection: drinkSection,
	}
}

func (c *Catalog) dirty(section string) {
	if c.journal != nil {
		c.journal.MarkDirty(section)
	}
}

// List returns enabled items in insertion order. includeDisabled widens it
// to the full catalog for the admin view.
func (c *Catalog) List(includeDisabled bool) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		item := c.items[id]
		if item.Enabled || includeDisabled {
			out = append(out, item)
		}
	}
	return out
}

// Get returns the item by id.
func (c *Catalog) Get(id string) (Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

// Upsert inserts or replaces an item.
func (c *Catalog) Upsert(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[item.ID]; !ok {
		c.order = append(c.order, item.ID)
	}
	c.items[item.ID] = item
	c.dirty(c.section)
}

// Disable soft-deletes an item so historical records keep resolving.
func (c *Catalog) Disable(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return ErrItemNotFound
	}
	item.Enabled = false
	c.items[id] = item
	c.dirty(c.section)
	return nil
}

// DrinkOptions returns the global drink list. Items with their own
// DrinkOptions override it.
func (c *Catalog) DrinkOptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.drinks...)
}

// SetDrinkOptions replaces the global drink list.
func (c *Catalog) SetDrinkOptions(drinks []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drinks = append([]string(nil), drinks...)
	c.dirty(c.drinkSection)
}

// legacyDrinkNames maps drink labels renamed after launch. Persisted blobs
// predating the rename are rewritten at load time.
var legacyDrinkNames = map[string]string{
	"Coca-Cola":      "Coca Cola",
	"Coca-Cola Zero": "Coca Cola Zero",
}

// migrateDrinkName rewrites a legacy drink label to its current form.
func migrateDrinkName(name string) string {
	if current, ok := legacyDrinkNames[name]; ok {
		return current
	}
	return name
}

// Load replaces the catalog contents from persisted snapshots, applying
// the legacy drink-name rewrite to both the global list and item overrides.
func (c *Catalog) Load(items []Item, drinks []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]Item, len(items))
	c.order = c.order[:0]
	for _, item := range items {
		for i, d := range item.DrinkOptions {
			item.DrinkOptions[i] = migrateDrinkName(d)
		}
		c.items[item.ID] = item
		c.order = append(c.order, item.ID)
	}
	c.drinks = c.drinks[:0]
	for _, d := range drinks {
		c.drinks = append(c.drinks, migrateDrinkName(d))
	}
}

// Snapshot returns the catalog contents for persistence.
func (c *Catalog) Snapshot() ([]Item, []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.items[id])
	}
	return items, append([]string(nil), c.drinks...)
}
