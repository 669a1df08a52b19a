// Package catalog loads the product list and answers read-only queries over it.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	models "cartcraft/model"
)

//go:embed products.json
var defaultProducts []byte

const (
	// FeaturedRating is the minimum rating for the home page picks.
	FeaturedRating = 4.7
	// FlashStock is the stock level at or below which a product is a flash deal.
	FlashStock = 5
	// ClearancePrice is the price below which a product is on clearance.
	ClearancePrice int64 = 1000

	DefaultRelatedLimit  = 4
	DefaultFeaturedLimit = 4
)

// Deal tabs.
const (
	DealsFeatured  = "featured"
	DealsFlash     = "flash"
	DealsClearance = "clearance"
)

// Catalog is an immutable, ordered product list.
type Catalog struct {
	products []models.Product
	byID     map[int64]int
}

// New builds a Catalog from products, rejecting duplicate ids.
func New(products []models.Product) (*Catalog, error) {
	c := &Catalog{
		products: append([]models.Product(nil), products...),
		byID:     make(map[int64]int, len(products)),
	}
	for i, p := range c.products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		if p.Price < 0 || p.Stock < 0 {
			return nil, fmt.Errorf("product %d: price and stock must be >= 0", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// Load reads the product list once. An empty path loads the built-in catalog;
// .yaml and .yml files are decoded as YAML, anything else as JSON. The load
// waits delay first to mimic a slow source.
func Load(ctx context.Context, path string, delay time.Duration) (*Catalog, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	raw, source := defaultProducts, "built-in catalog"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		raw, source = b, path
	}

	products, err := decode(raw, path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	c, err := New(products)
	if err != nil {
		return nil, err
	}
	log.Printf("[catalog] loaded %d products from %s", len(products), source)
	return c, nil
}

func decode(raw []byte, path string) ([]models.Product, error) {
	var products []models.Product
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &products); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// Products returns a copy of the full list in source order.
func (c *Catalog) Products() []models.Product {
	return append([]models.Product(nil), c.products...)
}

func (c *Catalog) FindByID(id int64) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// View applies DeriveView to the whole catalog.
func (c *Catalog) View(cfg models.FilterConfig) []models.Product {
	return DeriveView(c.products, cfg)
}

// Categories returns "All" followed by each distinct category in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	out := []string{allCategories}
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// InCategory matches the category name case-insensitively. An empty name returns everything.
func (c *Catalog) InCategory(name string) []models.Product {
	if name == "" {
		return c.Products()
	}
	return c.filter(func(p models.Product) bool { return strings.EqualFold(p.Category, name) })
}

// Related returns up to limit other products from p's category.
func (c *Catalog) Related(p models.Product, limit int) []models.Product {
	return first(c.filter(func(o models.Product) bool {
		return o.Category == p.Category && o.ID != p.ID
	}), limit)
}

// Featured returns up to limit products rated FeaturedRating or higher.
func (c *Catalog) Featured(limit int) []models.Product {
	return first(c.filter(func(p models.Product) bool { return p.Rating >= FeaturedRating }), limit)
}

// Deals returns the products for a deals tab. Unknown tabs show featured deals.
func (c *Catalog) Deals(tab string) []models.Product {
	switch tab {
	case DealsFlash:
		return c.filter(func(p models.Product) bool { return p.Stock <= FlashStock })
	case DealsClearance:
		return c.filter(func(p models.Product) bool { return p.Price < ClearancePrice })
	default:
		return c.filter(func(p models.Product) bool { return p.Featured })
	}
}

func (c *Catalog) filter(keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func first(ps []models.Product, limit int) []models.Product {
	if limit >= 0 && len(ps) > limit {
		return ps[:limit]
	}
	return ps
}
