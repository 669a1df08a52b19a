package catalog

import (
	"cmp"
	"slices"
	"strings"

	models "cartcraft/model"
)

// PriceRange is one of the preset price buttons.
type PriceRange struct {
	Label string `json:"label"`
	Min   int64  `json:"min"`
	Max   int64  `json:"max"`
}

// PriceRanges are the presets offered next to the custom min/max inputs.
var PriceRanges = []PriceRange{
	{Label: "Under ₹1,000", Min: 0, Max: 1000},
	{Label: "₹1,000 - ₹3,000", Min: 1000, Max: 3000},
	{Label: "₹3,000 - ₹5,000", Min: 3000, Max: 5000},
	{Label: "Above ₹5,000", Min: 5000, Max: models.MaxPriceDefault},
}

// allCategories is the selector value meaning "no category filter".
const allCategories = "All"

// DeriveView filters products by category, price and search term, then sorts the
// result. The input slice is never modified and ties keep their input order.
func DeriveView(products []models.Product, cfg models.FilterConfig) []models.Product {
	search := strings.ToLower(cfg.Search)
	filterCategory := cfg.Category != "" && !strings.EqualFold(cfg.Category, allCategories)

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if filterCategory && p.Category != cfg.Category {
			continue
		}
		if p.Price < cfg.MinPrice || p.Price > cfg.MaxPrice {
			continue
		}
		if search != "" && !matches(p, search) {
			continue
		}
		out = append(out, p)
	}

	switch cfg.Sort {
	case models.SortPriceLowHigh:
		slices.SortStableFunc(out, func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) })
	case models.SortPriceHighLow:
		slices.SortStableFunc(out, func(a, b models.Product) int { return cmp.Compare(b.Price, a.Price) })
	case models.SortRatingHighLow:
		slices.SortStableFunc(out, func(a, b models.Product) int { return cmp.Compare(b.Rating, a.Rating) })
	}
	return out
}

// matches reports whether the lower-cased term occurs in name, description or category.
func matches(p models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}
