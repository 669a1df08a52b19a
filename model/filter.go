package models

// SortMode selects the ordering applied after filtering.
type SortMode string

const (
	SortDefault       SortMode = "default"
	SortPriceLowHigh  SortMode = "price-low-high"
	SortPriceHighLow  SortMode = "price-high-low"
	SortRatingHighLow SortMode = "rating"
)

// ParseSortMode maps a raw value to a SortMode. Unknown values fall back to SortDefault.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortPriceLowHigh, SortPriceHighLow, SortRatingHighLow:
		return SortMode(s)
	default:
		return SortDefault
	}
}

// MaxPriceDefault is the upper bound of the reset price range.
const MaxPriceDefault int64 = 100000

// FilterConfig describes the catalog view. An empty Category means all categories.
// MinPrice and MaxPrice are inclusive.
type FilterConfig struct {
	Category string   `json:"category"`
	MinPrice int64    `json:"min_price"`
	MaxPrice int64    `json:"max_price"`
	Search   string   `json:"search"`
	Sort     SortMode `json:"sort"`
}

// DefaultFilter returns the configuration a view starts with and resets to.
func DefaultFilter() FilterConfig {
	return FilterConfig{
		MinPrice: 0,
		MaxPrice: MaxPriceDefault,
		Sort:     SortDefault,
	}
}
