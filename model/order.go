package models

import "time"

// Summary is the priced view of a cart at a point in time.
type Summary struct {
	Subtotal int64  `json:"subtotal"`
	Shipping int64  `json:"shipping"`
	Discount int64  `json:"discount"`
	Coupon   string `json:"coupon,omitempty"`
	Total    int64  `json:"total"`
}

type Order struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	Items     []CartLine `json:"items"`
	Summary   Summary    `json:"summary"`
	CreatedAt time.Time  `json:"created_at"`
}
