package models

// CartLine is a product snapshot plus the quantity held in the cart.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price x quantity for the line.
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Totals are derived from the cart lines and never stored on their own.
type Totals struct {
	Total int64 `json:"cart_total"`
	Count int   `json:"cart_count"`
}

// ComputeTotals recomputes the totals from scratch.
func ComputeTotals(lines []CartLine) Totals {
	var t Totals
	for _, l := range lines {
		t.Total += l.Subtotal()
		t.Count += l.Quantity
	}
	return t
}
