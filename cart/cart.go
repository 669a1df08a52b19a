// Package cart holds the shopping cart aggregate and persists it after every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	models "cartcraft/model"
	"cartcraft/notify"
	"cartcraft/store"
)

// ErrStockLimit is returned when an add would push a line past the product's stock.
var ErrStockLimit = errors.New("stock limit reached")

// Cart is the ordered collection of cart lines. At most one line exists per
// product id and every line has quantity >= 1.
type Cart struct {
	mu     sync.Mutex
	lines  []models.CartLine
	totals models.Totals

	store    store.Store
	notifier notify.Notifier
}

// Open rehydrates the cart from the last snapshot in st. A missing or
// unreadable snapshot yields an empty cart.
func Open(ctx context.Context, st store.Store, n notify.Notifier) (*Cart, error) {
	if n == nil {
		n = notify.Discard{}
	}
	c := &Cart{store: st, notifier: n, lines: []models.CartLine{}}

	raw, err := st.Get(ctx, store.KeyCart)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	default:
		var lines []models.CartLine
		if err := json.Unmarshal(raw, &lines); err != nil {
			log.Printf("[cart.open] ignoring unreadable snapshot: %v", err)
			break
		}
		c.setLines(sanitize(lines))
	}
	return c, nil
}

// AddToCart increments the product's line or appends a new line with quantity 1.
// A line never grows past the product's stock.
func (c *Cart) AddToCart(ctx context.Context, p models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneLines(c.lines)
	i := indexOf(next, p.ID)
	held := 0
	if i >= 0 {
		held = next[i].Quantity
	}
	if held >= p.Stock {
		if p.Stock == 0 {
			c.notifier.Notify(notify.Error, fmt.Sprintf("%s is out of stock", p.Name))
		} else {
			c.notifier.Notify(notify.Error, fmt.Sprintf("Only %d of %s in stock", p.Stock, p.Name))
		}
		return ErrStockLimit
	}

	msg := fmt.Sprintf("%s added to cart", p.Name)
	if i >= 0 {
		next[i].Quantity++
		msg = fmt.Sprintf("%s quantity updated in cart", p.Name)
	} else {
		next = append(next, models.CartLine{Product: p, Quantity: 1})
	}

	if err := c.commit(ctx, next); err != nil {
		return err
	}
	c.notifier.Notify(notify.Success, msg)
	return nil
}

// RemoveFromCart deletes the line for id. Removing an absent id does nothing.
func (c *Cart) RemoveFromCart(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.lines, id)
	if i < 0 {
		return nil
	}
	removed := c.lines[i]

	next := make([]models.CartLine, 0, len(c.lines)-1)
	next = append(next, c.lines[:i]...)
	next = append(next, c.lines[i+1:]...)

	if err := c.commit(ctx, next); err != nil {
		return err
	}
	c.notifier.Notify(notify.Success, fmt.Sprintf("%s removed from cart", removed.Name))
	return nil
}

// UpdateQuantity sets the line's quantity. Values below 1 are ignored and values
// above the line's stock are clamped to it.
func (c *Cart) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity < 1 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.lines, id)
	if i < 0 {
		return nil
	}
	if stock := c.lines[i].Stock; quantity > stock {
		// a line always holds at least one unit
		quantity = max(stock, 1)
	}
	if c.lines[i].Quantity == quantity {
		return nil
	}

	next := cloneLines(c.lines)
	next[i].Quantity = quantity
	return c.commit(ctx, next)
}

// ClearCart empties the cart.
func (c *Cart) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.commit(ctx, []models.CartLine{}); err != nil {
		return err
	}
	c.notifier.Notify(notify.Success, "Cart cleared")
	return nil
}

// Take passes the current lines to place and empties the cart once place
// succeeds, all under one lock. No other cart operation can slip in between.
// If place fails the cart is left as it was.
func (c *Cart) Take(ctx context.Context, place func([]models.CartLine, models.Totals) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := place(cloneLines(c.lines), c.totals); err != nil {
		return err
	}
	return c.commit(ctx, []models.CartLine{})
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.lines)
}

// Line returns the line for id.
func (c *Cart) Line(id int64) (models.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.lines, id); i >= 0 {
		return c.lines[i], true
	}
	return models.CartLine{}, false
}

func (c *Cart) Totals() models.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

// Snapshot returns lines and totals read under one lock.
func (c *Cart) Snapshot() ([]models.CartLine, models.Totals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.lines), c.totals
}

// commit persists next and only then makes it the current state. Callers hold c.mu.
func (c *Cart) commit(ctx context.Context, next []models.CartLine) error {
	if err := store.PutJSON(ctx, c.store, store.KeyCart, next); err != nil {
		log.Printf("[cart.commit] failed to persist cart: %v", err)
		return fmt.Errorf("persist cart: %w", err)
	}
	c.setLines(next)
	return nil
}

func (c *Cart) setLines(lines []models.CartLine) {
	c.lines = lines
	c.totals = models.ComputeTotals(lines)
}

func indexOf(lines []models.CartLine, id int64) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}

// sanitize merges duplicate ids and drops lines with quantity < 1 from a rehydrated snapshot.
func sanitize(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		if i := indexOf(out, l.ID); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}
