// Package checkout prices a cart, applies coupons and turns carts into orders.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	models "cartcraft/model"
	"cartcraft/notify"
	"cartcraft/store"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrCouponRequired = errors.New("coupon code is required")
	ErrCouponApplied  = errors.New("a coupon is already applied")
	ErrInvalidCoupon  = errors.New("invalid coupon code")
	ErrOrderNotFound  = errors.New("order not found")
)

// Cart is the part of the cart aggregate checkout needs.
type Cart interface {
	Take(ctx context.Context, place func([]models.CartLine, models.Totals) error) error
}

// Checkout holds the applied coupon and writes orders to the store.
type Checkout struct {
	mu     sync.Mutex
	coupon *Coupon

	store    store.Store
	notifier notify.Notifier
	now      func() time.Time
	newID    func() string
}

func New(st store.Store, n notify.Notifier) *Checkout {
	if n == nil {
		n = notify.Discard{}
	}
	return &Checkout{
		store:    st,
		notifier: n,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// ApplyCoupon validates code and keeps it for later summaries.
func (c *Checkout) ApplyCoupon(code string) (Coupon, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(code) == "" {
		c.notifier.Notify(notify.Error, "Please enter a coupon code")
		return Coupon{}, ErrCouponRequired
	}
	if c.coupon != nil {
		c.notifier.Notify(notify.Error, "A coupon is already applied")
		return Coupon{}, ErrCouponApplied
	}
	coupon, ok := LookupCoupon(code)
	if !ok {
		c.notifier.Notify(notify.Error, "Invalid coupon code")
		return Coupon{}, ErrInvalidCoupon
	}
	c.coupon = &coupon
	c.notifier.Notify(notify.Success, fmt.Sprintf("Coupon %q applied successfully!", coupon.Code))
	return coupon, nil
}

func (c *Checkout) RemoveCoupon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.coupon == nil {
		return
	}
	c.coupon = nil
	c.notifier.Notify(notify.Success, "Coupon removed")
}

// Summary prices subtotal with the current coupon and shipping.
func (c *Checkout) Summary(subtotal int64) models.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary(subtotal)
}

func (c *Checkout) summary(subtotal int64) models.Summary {
	s := models.Summary{Subtotal: subtotal, Shipping: Shipping(subtotal)}
	if c.coupon != nil {
		s.Coupon = c.coupon.Code
		s.Discount = c.coupon.Discount(subtotal)
	}
	s.Total = s.Subtotal + s.Shipping - s.Discount
	return s
}

// PlaceOrder records the cart as an order, then empties the cart and drops the
// coupon. The cart stays locked from reading the lines until it is emptied.
func (c *Checkout) PlaceOrder(ctx context.Context, cart Cart, userID string) (models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var order models.Order
	saved := false
	err := cart.Take(ctx, func(lines []models.CartLine, totals models.Totals) error {
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		order = models.Order{
			ID:        c.newID(),
			UserID:    userID,
			Items:     lines,
			Summary:   c.summary(totals.Total),
			CreatedAt: c.now().UTC(),
		}
		err := c.store.Update(ctx, store.KeyOrders, func(current []byte) ([]byte, error) {
			orders, err := decodeOrders(current)
			if err != nil {
				return nil, err
			}
			return json.Marshal(append(orders, order))
		})
		if err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		saved = true
		return nil
	})
	switch {
	case errors.Is(err, ErrEmptyCart):
		c.notifier.Notify(notify.Error, "Your cart is empty")
		return models.Order{}, err
	case err != nil && saved:
		log.Printf("[checkout.order] order %s saved but cart not cleared: %v", order.ID, err)
		return order, fmt.Errorf("clear cart: %w", err)
	case err != nil:
		return models.Order{}, err
	}

	c.coupon = nil
	c.notifier.Notify(notify.Success, "Order placed successfully!")
	return order, nil
}

// Orders returns every stored order, oldest first.
func (c *Checkout) Orders(ctx context.Context) ([]models.Order, error) {
	raw, err := c.store.Get(ctx, store.KeyOrders)
	if errors.Is(err, store.ErrNotFound) {
		return []models.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	orders, err := decodeOrders(raw)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (c *Checkout) FindOrder(ctx context.Context, id string) (models.Order, error) {
	orders, err := c.Orders(ctx)
	if err != nil {
		return models.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, ErrOrderNotFound
}

func decodeOrders(raw []byte) ([]models.Order, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}
