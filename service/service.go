// Package service wires the catalog, cart, session, checkout and shopper
// engines behind one façade for the HTTP layer.
package service

import (
	"context"
	"errors"
	"fmt"

	"cartcraft/cart"
	"cartcraft/catalog"
	"cartcraft/checkout"
	models "cartcraft/model"
	"cartcraft/notify"
	"cartcraft/session"
	"cartcraft/shopper"
	"cartcraft/store"
)

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	catalog  *catalog.Catalog
	cart     *cart.Cart
	session  *session.Session
	checkout *checkout.Checkout
	shopper  *shopper.Shopper
	feed     *notify.Feed
}

// NewService rehydrates the cart and session from s. sh may be nil.
func NewService(ctx context.Context, s store.Store, cat *catalog.Catalog, sh *shopper.Shopper, opts ...session.Option) (*Service, error) {
	feed := notify.NewFeed(notify.DefaultFeedSize)

	c, err := cart.Open(ctx, s, feed)
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(ctx, s, feed, opts...)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		sh = shopper.New(nil)
	}
	return &Service{
		catalog:  cat,
		cart:     c,
		session:  sess,
		checkout: checkout.New(s, feed),
		shopper:  sh,
		feed:     feed,
	}, nil
}

func (s *Service) ListProducts(cfg models.FilterConfig) []models.Product {
	return s.catalog.View(cfg)
}

func (s *Service) GetProduct(id int64) (ProductDetailDTO, error) {
	p, ok := s.catalog.FindByID(id)
	if !ok {
		return ProductDetailDTO{}, ErrProductNotFound
	}
	return ProductDetailDTO{Product: p, Related: s.catalog.Related(p, catalog.DefaultRelatedLimit)}, nil
}

func (s *Service) FeaturedProducts() []models.Product {
	return s.catalog.Featured(catalog.DefaultFeaturedLimit)
}

func (s *Service) Categories() []string { return s.catalog.Categories() }

func (s *Service) CategoryProducts(name string) []models.Product {
	return s.catalog.InCategory(name)
}

func (s *Service) Deals(tab string) []models.Product { return s.catalog.Deals(tab) }

func (s *Service) Filters() FiltersDTO {
	return FiltersDTO{
		Default:     models.DefaultFilter(),
		Categories:  s.catalog.Categories(),
		PriceRanges: catalog.PriceRanges,
		SortModes: []models.SortMode{
			models.SortDefault, models.SortPriceLowHigh, models.SortPriceHighLow, models.SortRatingHighLow,
		},
	}
}

func (s *Service) AddToCart(ctx context.Context, productID int64) error {
	p, ok := s.catalog.FindByID(productID)
	if !ok {
		return ErrProductNotFound
	}
	return s.cart.AddToCart(ctx, p)
}

func (s *Service) RemoveFromCart(ctx context.Context, productID int64) error {
	return s.cart.RemoveFromCart(ctx, productID)
}

func (s *Service) UpdateQuantity(ctx context.Context, productID int64, qty int) error {
	return s.cart.UpdateQuantity(ctx, productID, qty)
}

func (s *Service) ClearCart(ctx context.Context) error {
	return s.cart.ClearCart(ctx)
}

func (s *Service) GetCart() CartDTO {
	lines, totals := s.cart.Snapshot()
	return CartDTO{
		Items:   lines,
		Totals:  totals,
		Summary: s.checkout.Summary(totals.Total),
	}
}

func (s *Service) ApplyCoupon(code string) (CartDTO, error) {
	if _, err := s.checkout.ApplyCoupon(code); err != nil {
		return CartDTO{}, err
	}
	return s.GetCart(), nil
}

func (s *Service) RemoveCoupon() CartDTO {
	s.checkout.RemoveCoupon()
	return s.GetCart()
}

// Checkout places an order for the current user, or as a guest when logged out.
func (s *Service) Checkout(ctx context.Context) (models.Order, error) {
	var userID string
	if u, ok := s.session.Current(); ok {
		userID = u.ID
	}
	return s.checkout.PlaceOrder(ctx, s.cart, userID)
}

func (s *Service) Receipt(ctx context.Context, orderID string) ([]byte, error) {
	order, err := s.checkout.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return checkout.Receipt(order)
}

func (s *Service) Signup(ctx context.Context, name, email, password string) (models.PublicUser, error) {
	u, err := s.session.Signup(ctx, name, email, password)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.Public(), nil
}

func (s *Service) Login(ctx context.Context, email, password string) (models.PublicUser, error) {
	u, err := s.session.Login(ctx, email, password)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.Public(), nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

func (s *Service) CurrentUser() (models.PublicUser, bool) {
	u, ok := s.session.Current()
	if !ok {
		return models.PublicUser{}, false
	}
	return u.Public(), true
}

func (s *Service) Suggest(ctx context.Context, query string) ([]shopper.Suggestion, error) {
	out, err := s.shopper.Suggest(ctx, query)
	if err != nil && !errors.Is(err, shopper.ErrEmptyQuery) && !errors.Is(err, shopper.ErrNotConfigured) {
		s.feed.Notify(notify.Error, "Something went wrong. Please try again.")
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return out, err
}

func (s *Service) Notifications() []notify.Notice {
	return s.feed.Drain()
}

// DTOs
type ProductDetailDTO struct {
	models.Product
	Related []models.Product `json:"related"`
}

type CartDTO struct {
	Items   []models.CartLine `json:"items"`
	Totals  models.Totals     `json:"totals"`
	Summary models.Summary    `json:"summary"`
}

type FiltersDTO struct {
	Default     models.FilterConfig  `json:"default"`
	Categories  []string             `json:"categories"`
	PriceRanges []catalog.PriceRange `json:"price_ranges"`
	SortModes   []models.SortMode    `json:"sort_modes"`
}
