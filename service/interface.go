package service

import (
	"context"

	models "cartcraft/model"
	"cartcraft/notify"
	"cartcraft/shopper"
)

type ServiceInterface interface {
	// Catalog
	ListProducts(cfg models.FilterConfig) []models.Product
	GetProduct(id int64) (ProductDetailDTO, error)
	FeaturedProducts() []models.Product
	Categories() []string
	CategoryProducts(name string) []models.Product
	Deals(tab string) []models.Product
	Filters() FiltersDTO

	// Cart
	AddToCart(ctx context.Context, productID int64) error
	RemoveFromCart(ctx context.Context, productID int64) error
	UpdateQuantity(ctx context.Context, productID int64, qty int) error
	ClearCart(ctx context.Context) error
	GetCart() CartDTO
	ApplyCoupon(code string) (CartDTO, error)
	RemoveCoupon() CartDTO

	// Orders
	Checkout(ctx context.Context) (models.Order, error)
	Receipt(ctx context.Context, orderID string) ([]byte, error)

	// Session
	Signup(ctx context.Context, name, email, password string) (models.PublicUser, error)
	Login(ctx context.Context, email, password string) (models.PublicUser, error)
	Logout(ctx context.Context) error
	CurrentUser() (models.PublicUser, bool)

	Suggest(ctx context.Context, query string) ([]shopper.Suggestion, error)
	Notifications() []notify.Notice
}
