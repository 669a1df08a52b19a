package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cartcraft/cart"
	"cartcraft/checkout"
	models "cartcraft/model"
	"cartcraft/service"
	"cartcraft/session"
	"cartcraft/shopper"
)

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc service.ServiceInterface
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{svc: s}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Catalog
	r.HandleFunc("/products", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/featured", h.FeaturedProducts).Methods("GET")
	r.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods("GET")
	r.HandleFunc("/categories", h.Categories).Methods("GET")
	r.HandleFunc("/categories/{category}", h.CategoryProducts).Methods("GET")
	r.HandleFunc("/deals", h.Deals).Methods("GET")
	r.HandleFunc("/filters", h.Filters).Methods("GET")

	// Cart
	r.HandleFunc("/cart/list", h.ListCart).Methods("GET")
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/remove", h.RemoveFromCart).Methods("POST")
	r.HandleFunc("/cart/update", h.UpdateQuantity).Methods("POST")
	r.HandleFunc("/cart/clear", h.ClearCart).Methods("POST")
	r.HandleFunc("/cart/coupon", h.ApplyCoupon).Methods("POST")
	r.HandleFunc("/cart/coupon", h.RemoveCoupon).Methods("DELETE")

	// Checkout
	r.HandleFunc("/checkout/order", h.Checkout).Methods("POST")
	r.HandleFunc("/orders/{id}/receipt", h.Receipt).Methods("GET")

	// Session
	r.HandleFunc("/auth/signup", h.Signup).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	r.HandleFunc("/auth/me", h.Me).Methods("GET")

	r.HandleFunc("/shopper", h.Suggest).Methods("POST")
	r.HandleFunc("/notifications", h.Notifications).Methods("GET")
}

// --- request / response shapes ---
type cartItemReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity,omitempty"` // only used by update
}

type couponReq struct {
	Code string `json:"code"`
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type shopperReq struct {
	Query string `json:"query"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeServiceErr maps engine errors to HTTP codes.
func writeServiceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrMissingFields),
		errors.Is(err, checkout.ErrCouponRequired),
		errors.Is(err, checkout.ErrInvalidCoupon),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, shopper.ErrEmptyQuery):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, checkout.ErrOrderNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrStockLimit),
		errors.Is(err, session.ErrEmailTaken),
		errors.Is(err, session.ErrAlreadyLoggedIn),
		errors.Is(err, checkout.ErrCouponApplied):
		writeErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, shopper.ErrNotConfigured):
		writeErr(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// --- Catalog ---

// ListProducts handles GET /products?category=&minPrice=&maxPrice=&search=&sort=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cfg := models.DefaultFilter()
	cfg.Category = q.Get("category")
	cfg.Search = q.Get("search")
	cfg.Sort = models.ParseSortMode(q.Get("sort"))

	var err error
	if v := q.Get("minPrice"); v != "" {
		if cfg.MinPrice, err = strconv.ParseInt(v, 10, 64); err != nil {
			writeErr(w, http.StatusBadRequest, "minPrice must be a number")
			return
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if cfg.MaxPrice, err = strconv.ParseInt(v, 10, 64); err != nil {
			writeErr(w, http.StatusBadRequest, "maxPrice must be a number")
			return
		}
	}
	writeJSON(w, http.StatusOK, h.svc.ListProducts(cfg))
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.svc.GetProduct(id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.FeaturedProducts())
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Categories())
}

func (h *Handler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CategoryProducts(mux.Vars(r)["category"]))
}

// Deals handles GET /deals?tab=featured|flash|clearance
func (h *Handler) Deals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Deals(r.URL.Query().Get("tab")))
}

func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Filters())
}

// --- Cart ---

// ListCart handles GET /cart/list
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GetCart())
}

// AddToCart handles POST /cart/add
// body: { "product_id": 1 }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == 0 {
		writeErr(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if err := h.svc.AddToCart(r.Context(), req.ProductID); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.GetCart())
}

// RemoveFromCart handles POST /cart/remove
// body: { "product_id": 1 }
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RemoveFromCart(r.Context(), req.ProductID); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.GetCart())
}

// UpdateQuantity handles POST /cart/update
// body: { "product_id": 1, "quantity": 3 }
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.UpdateQuantity(r.Context(), req.ProductID, req.Quantity); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.GetCart())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearCart(r.Context()); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.GetCart())
}

// ApplyCoupon handles POST /cart/coupon
// body: { "code": "SAVE20" }
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponReq
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.ApplyCoupon(req.Code)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.RemoveCoupon())
}

// --- Checkout ---

// Checkout handles POST /checkout/order
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ord, err := h.svc.Checkout(r.Context())
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ord)
}

// Receipt handles GET /orders/{id}/receipt
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	pdf, err := h.svc.Receipt(r.Context(), id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="receipt-`+id+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// --- Session ---

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.svc.CurrentUser()
	if !ok {
		writeErr(w, http.StatusUnauthorized, "not logged in")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// --- Misc ---

// Suggest handles POST /shopper
// body: { "query": "budget smartphones" }
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req shopperReq
	if !decode(w, r, &req) {
		return
	}
	out, err := h.svc.Suggest(r.Context(), req.Query)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Notifications())
}
