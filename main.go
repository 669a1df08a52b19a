package main

// GET  /products, /products/{id}, /products/featured - catalog views
// GET  /categories, /categories/{category}, /deals, /filters
// GET  /cart/list - cart lines, totals and price summary
// POST /cart/add, /cart/remove, /cart/update, /cart/clear
// POST/DELETE /cart/coupon - apply or drop a coupon
// POST /checkout/order - place an order, GET /orders/{id}/receipt - PDF
// POST /auth/signup, /auth/login, /auth/logout, GET /auth/me
// POST /shopper - AI product suggestions
// GET  /notifications - drain pending notices

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"cartcraft/catalog"
	"cartcraft/config"
	"cartcraft/handler"
	"cartcraft/service"
	"cartcraft/shopper"
	"cartcraft/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// --- Store ---
	st, err := store.Open(ctx, store.Options{
		Backend:       cfg.StoreBackend,
		PostgresDSN:   cfg.DatabaseURL,
		RedisURL:      cfg.RedisURL,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		log.Fatalf("Store connection failed: %v", err)
	}
	defer st.Close()

	// --- Catalog ---
	cat, err := catalog.Load(ctx, cfg.CatalogPath, cfg.CatalogLoadDelay)
	if err != nil {
		log.Fatalf("Failed loading catalog: %v", err)
	}

	// --- Personal shopper ---
	var gen shopper.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := shopper.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Gemini client failed: %v", err)
		}
		defer g.Close()
		gen = g
	} else {
		log.Println("GEMINI_API_KEY not set, personal shopper disabled")
	}

	// --- Service ---
	svc, err := service.NewService(ctx, st, cat, shopper.New(gen))
	if err != nil {
		log.Fatalf("Failed restoring state: %v", err)
	}
	var serviceInterface service.ServiceInterface = svc

	// --- Handlers ---
	h := handler.NewHandler(serviceInterface)

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	// --- Server ---
	addr := ":" + cfg.Port
	log.Printf("Server running on %s (store: %s)", addr, cfg.StoreBackend)

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
