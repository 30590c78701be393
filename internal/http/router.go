package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BaoPhun/TreeStore-CustomerWeb/pkg/metrics"
)

// RouterConfig bundles the handlers the storefront exposes.
type RouterConfig struct {
	Products  *ProductHandler
	Favorites *FavoritesHandler
	Cart      *CartHandler
	Checkout  *CheckoutHandler
	Metrics   *metrics.ServerMetrics

	RequestTimeout time.Duration
}

// NewRouter wires the storefront API surface.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(CustomerIDMiddleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Products.List)
			r.Get("/search", cfg.Products.Search)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", cfg.Favorites.List)
			r.Post("/toggle", cfg.Favorites.Toggle)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Delete("/", cfg.Cart.Clear)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", cfg.Checkout.Begin)
			r.Get("/", cfg.Checkout.Session)
			r.Delete("/", cfg.Checkout.Discard)
			r.Post("/promotion", cfg.Checkout.ApplyPromotion)
			r.Post("/method", cfg.Checkout.SelectMethod)
			r.Post("/submit", cfg.Checkout.Submit)
			r.Post("/capture", cfg.Checkout.Capture)
		})
	})

	return r
}
