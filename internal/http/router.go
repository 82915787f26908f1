package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/shop-cart/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Catalog            Catalog
	Sessions           Sessions
	Metrics            *metrics.Metrics // optional
	Logger             *slog.Logger
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

const (
	defaultRequestTimeout     = 10 * time.Second
	defaultMaxRequestBodySize = 1 << 20
)

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	productHandler := NewProductHandler(cfg.Catalog)
	cartHandler := NewCartHandler(cfg.Sessions, cfg.MaxRequestBodySize, cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(requestTimeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{product_id}", productHandler.Get)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", cartHandler.OpenSession)
			r.Delete("/current", cartHandler.EndSession)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Sessions))
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{product_id}", cartHandler.UpdateQuantity)
		})
	})

	return r
}

// requestTimeout falls back to the default when d is unset, since a zero
// deadline would cancel every request on arrival.
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = defaultRequestTimeout
	}
	return middleware.Timeout(d)
}
