// Package http is the storefront's HTTP facade: the routes the rendering
// layer calls in place of the browser app's context providers.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cipr/storefront/internal/service"
	"github.com/cipr/storefront/pkg/health"
	"github.com/cipr/storefront/pkg/middleware"
)

// RouterConfig holds the facade-level knobs the router needs.
type RouterConfig struct {
	RateLimitRPS      int
	RateLimitBurst    int
	CatalogCacheAge   int
	AllowedCORSOrigin []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	sessionService *service.SessionService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.AllowedCORSOrigin) > 0 {
		corsCfg.AllowedOrigins = cfg.AllowedCORSOrigin
	}
	r.Use(middleware.CORS(corsCfg))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	catalogHandler := NewCatalogHandler(catalogService, logger)
	cartHandler := NewCartHandler(cartService, logger)
	sessionHandler := NewSessionHandler(sessionService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			if cfg.CatalogCacheAge > 0 {
				r.Use(middleware.CacheControl(cfg.CatalogCacheAge))
			}
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/all", catalogHandler.BrowseProducts)
			r.Get("/search", catalogHandler.Search)
			r.Get("/category/{label}", catalogHandler.GetCategory)
			r.Get("/{id}", catalogHandler.GetProduct)
			r.Get("/{id}/recommendations", catalogHandler.ProductRecommendations)
		})

		r.Get("/recommendations", catalogHandler.Recommendations)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{lineID}", cartHandler.UpdateQuantity)
			r.Delete("/items/{lineID}", cartHandler.RemoveItem)
			r.Post("/purchase", cartHandler.Purchase)
		})

		r.Get("/sales", cartHandler.History)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/login", sessionHandler.Login)
			r.Post("/register", sessionHandler.Register)
			r.Post("/logout", sessionHandler.Logout)
		})
	})

	return r
}
