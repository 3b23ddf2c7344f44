package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// Handlers groups the view handlers mounted by NewRouter.
type Handlers struct {
	Catalog *CatalogHandler
	Cart    *CartHandler
	Auth    *AuthHandler
	Admin   *AdminHandler
}

// NewRouter creates a chi router with every storefront view registered.
func NewRouter(h Handlers, healthHandler *health.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(allowedOrigins...)))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl("private, max-age=30"))
			r.Get("/products", h.Catalog.ListProducts)
			r.Get("/products/{id}", h.Catalog.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(h.Cart.RequireSession)

			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Post("/items/{productId}/decrement", h.Cart.DecrementItem)
			r.Delete("/items/{productId}", h.Cart.RemoveItem)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/session", h.Auth.GetSession)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(h.Admin.RequireAdmin)

			r.Get("/products", h.Admin.ListProducts)
		})
	})

	return r
}
