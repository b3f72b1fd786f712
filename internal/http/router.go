package http

import (
	"github.com/benjithedalilama/eat-wild/internal/observability"
	"github.com/benjithedalilama/eat-wild/internal/rateLimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter builds the public surface. The webhook route is never rate
// limited: throttling provider retries would delay ticket creation.
func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/events", h.ListEvents)
	r.Get("/v1/events/{id}", h.GetEvent)
	r.With(RateLimitMiddleware(rl)).Post("/v1/checkout", h.CreateCheckout)
	r.Post("/v1/webhook", h.StripeWebhook)
	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
