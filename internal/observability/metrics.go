package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwild_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	CheckoutSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwild_checkout_sessions_total",
			Help: "Checkout initiations by outcome",
		},
		[]string{"result"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwild_webhook_events_total",
			Help: "Stripe webhook deliveries by outcome",
		},
		[]string{"result"},
	)

	EmailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatwild_email_failures_total",
			Help: "Confirmation emails that failed to send",
		},
	)

	RateLimitExceededTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatwild_rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
