package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/benjithedalilama/eat-wild/internal/config"
	"github.com/benjithedalilama/eat-wild/internal/domain"
	"github.com/benjithedalilama/eat-wild/internal/observability"
	"github.com/benjithedalilama/eat-wild/internal/payments"
	"github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v83"
	"golang.org/x/sync/errgroup"
)

// Store is the relational event/ticket store. CreateTicket must return
// domain.ErrConflict when the payment session id is already recorded.
type Store interface {
	ListEvents(ctx context.Context) ([]domain.EventAvailability, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	CountTickets(ctx context.Context, eventID string) (int, error)
	CreateTicket(ctx context.Context, t domain.Ticket) error
}

type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, ev *domain.Event, customerName, customerEmail string) (string, error)
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

type Notifier interface {
	SendConfirmation(ctx context.Context, ev *domain.Event, customerName, customerEmail string) error
}

type TicketPublisher interface {
	PublishTicketCreated(ctx context.Context, t domain.Ticket) error
}

type AuditLog interface {
	LogDelivery(ctx context.Context, stripeEventID, eventType, sessionID, outcome string) error
}

type Handlers struct {
	cfg      *config.Config
	store    Store
	payments PaymentProvider
	mailer   Notifier
	pub      TicketPublisher
	audit    AuditLog
	logger   observability.Logger
}

// NewHandlers wires the booking flow. pub and audit may be nil; both are
// best-effort collaborators and are skipped when absent.
func NewHandlers(cfg *config.Config, store Store, pay PaymentProvider, mailer Notifier, pub TicketPublisher, audit AuditLog, logger observability.Logger) *Handlers {
	return &Handlers{
		cfg:      cfg,
		store:    store,
		payments: pay,
		mailer:   mailer,
		pub:      pub,
		audit:    audit,
		logger:   logger,
	}
}

type eventResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Date             string `json:"date"`
	Location         string `json:"location"`
	Price            int64  `json:"price"`
	MaxCapacity      int    `json:"maxCapacity"`
	TicketsSold      int    `json:"ticketsSold"`
	TicketsAvailable int    `json:"ticketsAvailable"`
}

// ListEvents returns every event with live availability. Caching is disabled
// because the sold count is safety-critical and re-read on each request.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListEvents(r.Context())
	if err != nil {
		h.logger.Error("failed to list events", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, eventResponse{
			ID:               ev.ID,
			Title:            ev.Title,
			Description:      ev.Description,
			Date:             ev.Date,
			Location:         ev.Location,
			Price:            ev.Price,
			MaxCapacity:      ev.MaxCapacity,
			TicketsSold:      ev.TicketsSold,
			TicketsAvailable: ev.TicketsAvailable,
		})
	}

	w.Header().Set("Cache-Control", "no-store, max-age=0")
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ev, err := h.store.GetEvent(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get event", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}
	sold, err := h.store.CountTickets(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to count tickets", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}

	w.Header().Set("Cache-Control", "no-store, max-age=0")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":                ev.ID,
		"title":             ev.Title,
		"description":       ev.Description,
		"date":              ev.Date,
		"location":          ev.Location,
		"price":             ev.Price,
		"maxCapacity":       ev.MaxCapacity,
		"additionalDetails": ev.AdditionalDetails,
		"ticketsSold":       sold,
		"ticketsAvailable":  ev.MaxCapacity - sold,
	})
}

// CreateCheckout validates the booking request and opens a Stripe checkout
// session.
func (h *Handlers) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID       string `json:"eventId"`
		CustomerName  string `json:"customerName"`
		CustomerEmail string `json:"customerEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rejectCheckout(w, domain.ErrInvalidInput)
		return
	}
	if req.EventID == "" || req.CustomerName == "" || req.CustomerEmail == "" {
		h.rejectCheckout(w, domain.ErrInvalidInput)
		return
	}

	ev, err := h.bookableEvent(r.Context(), req.EventID)
	if err != nil {
		h.rejectCheckout(w, err)
		return
	}

	url, err := h.payments.CreateCheckoutSession(r.Context(), ev, req.CustomerName, req.CustomerEmail)
	if err != nil {
		observability.CheckoutSessionsTotal.WithLabelValues("upstream_error").Inc()
		h.logger.Error("failed to create checkout session", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	observability.CheckoutSessionsTotal.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// bookableEvent resolves an event and rejects the booking when every spot is
// taken. The availability check is advisory: nothing is reserved, so two
// customers racing the last spot can both reach payment. The accepted worst
// case is an overbook of at most the number of concurrent checkouts; the
// unique session constraint downstream still guarantees one ticket per
// payment.
func (h *Handlers) bookableEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ev, err := h.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sold, err := h.store.CountTickets(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	if sold >= ev.MaxCapacity {
		return nil, domain.ErrSoldOut
	}
	return ev, nil
}

func (h *Handlers) rejectCheckout(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		observability.CheckoutSessionsTotal.WithLabelValues("validation_failed").Inc()
		writeError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, domain.ErrNotFound):
		observability.CheckoutSessionsTotal.WithLabelValues("not_found").Inc()
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, domain.ErrSoldOut):
		observability.CheckoutSessionsTotal.WithLabelValues("sold_out").Inc()
		writeError(w, http.StatusBadRequest, "Event is sold out")
	default:
		h.logger.Error("checkout failed", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// StripeWebhook handles asynchronous payment confirmations. Response codes
// steer the provider's retry behavior: 400 for untrusted requests (retrying a
// forged request accomplishes nothing), 200 for anything already in the
// correct end state, 500 where a retry can still succeed.
func (h *Handlers) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		observability.WebhookEventsTotal.WithLabelValues("bad_signature").Inc()
		writeError(w, http.StatusBadRequest, "No signature provided")
		return
	}

	event, err := h.payments.VerifyEvent(body, sig)
	if err != nil {
		observability.WebhookEventsTotal.WithLabelValues("bad_signature").Inc()
		h.logger.WithError(err).Warn("webhook signature verification failed")
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	if string(event.Type) != payments.CheckoutSessionCompleted {
		observability.WebhookEventsTotal.WithLabelValues("ignored").Inc()
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		observability.WebhookEventsTotal.WithLabelValues("bad_payload").Inc()
		h.logger.WithError(err).Error("failed to decode checkout session")
		writeError(w, http.StatusInternalServerError, "Malformed event payload")
		return
	}

	eventID := session.Metadata["eventId"]
	customerName := session.Metadata["customerName"]
	customerEmail := session.Metadata["customerEmail"]
	if eventID == "" || customerName == "" || customerEmail == "" {
		observability.WebhookEventsTotal.WithLabelValues("bad_payload").Inc()
		h.logger.WithField("session_id", session.ID).Error("checkout session metadata incomplete")
		writeError(w, http.StatusInternalServerError, "Malformed session metadata")
		return
	}

	ev, err := h.store.GetEvent(r.Context(), eventID)
	if err != nil {
		observability.WebhookEventsTotal.WithLabelValues("bad_payload").Inc()
		h.logger.WithField("event_id", eventID).Error("failed to resolve event for paid session", err)
		writeError(w, http.StatusInternalServerError, "Failed to create ticket")
		return
	}

	ticket := domain.NewTicket(eventID, customerName, customerEmail, session.ID)
	err = h.store.CreateTicket(r.Context(), ticket)
	if errors.Is(err, domain.ErrConflict) {
		// Redelivery of an already-recorded session: the correct end state
		// (exactly one ticket) was reached on a previous delivery.
		observability.WebhookEventsTotal.WithLabelValues("duplicate").Inc()
		h.logger.WithField("session_id", session.ID).Info("duplicate webhook delivery, ticket already exists")
		h.logDelivery(r.Context(), event.ID, string(event.Type), session.ID, "duplicate")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}
	if err != nil {
		observability.WebhookEventsTotal.WithLabelValues("store_error").Inc()
		h.logger.Error("failed to create ticket", err)
		writeError(w, http.StatusInternalServerError, "Failed to create ticket")
		return
	}

	observability.WebhookEventsTotal.WithLabelValues("created").Inc()
	h.logger.WithField("ticket_id", ticket.ID).WithField("session_id", session.ID).Info("ticket created")

	// Everything past the insert is best effort: failures are logged and
	// swallowed so the provider never retries an already-recorded payment.
	var g errgroup.Group
	g.Go(func() error {
		if err := h.mailer.SendConfirmation(r.Context(), ev, customerName, customerEmail); err != nil {
			observability.EmailFailuresTotal.Inc()
			h.logger.WithError(err).Error("failed to send confirmation email")
		}
		return nil
	})
	g.Go(func() error {
		if h.pub != nil {
			if err := h.pub.PublishTicketCreated(r.Context(), ticket); err != nil {
				h.logger.WithError(err).Warn("failed to publish ticket.created")
			}
		}
		return nil
	})
	g.Go(func() error {
		h.logDelivery(r.Context(), event.ID, string(event.Type), session.ID, "created")
		return nil
	})
	g.Wait()

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handlers) logDelivery(ctx context.Context, stripeEventID, eventType, sessionID, outcome string) {
	if h.audit == nil {
		return
	}
	if err := h.audit.LogDelivery(ctx, stripeEventID, eventType, sessionID, outcome); err != nil {
		h.logger.WithError(err).Warn("failed to record webhook delivery")
	}
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
