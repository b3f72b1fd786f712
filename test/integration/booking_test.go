package integration_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benjithedalilama/eat-wild/internal/adapters/pg"
	"github.com/benjithedalilama/eat-wild/internal/config"
	"github.com/benjithedalilama/eat-wild/internal/domain"
	httphandler "github.com/benjithedalilama/eat-wild/internal/http"
	"github.com/benjithedalilama/eat-wild/internal/observability"
	"github.com/benjithedalilama/eat-wild/internal/payments"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const webhookSecret = "whsec_integration"

type stubPayments struct {
	*payments.Client
}

func (s *stubPayments) CreateCheckoutSession(ctx context.Context, ev *domain.Event, name, email string) (string, error) {
	return "https://checkout.stripe.example/pay/cs_integration", nil
}

type noopNotifier struct{ sent int }

func (n *noopNotifier) SendConfirmation(ctx context.Context, ev *domain.Event, name, email string) error {
	n.sent++
	return nil
}

func TestIntegration_BookingFlow(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     "eatwild",
				"POSTGRES_PASSWORD": "eatwild",
				"POSTGRES_DB":       "eatwild",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	endpoint, err := pgContainer.Endpoint(ctx, "")
	require.NoError(t, err)
	pool, err := pgxpool.New(ctx, "postgres://eatwild:eatwild@"+endpoint+"/eatwild?sslmode=disable")
	require.NoError(t, err)
	defer pool.Close()

	repo := pg.NewRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	event := domain.Event{
		ID:          "sf-sunset-mussels-2024",
		Title:       "SF Sunset Mussels Catch and Cook",
		Description: "forage and cook",
		Date:        "Sunday 11/2 @ 1pm",
		Location:    "San Francisco Coast",
		Price:       200,
		MaxCapacity: 20,
	}
	require.NoError(t, repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.UpsertEvent(ctx, tx, event)
	}))
	for i := 0; i < 19; i++ {
		sid := fmt.Sprintf("cs_seed_%d", i)
		require.NoError(t, repo.CreateTicket(ctx, domain.NewTicket(event.ID, "Seed", "seed@example.com", sid)))
	}

	logger := observability.NewLogger()
	cfg := &config.Config{AppURL: "http://localhost:8080"}
	pay := &stubPayments{Client: payments.New("sk_test_key", webhookSecret, cfg.AppURL)}
	notifier := &noopNotifier{}
	handlers := httphandler.NewHandlers(cfg, repo, pay, notifier, nil, nil, logger)
	srv := httptest.NewServer(httphandler.SetupRouter(handlers, logger, nil))
	defer srv.Close()

	// one spot left
	listBody := getJSON(t, srv.URL+"/v1/events")
	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(listBody, &events))
	require.Len(t, events, 1)
	assert.EqualValues(t, 19, events[0]["ticketsSold"])
	assert.EqualValues(t, 1, events[0]["ticketsAvailable"])

	// checkout succeeds for the last spot
	resp, err := http.Post(srv.URL+"/v1/checkout", "application/json",
		bytes.NewReader([]byte(`{"eventId":"sf-sunset-mussels-2024","customerName":"Ben","customerEmail":"ben@example.com"}`)))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// provider confirms the payment
	payload, _ := json.Marshal(map[string]interface{}{
		"id":          "evt_integration_1",
		"object":      "event",
		"api_version": "2025-09-30.clover",
		"type":        "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":     "cs_final",
				"object": "checkout.session",
				"metadata": map[string]string{
					"eventId":       "sf-sunset-mussels-2024",
					"customerName":  "Ben",
					"customerEmail": "ben@example.com",
				},
			},
		},
	})
	sig := signPayload(payload, webhookSecret)

	require.Equal(t, http.StatusOK, postWebhook(t, srv.URL, payload, sig))
	assert.Equal(t, 1, notifier.sent)

	// a redelivery is acknowledged and changes nothing
	require.Equal(t, http.StatusOK, postWebhook(t, srv.URL, payload, sig))
	assert.Equal(t, 1, notifier.sent)

	count, err := repo.CountTickets(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	// sold out now
	resp, err = http.Post(srv.URL+"/v1/checkout", "application/json",
		bytes.NewReader([]byte(`{"eventId":"sf-sunset-mussels-2024","customerName":"Eve","customerEmail":"eve@example.com"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Event is sold out")

	listBody = getJSON(t, srv.URL+"/v1/events")
	require.NoError(t, json.Unmarshal(listBody, &events))
	assert.EqualValues(t, 0, events[0]["ticketsAvailable"])
}

func getJSON(t *testing.T, url string) []byte {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}

func postWebhook(t *testing.T, baseURL string, payload []byte, sig string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/webhook", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Stripe-Signature", sig)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
