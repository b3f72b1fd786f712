package pg_test

import (
	"context"
	"testing"
	"time"

	"github.com/benjithedalilama/eat-wild/internal/adapters/pg"
	"github.com/benjithedalilama/eat-wild/internal/domain"
	"github.com/cockroachdb/errors"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRepo(t *testing.T) (*pg.Repository, *pgxpool.Pool) {
	t.Helper()
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
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	endpoint, err := pgContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, "postgres://eatwild:eatwild@"+endpoint+"/eatwild?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := pg.NewRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo, pool
}

func seedEvent(t *testing.T, repo *pg.Repository, ev domain.Event) {
	t.Helper()
	err := repo.WithTx(context.Background(), func(tx pgx.Tx) error {
		return repo.UpsertEvent(context.Background(), tx, ev)
	})
	require.NoError(t, err)
}

func TestRepository_CreateTicket_DuplicateSession(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	seedEvent(t, repo, domain.Event{ID: "ev1", Title: "Event", Date: "soon", Location: "here", Price: 100, MaxCapacity: 5})

	first := domain.NewTicket("ev1", "Ben", "ben@example.com", "cs_session_1")
	require.NoError(t, repo.CreateTicket(ctx, first))

	// same payment session, different ticket id: must be a conflict, not a
	// second row
	second := domain.NewTicket("ev1", "Ben", "ben@example.com", "cs_session_1")
	err := repo.CreateTicket(ctx, second)
	require.True(t, errors.Is(err, domain.ErrConflict), "expected conflict, got %v", err)

	count, err := repo.CountTickets(ctx, "ev1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepository_AvailabilityIsDerived(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	seedEvent(t, repo, domain.Event{ID: "ev1", Title: "Event", Date: "soon", Location: "here", Price: 100, MaxCapacity: 5})

	for _, sid := range []string{"cs_1", "cs_2", "cs_3"} {
		require.NoError(t, repo.CreateTicket(ctx, domain.NewTicket("ev1", "X", "x@example.com", sid)))
	}

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].TicketsSold)
	assert.Equal(t, 2, events[0].TicketsAvailable)
	assert.Equal(t, 5, events[0].MaxCapacity)
}

func TestRepository_ListEventsNewestFirst(t *testing.T) {
	repo, pool := setupRepo(t)
	ctx := context.Background()

	seedEvent(t, repo, domain.Event{ID: "older", Title: "Older", Date: "soon", Location: "here", Price: 100, MaxCapacity: 5})
	_, err := pool.Exec(ctx, `UPDATE events SET created_at = now() - INTERVAL '1 day' WHERE id = 'older'`)
	require.NoError(t, err)
	seedEvent(t, repo, domain.Event{ID: "newer", Title: "Newer", Date: "soon", Location: "here", Price: 100, MaxCapacity: 5})

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "newer", events[0].ID)
	assert.Equal(t, "older", events[1].ID)
}

func TestRepository_GetEvent_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.GetEvent(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRepository_UpsertEvent_UpdatesInPlace(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	seedEvent(t, repo, domain.Event{ID: "ev1", Title: "Before", Date: "soon", Location: "here", Price: 100, MaxCapacity: 5})
	seedEvent(t, repo, domain.Event{ID: "ev1", Title: "After", Date: "soon", Location: "here", Price: 150, MaxCapacity: 5})

	ev, err := repo.GetEvent(ctx, "ev1")
	require.NoError(t, err)
	assert.Equal(t, "After", ev.Title)
	assert.Equal(t, int64(150), ev.Price)
}
