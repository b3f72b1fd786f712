package pg

import (
	"context"

	"github.com/benjithedalilama/eat-wild/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListEvents returns every event with its sold/available counts, newest
// first. Availability is computed from ticket rows on every call; there is
// no cached counter to fall out of sync.
func (r *Repository) ListEvents(ctx context.Context) ([]domain.EventAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.title, e.description, e.date, e.location, e.price,
		       e.max_capacity, e.additional_details, e.created_at,
		       COUNT(t.id) AS tickets_sold
		FROM events e
		LEFT JOIN tickets t ON t.event_id = e.id
		GROUP BY e.id
		ORDER BY e.created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}
	defer rows.Close()

	var events []domain.EventAvailability
	for rows.Next() {
		var ev domain.EventAvailability
		var sold int64
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date, &ev.Location,
			&ev.Price, &ev.MaxCapacity, &ev.AdditionalDetails, &ev.CreatedAt, &sold); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		ev.TicketsSold = int(sold)
		ev.TicketsAvailable = ev.MaxCapacity - ev.TicketsSold
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *Repository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	var ev domain.Event
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, description, date, location, price, max_capacity, additional_details, created_at
		FROM events WHERE id = $1
	`, id).Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date, &ev.Location,
		&ev.Price, &ev.MaxCapacity, &ev.AdditionalDetails, &ev.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get event")
	}
	return &ev, nil
}

func (r *Repository) CountTickets(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets WHERE event_id = $1
	`, eventID).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "count tickets")
	}
	return count, nil
}

// CreateTicket inserts exactly one ticket per payment session. A duplicate
// session id returns domain.ErrConflict so the caller can acknowledge the
// redelivery without creating a second ticket.
func (r *Repository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	result, err := r.pool.Exec(ctx, `
		INSERT INTO tickets (id, event_id, customer_name, customer_email, stripe_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (stripe_session_id) DO NOTHING
	`, t.ID, t.EventID, t.CustomerName, t.CustomerEmail, t.StripeSessionID, t.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "create ticket")
	}
	if result.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *Repository) UpsertEvent(ctx context.Context, tx pgx.Tx, ev domain.Event) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO events (id, title, description, date, location, price, max_capacity, additional_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			date = EXCLUDED.date,
			location = EXCLUDED.location,
			price = EXCLUDED.price,
			max_capacity = EXCLUDED.max_capacity,
			additional_details = EXCLUDED.additional_details
	`, ev.ID, ev.Title, ev.Description, ev.Date, ev.Location, ev.Price, ev.MaxCapacity, ev.AdditionalDetails)
	return errors.Wrap(err, "upsert event")
}
