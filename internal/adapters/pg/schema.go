package pg

import "context"

// Schema for the two persisted tables. The UNIQUE constraint on
// tickets.stripe_session_id is the sole safeguard against duplicate ticket
// creation from retried or concurrent webhook deliveries.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	location TEXT NOT NULL,
	price BIGINT NOT NULL,
	max_capacity INT NOT NULL,
	additional_details TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tickets (
	id UUID PRIMARY KEY,
	event_id TEXT NOT NULL REFERENCES events (id),
	customer_name TEXT NOT NULL,
	customer_email TEXT NOT NULL,
	stripe_session_id TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}
