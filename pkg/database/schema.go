package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the core tables on startup. Statements are
// idempotent so repeated boots are safe. The unique index on
// seat_reservations (seat_id, show_id) is the arbiter that keeps a seat from
// being sold twice; the one on shows (cinema_id, show_time, location) keeps
// a hall from being double-booked in time.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'customer',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token UUID NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS films (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		release_date TIMESTAMPTZ NOT NULL,
		has_shows BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS cinemas (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		seats_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS seats (
		id UUID PRIMARY KEY,
		cinema_id UUID NOT NULL REFERENCES cinemas(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'standard',
		premium_percent INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (cinema_id, label)
	)`,

	`CREATE TABLE IF NOT EXISTS shows (
		id UUID PRIMARY KEY,
		cinema_id UUID NOT NULL REFERENCES cinemas(id) ON DELETE CASCADE,
		film_id UUID NOT NULL REFERENCES films(id) ON DELETE CASCADE,
		show_time TIMESTAMPTZ NOT NULL,
		location TEXT NOT NULL,
		base_price_cents BIGINT NOT NULL,
		booked_out BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (cinema_id, show_time, location)
	)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		total_cents BIGINT NOT NULL,
		seats_count BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS seat_reservations (
		id UUID PRIMARY KEY,
		seat_id UUID NOT NULL REFERENCES seats(id) ON DELETE CASCADE,
		show_id UUID NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		ticket_id UUID REFERENCES tickets(id) ON DELETE CASCADE,
		hold_token UUID,
		held_until TIMESTAMPTZ,
		price_cents BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (seat_id, show_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_seat_reservations_hold_token ON seat_reservations (hold_token) WHERE hold_token IS NOT NULL`,

	`CREATE INDEX IF NOT EXISTS idx_seat_reservations_held_until ON seat_reservations (held_until) WHERE ticket_id IS NULL`,

	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		cinema_id UUID REFERENCES cinemas(id) ON DELETE SET NULL,
		show_id UUID REFERENCES shows(id) ON DELETE SET NULL,
		amount_cents BIGINT NOT NULL,
		reference TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db PgxIface) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
