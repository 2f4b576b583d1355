package entity

import "github.com/google/uuid"

// Ticket covers one or more seat reservations bought in a single purchase.
type Ticket struct {
	Base
	UserID     uuid.UUID `db:"user_id"`
	TotalCents int64     `db:"total_cents"`
	SeatsCount int       `db:"seats_count"`
}
