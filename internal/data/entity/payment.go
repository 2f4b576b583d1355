package entity

import "github.com/google/uuid"

// Payment is an audit record written when a hold is confirmed. It is never
// consulted to decide seat state.
type Payment struct {
	BaseSimple
	UserID      uuid.UUID  `db:"user_id"`
	CinemaID    *uuid.UUID `db:"cinema_id"`
	ShowID      *uuid.UUID `db:"show_id"`
	AmountCents int64      `db:"amount_cents"`
	Reference   *string    `db:"reference"` // external gateway reference, if any
}
