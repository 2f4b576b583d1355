package entity

import (
	"time"

	"github.com/google/uuid"
)

// SeatReservation is the join row between a seat and a show. Its presence
// is the claim on the seat: no row means the seat is free. A row with a
// nil TicketID is a hold (time-limited, identified by HoldToken); once a
// ticket is attached the row is a confirmed reservation and HoldToken and
// HeldUntil are cleared. The price is captured at reservation time and
// never recomputed afterwards.
type SeatReservation struct {
	BaseSimple
	SeatID     uuid.UUID  `db:"seat_id"`
	ShowID     uuid.UUID  `db:"show_id"`
	TicketID   *uuid.UUID `db:"ticket_id"`
	HoldToken  *uuid.UUID `db:"hold_token"`
	HeldUntil  *time.Time `db:"held_until"`
	PriceCents int64      `db:"price_cents"`
}

// Confirmed reports whether a ticket has been attached.
func (r *SeatReservation) Confirmed() bool {
	return r.TicketID != nil
}

// Expired reports whether the row is a hold whose TTL elapsed. Confirmed
// reservations never expire.
func (r *SeatReservation) Expired(now time.Time) bool {
	return r.TicketID == nil && r.HeldUntil != nil && !r.HeldUntil.After(now)
}
