package entity

import (
	"time"

	"github.com/google/uuid"
)

// Show schedules a film at a cinema. Location is the sub-venue within the
// cinema ("Hall 2"), so two shows may share cinema and time as long as
// their locations differ.
type Show struct {
	Base
	CinemaID       uuid.UUID `db:"cinema_id"`
	FilmID         uuid.UUID `db:"film_id"`
	ShowTime       time.Time `db:"show_time"`
	Location       string    `db:"location"`
	BasePriceCents int64     `db:"base_price_cents"`
	BookedOut      bool      `db:"booked_out"` // derived: true iff no seat of the cinema is free for this show
}
