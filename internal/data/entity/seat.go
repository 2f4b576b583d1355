package entity

import "github.com/google/uuid"

type SeatType string

const (
	SeatTypeStandard SeatType = "standard"
	SeatTypeVIP      SeatType = "vip"
	SeatTypeCouple   SeatType = "couple"
	SeatTypeSuperVIP SeatType = "super_vip"
)

// Seat belongs to exactly one cinema and is reused by every show at that
// cinema. The premium is an integer percentage markup on the show's base
// price (0 for standard seats).
type Seat struct {
	Base
	CinemaID       uuid.UUID `db:"cinema_id"`
	Label          string    `db:"label"` // A1, A2, B1, etc.
	Type           SeatType  `db:"type"`
	PremiumPercent int       `db:"premium_percent"`
}
