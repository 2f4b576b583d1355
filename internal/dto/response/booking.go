package response

import "time"

type HeldSeat struct {
	SeatID     string `json:"seat_id"`
	Label      string `json:"label"`
	PriceCents int64  `json:"price_cents"`
}

type HoldResponse struct {
	HoldToken  string     `json:"hold_token"`
	ShowID     string     `json:"show_id"`
	HeldUntil  time.Time  `json:"held_until"`
	TotalCents int64      `json:"total_cents"`
	Seats      []HeldSeat `json:"seats"`
}

type TicketResponse struct {
	ID         string     `json:"id"`
	ShowID     string     `json:"show_id,omitempty"`
	TotalCents int64      `json:"total_cents"`
	SeatsCount int        `json:"seats_count"`
	Seats      []HeldSeat `json:"seats,omitempty"`
	IssuedAt   time.Time  `json:"issued_at"`
}
