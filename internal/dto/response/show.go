package response

import "time"

type ShowResponse struct {
	ID             string    `json:"id"`
	CinemaID       string    `json:"cinema_id"`
	FilmID         string    `json:"film_id"`
	ShowTime       time.Time `json:"show_time"`
	Location       string    `json:"location"`
	BasePriceCents int64     `json:"base_price_cents"`
	BookedOut      bool      `json:"booked_out"`
}

// SeatAvailability is one seat of a show's seat map with its current
// availability and the price it would cost on this show.
type SeatAvailability struct {
	SeatResponse
	PriceCents int64 `json:"price_cents"`
	Available  bool  `json:"available"`
}

type SeatMapResponse struct {
	ShowID    string             `json:"show_id"`
	BookedOut bool               `json:"booked_out"`
	Seats     []SeatAvailability `json:"seats"`
}
