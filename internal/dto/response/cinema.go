package response

import "time"

type CinemaResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	SeatsCount int       `json:"seats_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type SeatResponse struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Type           string `json:"type"`
	PremiumPercent int    `json:"premium_percent"`
}
