package response

import "time"

type FilmResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ReleaseDate time.Time `json:"release_date"`
	HasShows    bool      `json:"has_shows"`
	CreatedAt   time.Time `json:"created_at"`
}
