package entity

import "time"

type Film struct {
	Base
	Name        string    `db:"name"`
	ReleaseDate time.Time `db:"release_date"`
	HasShows    bool      `db:"has_shows"` // derived: true iff at least one show references this film
}
