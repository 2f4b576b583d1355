package entity

import "github.com/google/uuid"

type Cinema struct {
	Base
	OwnerID    uuid.UUID `db:"user_id"`
	Name       string    `db:"name"`
	Location   string    `db:"location"`
	SeatsCount int       `db:"seats_count"`
}
