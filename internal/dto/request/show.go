package request

// ListShowsQuery mirrors the query string of the show listing endpoint.
// Empty fields are ignored.
type ListShowsQuery struct {
	FilmID       string `json:"film_id" validate:"omitempty,uuid4"`
	CinemaID     string `json:"cinema_id" validate:"omitempty,uuid4"`
	From         string `json:"from"`
	Until        string `json:"until"`
	OnlyBookable bool   `json:"only_bookable"`
}

type CreateShowRequest struct {
	CinemaID       string `json:"cinema_id" validate:"required,uuid4"`
	FilmID         string `json:"film_id" validate:"required,uuid4"`
	ShowTime       string `json:"show_time" validate:"required"`
	Location       string `json:"location" validate:"required,min=1,max=200"`
	BasePriceCents int64  `json:"base_price_cents" validate:"required,gt=0"`
}
