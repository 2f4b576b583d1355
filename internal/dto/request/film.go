package request

type CreateFilmRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	ReleaseDate string `json:"release_date" validate:"required"` // RFC3339
}
