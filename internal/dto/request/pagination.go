package request

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// PaginatedRequest carries page/per_page query params for list endpoints.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// Limit clamps per_page to [1, 100], defaulting to 10.
func (p PaginatedRequest) Limit() int {
	switch {
	case p.PerPage < 1:
		return defaultPerPage
	case p.PerPage > maxPerPage:
		return maxPerPage
	default:
		return p.PerPage
	}
}

// Offset is computed from the clamped limit, so page 2 with an
// out-of-range per_page still lands on a valid row window.
func (p PaginatedRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}
