package request

// SeatSpec describes one seat of the cinema's fixed layout. The layout is
// configured once per cinema and reused by every show there.
type SeatSpec struct {
	Label          string `json:"label" validate:"required,min=1,max=10"`
	Type           string `json:"type" validate:"omitempty,oneof=standard vip couple super_vip"`
	PremiumPercent int    `json:"premium_percent" validate:"min=0,max=500"`
}

type CreateCinemaRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=200"`
	Location string     `json:"location" validate:"required,min=1,max=200"`
	Seats    []SeatSpec `json:"seats" validate:"required,min=1,dive"`
}
