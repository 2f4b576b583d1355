package request

type ReserveSeatsRequest struct {
	ShowID  string   `json:"show_id" validate:"required,uuid4"`
	SeatIDs []string `json:"seat_ids" validate:"required,min=1,dive,uuid4"`
}

type ConfirmHoldRequest struct {
	HoldToken          string `json:"hold_token" validate:"required,uuid4"`
	ExpectedTotalCents int64  `json:"expected_total_cents" validate:"required,gt=0"`
	PaymentReference   string `json:"payment_reference" validate:"omitempty,max=100"`
}
