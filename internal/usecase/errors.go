package usecase

import (
	"errors"
	"fmt"

	"cinema-tickets/pkg/utils"
)

var (
	// ErrInvalidCredentials hides whether the email or the password was
	// wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotOwner is returned when a caller touches a ticket or hold that
	// belongs to another user.
	ErrNotOwner = errors.New("resource belongs to another user")
)

// ValidationError carries per-field messages so handlers can return them
// alongside the 400.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", utils.FormatValidationErrors(e.Fields))
}

// validate runs struct validation and wraps failures for the handlers.
func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validationFailure(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}
