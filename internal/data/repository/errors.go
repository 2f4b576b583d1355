package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors shared by the repositories. Services translate these into
// user-facing failures; they are all recoverable by the caller.
var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrShowConflict is returned when another show already occupies the
	// same cinema, time and location.
	ErrShowConflict = errors.New("show conflicts with an existing show at the same cinema, time and location")
	// ErrHoldNotFound is returned when no reservation rows carry the given
	// hold token (already consumed, released or never issued).
	ErrHoldNotFound = errors.New("hold not found")
	// ErrHoldExpired is returned when the hold's TTL elapsed before it was
	// confirmed. The seats have been freed; the caller must re-reserve.
	ErrHoldExpired = errors.New("hold expired")
	// ErrDuplicateEmail is returned when registering an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// SeatsUnavailableError reports which requested seats were already held or
// confirmed at claim time. The claim is all-or-nothing, so none of the
// requested seats were taken when this is returned.
type SeatsUnavailableError struct {
	SeatIDs []uuid.UUID
}

func (e *SeatsUnavailableError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("seats unavailable: %s", strings.Join(ids, ", "))
}
