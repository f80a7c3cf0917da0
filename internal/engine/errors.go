package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors reported to callers. All are recoverable: handlers
// translate them into HTTP responses and the process keeps serving.
var (
	// ErrOutOfHours marks an interval outside the 11:00-01:00 window
	// or touching the closed band.
	ErrOutOfHours = errors.New("outside business hours")

	// ErrRoomUnavailable marks an overlap with an active reservation.
	// Handlers translate it into an HTTP 409 response.
	ErrRoomUnavailable = errors.New("room unavailable")

	// ErrNotFound marks an unknown reservation or room id.
	ErrNotFound = errors.New("not found")

	// ErrNotParked is returned by unpark when the reservation has no
	// idle membership for that date.
	ErrNotParked = errors.New("reservation not parked")

	// ErrClosedHours is returned when pricing is asked to price an
	// instant inside the closed band. Reaching it means an upstream
	// validation bug, not bad user input.
	ErrClosedHours = errors.New("closed hours")
)

// ValidationError carries the names of the offending fields so the
// caller can re-render a form with them highlighted.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}
