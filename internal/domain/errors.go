package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// The per-entity not-found errors all satisfy errors.Is(err, ErrNotFound).
var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrItemNotFound        = fmt.Errorf("item %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)
)

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. end before start, item not available).
// Handlers should map this to HTTP 400 Bad Request.
var ErrValidation = errors.New("validation error")

// Booking validation failures. Each one satisfies errors.Is(err, ErrValidation)
// so callers that only care about the category can test for the parent.
var (
	ErrInvalidInterval = fmt.Errorf("%w: end must be after start", ErrValidation)
	ErrItemUnavailable = fmt.Errorf("%w: item is not available for booking", ErrValidation)
	ErrSelfBooking     = fmt.Errorf("%w: owner cannot book their own item", ErrValidation)
)

// ErrIntervalConflict is returned when the requested interval overlaps an
// existing reservation of the same item, including when a concurrent
// creation won the race. Handlers should map this to HTTP 409.
var ErrIntervalConflict = errors.New("item is already booked for this interval")

// ErrForbidden is returned when the acting user is neither allowed to view
// nor to change the reservation. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrIllegalTransition is returned when an event cannot be applied to the
// reservation's current status. Handlers should map this to HTTP 409.
var ErrIllegalTransition = errors.New("illegal status transition")
