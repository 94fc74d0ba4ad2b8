// Package lifecycle holds the reservation status machine and the actor
// guards that run before each transition.
//
// The machine has no memory of its own: Transition is a pure function of the
// reservation's current status and the requested event.
package lifecycle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/shareit/backend/internal/domain"
)

type edge struct {
	from  domain.Status
	event domain.Event
}

// transitions lists every legal edge. Anything missing is illegal.
var transitions = map[edge]domain.Status{
	{domain.StatusWaiting, domain.EventApprove}: domain.StatusApproved,
	{domain.StatusWaiting, domain.EventReject}:  domain.StatusRejected,
	{domain.StatusWaiting, domain.EventCancel}:  domain.StatusCancelled,
}

// Transition returns the status reached by applying event to from.
// Returns domain.ErrIllegalTransition for any pair not in the table.
func Transition(from domain.Status, event domain.Event) (domain.Status, error) {
	to, ok := transitions[edge{from, event}]
	if !ok {
		return from, fmt.Errorf("%w: %s from %s", domain.ErrIllegalTransition, event, from)
	}
	return to, nil
}

// Authorize checks that actor may send event to r.
// APPROVE and REJECT belong to the item owner. CANCEL belongs to the booker
// unless policy is domain.CancelByOwner.
// Returns domain.ErrForbidden on mismatch.
func Authorize(r domain.Reservation, actor uuid.UUID, event domain.Event, policy domain.CancelPolicy) error {
	var allowed uuid.UUID
	switch event {
	case domain.EventApprove, domain.EventReject:
		allowed = r.OwnerID
	case domain.EventCancel:
		allowed = r.BookerID
		if policy == domain.CancelByOwner {
			allowed = r.OwnerID
		}
	default:
		return fmt.Errorf("%w: unknown event %q", domain.ErrIllegalTransition, event)
	}
	if actor != allowed {
		return fmt.Errorf("%w: user %s may not %s reservation %s", domain.ErrForbidden, actor, event, r.ID)
	}
	return nil
}

// CanView reports whether actor is a party to r.
func CanView(r domain.Reservation, actor uuid.UUID) bool {
	return actor == r.BookerID || actor == r.OwnerID
}

// EventForApproval maps the approved flag of a status update to its event.
func EventForApproval(approved bool) domain.Event {
	if approved {
		return domain.EventApprove
	}
	return domain.EventReject
}
