package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle status of a reservation.
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Blocking reports whether a reservation in status s still holds its interval.
// REJECTED and CANCELLED reservations release the item.
func (s Status) Blocking() bool {
	return s == StatusWaiting || s == StatusApproved
}

// Event is a command that drives a reservation through its lifecycle.
type Event string

const (
	EventApprove Event = "APPROVE"
	EventReject  Event = "REJECT"
	EventCancel  Event = "CANCEL"
)

// Reservation binds a booker, an item and a time interval with a status.
// Start, End, ItemID and BookerID never change after creation.
// OwnerID is the current owner of the item, filled in by the store on read.
type Reservation struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	BookerID  uuid.UUID
	OwnerID   uuid.UUID
	Start     time.Time
	End       time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns the reserved time range.
func (r Reservation) Interval() Interval {
	return Interval{Start: r.Start, End: r.End}
}

// State is a named time-relative filter applied to reservation listings.
type State string

const (
	StateAll      State = "ALL"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
	StatePast     State = "PAST"
	StateCurrent  State = "CURRENT"
	StateFuture   State = "FUTURE"
)

// States lists every listing filter in a stable order.
var States = []State{StateAll, StateWaiting, StateRejected, StatePast, StateCurrent, StateFuture}

// ParseState converts a case-insensitive name into a State.
// An empty string means ALL.
func ParseState(s string) (State, error) {
	if strings.TrimSpace(s) == "" {
		return StateAll, nil
	}
	st := State(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range States {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown state: %s", ErrValidation, s)
}

// Ascending reports whether listings in this state are ordered by start
// ascending. ALL is the only ascending listing; every other state returns the
// most recent reservation first.
func (s State) Ascending() bool {
	return s == StateAll
}

// Matches reports whether r belongs to the listing for state s at instant now.
func (s State) Matches(r Reservation, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StateWaiting:
		return r.Status == StatusWaiting
	case StateRejected:
		return r.Status == StatusRejected
	case StatePast:
		return r.Interval().EndsBefore(now)
	case StateCurrent:
		return r.Interval().Contains(now)
	case StateFuture:
		return r.Interval().StartsAfter(now)
	}
	return false
}

// ConflictPolicy decides which existing reservations block a new one.
type ConflictPolicy int

const (
	// ConflictActiveOnly ignores REJECTED and CANCELLED reservations.
	ConflictActiveOnly ConflictPolicy = iota
	// ConflictAnyStatus treats every overlapping reservation as a conflict,
	// whatever its status.
	ConflictAnyStatus
)

// Blocks reports whether an overlapping reservation in status s prevents a
// new booking under this policy.
func (p ConflictPolicy) Blocks(s Status) bool {
	if p == ConflictAnyStatus {
		return true
	}
	return s.Blocking()
}

func (p ConflictPolicy) String() string {
	if p == ConflictAnyStatus {
		return "any"
	}
	return "active"
}

// ParseConflictPolicy accepts "active" or "any".
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return ConflictActiveOnly, nil
	case "any":
		return ConflictAnyStatus, nil
	}
	return 0, fmt.Errorf("unknown conflict policy %q (want active or any)", s)
}

// CancelPolicy decides which party may cancel a waiting reservation.
type CancelPolicy int

const (
	// CancelByBooker lets the booker withdraw their own request.
	CancelByBooker CancelPolicy = iota
	// CancelByOwner restricts cancellation to the item owner.
	CancelByOwner
)

func (p CancelPolicy) String() string {
	if p == CancelByOwner {
		return "owner"
	}
	return "booker"
}

// ParseCancelPolicy accepts "booker" or "owner".
func ParseCancelPolicy(s string) (CancelPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "booker":
		return CancelByBooker, nil
	case "owner":
		return CancelByOwner, nil
	}
	return 0, fmt.Errorf("unknown cancel policy %q (want booker or owner)", s)
}

// ItemSummary holds the neighbouring approved bookings of an item around now.
// Either field is nil when there is no such booking or the viewer is not the
// item owner.
type ItemSummary struct {
	ItemID uuid.UUID
	Last   *Reservation
	Next   *Reservation
}
