package domain

import "time"

// Interval is a half-open time range [Start, End).
// An interval ending exactly when another begins does not overlap it.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether the two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// EndsBefore reports whether the interval is over at t.
// End is exclusive, so an interval whose End equals t has already finished.
func (i Interval) EndsBefore(t time.Time) bool {
	return !i.End.After(t)
}

// StartsAfter reports whether the interval has not yet begun at t.
func (i Interval) StartsAfter(t time.Time) bool {
	return i.Start.After(t)
}

// Contains reports whether t falls inside [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !i.Start.After(t) && t.Before(i.End)
}
