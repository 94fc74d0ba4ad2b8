// Package service contains the booking engine of the ShareIt API.
// Services validate requests, enforce the reservation lifecycle and orchestrate
// repo calls. No SQL lives here; services depend on repo interfaces only.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/shareit/backend/internal/domain"
	"github.com/pkordes/shareit/backend/internal/lifecycle"
	"github.com/pkordes/shareit/backend/internal/repo"
)

// Options tunes a ReservationService. The zero value selects the default
// policies, time.Now and slog.Default.
type Options struct {
	ConflictPolicy domain.ConflictPolicy
	CancelPolicy   domain.CancelPolicy
	Now            func() time.Time
	Logger         *slog.Logger
}

// ReservationService creates reservations and moves them through their
// lifecycle. It holds no reservation state of its own.
type ReservationService struct {
	users        repo.UserRepo
	items        repo.ItemRepo
	reservations repo.ReservationRepo

	conflict domain.ConflictPolicy
	cancel   domain.CancelPolicy
	now      func() time.Time
	log      *slog.Logger
}

// NewReservationService constructs a ReservationService over the given repos.
func NewReservationService(users repo.UserRepo, items repo.ItemRepo, reservations repo.ReservationRepo, opts Options) *ReservationService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ReservationService{
		users:        users,
		items:        items,
		reservations: reservations,
		conflict:     opts.ConflictPolicy,
		cancel:       opts.CancelPolicy,
		now:          opts.Now,
		log:          opts.Logger,
	}
}

// ---- Create ----

// Create books itemID for bookerID over [start, end). The new reservation is
// WAITING until the item owner approves or rejects it.
func (s *ReservationService) Create(ctx context.Context, bookerID, itemID uuid.UUID, start, end time.Time) (domain.Reservation, error) {
	if _, err := s.users.GetByID(ctx, bookerID); err != nil {
		return domain.Reservation{}, s.rejected(ctx, "Create", err, "booker_id", bookerID)
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return domain.Reservation{}, s.rejected(ctx, "Create", err, "item_id", itemID)
	}

	iv := domain.Interval{Start: start, End: end}
	if !iv.Valid() {
		err := fmt.Errorf("%w: start %s is not before end %s",
			domain.ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
		return domain.Reservation{}, s.rejected(ctx, "Create", err, "item_id", itemID)
	}
	if !item.Available {
		return domain.Reservation{}, s.rejected(ctx, "Create", domain.ErrItemUnavailable, "item_id", itemID)
	}
	if item.OwnerID == bookerID {
		return domain.Reservation{}, s.rejected(ctx, "Create", domain.ErrSelfBooking, "item_id", itemID)
	}

	created, err := s.reservations.Create(ctx, domain.Reservation{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   domain.StatusWaiting,
	}, s.conflict)
	if err != nil {
		return domain.Reservation{}, s.rejected(ctx, "Create", err, "item_id", itemID)
	}

	s.log.InfoContext(ctx, "reservation created",
		"reservation_id", created.ID,
		"item_id", created.ItemID,
		"booker_id", created.BookerID,
		"start", created.Start,
		"end", created.End,
	)
	return created, nil
}

// ---- Status changes ----

// ChangeStatus applies event to a reservation on behalf of actorID.
// The reservation must exist, the actor must be allowed to fire the event and
// the event must be legal from the current status.
func (s *ReservationService) ChangeStatus(ctx context.Context, reservationID, actorID uuid.UUID, event domain.Event) (domain.Reservation, error) {
	current, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, s.rejected(ctx, "ChangeStatus", err, "reservation_id", reservationID)
	}

	if err := lifecycle.Authorize(current, actorID, event, s.cancel); err != nil {
		return domain.Reservation{}, s.rejected(ctx, "ChangeStatus", err,
			"reservation_id", reservationID, "actor_id", actorID, "event", event)
	}

	next, err := lifecycle.Transition(current.Status, event)
	if err != nil {
		return domain.Reservation{}, s.rejected(ctx, "ChangeStatus", err,
			"reservation_id", reservationID, "status", current.Status, "event", event)
	}

	updated, err := s.reservations.UpdateStatus(ctx, reservationID, current.Status, next)
	if err != nil {
		return domain.Reservation{}, s.rejected(ctx, "ChangeStatus", err, "reservation_id", reservationID)
	}

	s.log.InfoContext(ctx, "reservation status changed",
		"reservation_id", updated.ID,
		"actor_id", actorID,
		"event", event,
		"from", current.Status,
		"to", updated.Status,
	)
	return updated, nil
}

// Approve approves or rejects a waiting reservation. Only the item owner may.
func (s *ReservationService) Approve(ctx context.Context, reservationID, actorID uuid.UUID, approved bool) (domain.Reservation, error) {
	return s.ChangeStatus(ctx, reservationID, actorID, lifecycle.EventForApproval(approved))
}

// Cancel withdraws a waiting reservation.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, actorID uuid.UUID) (domain.Reservation, error) {
	return s.ChangeStatus(ctx, reservationID, actorID, domain.EventCancel)
}

// ---- Reads ----

// Get returns a reservation to its booker or to the item owner.
func (s *ReservationService) Get(ctx context.Context, reservationID, actorID uuid.UUID) (domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Get: %w", err)
	}
	if !lifecycle.CanView(r, actorID) {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Get: %w", domain.ErrForbidden)
	}
	return r, nil
}

// ListForBooker lists the reservations made by bookerID that match state.
func (s *ReservationService) ListForBooker(ctx context.Context, bookerID uuid.UUID, state domain.State, p domain.PaginationParams) ([]domain.Reservation, error) {
	if _, err := s.users.GetByID(ctx, bookerID); err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListForBooker: %w", err)
	}
	rs, err := s.reservations.ListByBooker(ctx, bookerID, state, s.now(), p)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListForBooker: %w", err)
	}
	return rs, nil
}

// ListForOwner lists the reservations of items owned by ownerID that match state.
func (s *ReservationService) ListForOwner(ctx context.Context, ownerID uuid.UUID, state domain.State, p domain.PaginationParams) ([]domain.Reservation, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListForOwner: %w", err)
	}
	rs, err := s.reservations.ListByOwner(ctx, ownerID, state, s.now(), p)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListForOwner: %w", err)
	}
	return rs, nil
}

// ItemSummary returns the last and next approved bookings of an item.
// Only the owner sees them; anyone else gets a summary with both unset.
func (s *ReservationService) ItemSummary(ctx context.Context, itemID, actorID uuid.UUID) (domain.ItemSummary, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return domain.ItemSummary{}, fmt.Errorf("service.ReservationService.ItemSummary: %w", err)
	}
	summary := domain.ItemSummary{ItemID: itemID}
	if item.OwnerID != actorID {
		return summary, nil
	}

	rs, err := s.reservations.ListByItem(ctx, itemID)
	if err != nil {
		return domain.ItemSummary{}, fmt.Errorf("service.ReservationService.ItemSummary: %w", err)
	}

	now := s.now()
	for i := range rs {
		r := rs[i]
		if r.Status != domain.StatusApproved {
			continue
		}
		if r.Interval().StartsAfter(now) {
			if summary.Next == nil || r.Start.Before(summary.Next.Start) {
				summary.Next = &r
			}
			continue
		}
		if summary.Last == nil || r.Start.After(summary.Last.Start) {
			summary.Last = &r
		}
	}
	return summary, nil
}

// HasFinished reports whether userID holds an approved reservation of itemID
// that is already over.
func (s *ReservationService) HasFinished(ctx context.Context, itemID, userID uuid.UUID) (bool, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return false, fmt.Errorf("service.ReservationService.HasFinished: %w", err)
	}
	_, err := s.reservations.FindFinished(ctx, itemID, userID, s.now())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("service.ReservationService.HasFinished: %w", err)
	}
}

// rejected wraps err with the operation name and logs expected domain
// failures at debug level.
func (s *ReservationService) rejected(ctx context.Context, op string, err error, attrs ...any) error {
	if isDomainError(err) {
		s.log.DebugContext(ctx, "reservation request rejected", append([]any{"op", op, "err", err}, attrs...)...)
	}
	return fmt.Errorf("service.ReservationService.%s: %w", op, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrValidation,
		domain.ErrIntervalConflict,
		domain.ErrForbidden,
		domain.ErrIllegalTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
