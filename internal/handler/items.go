package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/shareit/backend/internal/domain"
)

// BookingShort is a reservation as embedded in an item view.
type BookingShort struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ItemBookingsResponse is the body of GET /items/{itemId}/bookings.
type ItemBookingsResponse struct {
	ItemID      uuid.UUID     `json:"itemId"`
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
}

// FinishedResponse is the body of GET /items/{itemId}/bookings/finished.
type FinishedResponse struct {
	ItemID   uuid.UUID `json:"itemId"`
	Finished bool      `json:"finished"`
}

// GetItemBookings handles GET /items/{itemId}/bookings.
// Non-owners get a response with both bookings null.
func (s *Server) GetItemBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.bindActor(w, r)
	if !ok {
		return
	}
	itemID, ok := bindPathUUID(w, r, "itemId")
	if !ok {
		return
	}

	summary, err := s.bookings.ItemSummary(r.Context(), itemID, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemBookingsResponse{
		ItemID:      summary.ItemID,
		LastBooking: bookingToShort(summary.Last),
		NextBooking: bookingToShort(summary.Next),
	})
}

// GetFinishedBooking handles GET /items/{itemId}/bookings/finished.
func (s *Server) GetFinishedBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.bindActor(w, r)
	if !ok {
		return
	}
	itemID, ok := bindPathUUID(w, r, "itemId")
	if !ok {
		return
	}

	finished, err := s.bookings.HasFinished(r.Context(), itemID, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FinishedResponse{ItemID: itemID, Finished: finished})
}

func bookingToShort(r *domain.Reservation) *BookingShort {
	if r == nil {
		return nil
	}
	return &BookingShort{ID: r.ID, BookerID: r.BookerID, Start: r.Start, End: r.End}
}
