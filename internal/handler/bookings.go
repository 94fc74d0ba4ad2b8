package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/shareit/backend/internal/domain"
	"github.com/pkordes/shareit/backend/internal/middleware"
)

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	ItemID *uuid.UUID `json:"itemId" validate:"required"`
	Start  *time.Time `json:"start" validate:"required"`
	End    *time.Time `json:"end" validate:"required"`
}

// BookingResponse is the JSON shape of one reservation.
type BookingResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"itemId"`
	BookerID  uuid.UUID `json:"bookerId"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateBooking handles POST /bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.bindActor(w, r)
	if !ok {
		return
	}

	var body CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, requestBody("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, requestBody("malformed request body"))
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(validationMessage(err)))
		return
	}

	created, err := s.bookings.Create(r.Context(), actor, *body.ItemID, *body.Start, *body.End)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingToResponse(created))
}

// ApproveBooking handles PATCH /bookings/{bookingId}?approved=true|false.
func (s *Server) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.bindActor(w, r)
	if !ok {
		return
	}
	id, ok := bindPathUUID(w, r, "bookingId")
	if !ok {
		return
	}

	var approved bool
	if err := runtime.BindQueryParameter("form", true, true, "approved", r.URL.Query(), &approved); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(fmt.Sprintf("invalid approved parameter: %v", err)))
		return
	}

	updated, err := s.bookings.Approve(r.Context(), id, actor, approved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(updated))
}

// CancelBooking handles PATCH /bookings/{bookingId}/cancel.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.bindActor(w, r)
	if !ok {
		return
	}
	id, ok := bindPathUUID(w, r, "bookingId")
	if !ok {
		return
	}

	updated, err := s.bookings.Cancel(r.Context(), id, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(updated))
}

// GetBooking handles GET /bookings/{bookingId}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.bindActor(w, r)
	if !ok {
		return
	}
	id, ok := bindPathUUID(w, r, "bookingId")
	if !ok {
		return
	}

	res, err := s.bookings.Get(r.Context(), id, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(res))
}

// ListBookerBookings handles GET /bookings?state=&page=&limit=.
func (s *Server) ListBookerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.bookings.ListForBooker)
}

// ListOwnerBookings handles GET /bookings/owner?state=&page=&limit=.
func (s *Server) ListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.bookings.ListForOwner)
}

type listFunc func(ctx context.Context, userID uuid.UUID, state domain.State, p domain.PaginationParams) ([]domain.Reservation, error)

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request, list listFunc) {
	actor, ok := s.bindActor(w, r)
	if !ok {
		return
	}

	var (
		rawState    *string
		page, limit *int
	)
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dest any
	}{
		{"state", &rawState},
		{"page", &page},
		{"limit", &limit},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody(fmt.Sprintf("invalid %s parameter: %v", p.name, err)))
			return
		}
	}

	state := domain.StateAll
	if rawState != nil {
		parsed, err := domain.ParseState(*rawState)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		state = parsed
	}

	params, err := domain.NewPaginationParams(page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rs, err := list(r.Context(), actor, state, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]BookingResponse, len(rs))
	for i, res := range rs {
		out[i] = bookingToResponse(res)
	}
	writeJSON(w, http.StatusOK, out)
}

// --- binding helpers --------------------------------------------------------

// bindActor reads the acting user from the X-Sharer-User-Id header.
// On failure it writes a 400 and returns false.
func (s *Server) bindActor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	values := r.Header.Values(middleware.ActorHeader)
	if len(values) == 0 {
		writeJSON(w, http.StatusBadRequest, requestBody(middleware.ActorHeader+" header is required"))
		return uuid.Nil, false
	}

	var actor uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", middleware.ActorHeader, values[0], &actor,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(fmt.Sprintf("invalid %s header: %v", middleware.ActorHeader, err)))
		return uuid.Nil, false
	}
	return actor, true
}

// bindPathUUID reads a UUID path parameter registered on the chi route.
func bindPathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(fmt.Sprintf("invalid %s: %v", name, err)))
		return uuid.Nil, false
	}
	return id, true
}

// jsonFieldName makes validator report fields by their JSON names.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// validationMessage flattens validator errors into "itemId is required; ...".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Tag() == "required" {
			parts[i] = fe.Field() + " is required"
			continue
		}
		parts[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// --- mapping helpers --------------------------------------------------------

// bookingToResponse converts a domain.Reservation into its JSON shape.
func bookingToResponse(r domain.Reservation) BookingResponse {
	return BookingResponse{
		ID:        r.ID,
		ItemID:    r.ItemID,
		BookerID:  r.BookerID,
		OwnerID:   r.OwnerID,
		Start:     r.Start,
		End:       r.End,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
