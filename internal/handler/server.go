// Package handler implements the HTTP handlers for the ShareIt booking API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, bookings.go, items.go) but share the same Server struct.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/shareit/backend/internal/domain"
)

// ReservationServicer defines the booking operations the handlers depend on.
// It is declared here, in the consumer package, so handler tests can inject a
// mock without a database or a real service.
type ReservationServicer interface {
	Create(ctx context.Context, bookerID, itemID uuid.UUID, start, end time.Time) (domain.Reservation, error)
	Approve(ctx context.Context, reservationID, actorID uuid.UUID, approved bool) (domain.Reservation, error)
	Cancel(ctx context.Context, reservationID, actorID uuid.UUID) (domain.Reservation, error)
	Get(ctx context.Context, reservationID, actorID uuid.UUID) (domain.Reservation, error)
	ListForBooker(ctx context.Context, bookerID uuid.UUID, state domain.State, p domain.PaginationParams) ([]domain.Reservation, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, state domain.State, p domain.PaginationParams) ([]domain.Reservation, error)
	ItemSummary(ctx context.Context, itemID, actorID uuid.UUID) (domain.ItemSummary, error)
	HasFinished(ctx context.Context, itemID, userID uuid.UUID) (bool, error)
}

// Server serves every API endpoint. Wire it in main.go via Routes.
type Server struct {
	bookings ReservationServicer
	validate *validator.Validate
	log      *slog.Logger
	openAPI  []byte
}

// NewServer constructs the Server. openAPI is served verbatim at /openapi.yaml
// and may be nil; a nil logger falls back to slog.Default.
func NewServer(bookings ReservationServicer, openAPI []byte, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Server{
		bookings: bookings,
		validate: v,
		log:      logger,
		openAPI:  openAPI,
	}
}

// NewHealthHandler returns a Server that only answers health checks.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns a chi router with every endpoint registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", s.CreateBooking)
		r.Get("/", s.ListBookerBookings)
		r.Get("/owner", s.ListOwnerBookings)
		r.Get("/{bookingId}", s.GetBooking)
		r.Patch("/{bookingId}", s.ApproveBooking)
		r.Patch("/{bookingId}/cancel", s.CancelBooking)
	})

	r.Route("/items/{itemId}/bookings", func(r chi.Router) {
		r.Get("/", s.GetItemBookings)
		r.Get("/finished", s.GetFinishedBooking)
	})

	return r
}
