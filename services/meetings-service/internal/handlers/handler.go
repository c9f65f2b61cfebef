package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/availability"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/storage"
)

// Headers set by the owner authentication middleware.
const (
	OwnerIDHeader       = "X-Owner-Id"
	OwnerUsernameHeader = "X-Owner-Username"
)

type AvailabilityStore interface {
	ListAvailabilities(ctx context.Context, ownerID string) ([]model.AvailabilityTemplate, error)
	GetAvailability(ctx context.Context, ownerID, id string) (model.AvailabilityTemplate, error)
	CreateAvailability(ctx context.Context, ownerID, name string) (model.AvailabilityTemplate, error)
	UpdateAvailability(ctx context.Context, ownerID, id, name string, data []byte, timezone string) error
	DeleteAvailability(ctx context.Context, ownerID, id string) error
}

type EventTypeStore interface {
	ListEventTypes(ctx context.Context, ownerID string) ([]model.EventType, error)
	CreateEventType(ctx context.Context, e model.EventType) (string, error)
	UpdateEventType(ctx context.Context, e model.EventType) error
	DeleteEventType(ctx context.Context, ownerID, id string) error
	ListEventTypesByUsername(ctx context.Context, username string) ([]model.EventType, error)
	GetEventTypeByUsernameAndURL(ctx context.Context, username, url string) (model.EventType, error)
}

type BookingStore interface {
	ListBookings(ctx context.Context, ownerID string) ([]model.Booking, error)
	CreateBooking(ctx context.Context, b model.Booking) (string, error)
	UpdateBooking(ctx context.Context, b model.Booking) error
}

type SlotFinder interface {
	GetAvailabilities(ctx context.Context, req availability.Request) (availability.FreeSlotsByDate, error)
}

type Deps struct {
	Availabilities AvailabilityStore
	EventTypes     EventTypeStore
	Bookings       BookingStore
	Slots          SlotFinder
	Logger         *slog.Logger
}

type Handler struct {
	availabilities AvailabilityStore
	eventTypes     EventTypeStore
	bookings       BookingStore
	slots          SlotFinder
	logger         *slog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		availabilities: d.Availabilities,
		eventTypes:     d.EventTypes,
		bookings:       d.Bookings,
		slots:          d.Slots,
		logger:         d.Logger,
	}
}

// Register mounts owner routes behind owner and booking-page routes behind public.
func (h *Handler) Register(mux *http.ServeMux, owner, public func(http.Handler) http.Handler) {
	ownerRoute := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, owner(fn))
	}
	publicRoute := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, public(fn))
	}

	ownerRoute("GET /api/v1/availabilities", h.ListAvailabilities)
	ownerRoute("POST /api/v1/availabilities", h.CreateAvailability)
	ownerRoute("PUT /api/v1/availabilities", h.UpdateAvailability)
	ownerRoute("DELETE /api/v1/availabilities", h.DeleteAvailability)

	ownerRoute("GET /api/v1/event-types", h.ListEventTypes)
	ownerRoute("POST /api/v1/event-types", h.CreateEventType)
	ownerRoute("PUT /api/v1/event-types", h.UpdateEventType)
	ownerRoute("DELETE /api/v1/event-types", h.DeleteEventType)

	ownerRoute("GET /api/v1/bookings", h.ListBookings)
	ownerRoute("POST /api/v1/bookings", h.CreateBooking)
	ownerRoute("PUT /api/v1/bookings", h.UpdateBooking)

	publicRoute("GET /api/v1/book/{username}", h.PublicEventTypes)
	publicRoute("GET /api/v1/book/{username}/{url}", h.PublicEventType)
	publicRoute("GET /api/v1/book/{username}/{url}/availabilities", h.PublicAvailabilities)
}

func ownerFromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(OwnerIDHeader))
}

// requireOwner writes 401 and returns "" when the request carries no owner.
func requireOwner(w http.ResponseWriter, r *http.Request) string {
	ownerID := ownerFromHeader(r)
	if ownerID == "" {
		http.Error(w, "missing owner identity", http.StatusUnauthorized)
	}
	return ownerID
}

func message(w http.ResponseWriter, status int, msg string) {
	httpx.WriteJSON(w, status, map[string]string{"message": msg})
}

// fail maps storage and availability errors onto HTTP responses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, thing string) {
	switch {
	case storage.IsNotFound(err):
		message(w, http.StatusNotFound, fmt.Sprintf("%s does not exist", thing))
	case storage.IsConflict(err):
		message(w, http.StatusConflict, fmt.Sprintf("%s already exists", thing))
	case errors.Is(err, availability.ErrUpstream):
		h.logger.ErrorContext(r.Context(), "busy-interval provider failed", "path", r.URL.Path, "err", err)
		message(w, http.StatusInternalServerError, "internal service error")
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		message(w, http.StatusInternalServerError, "internal service error")
	}
}
