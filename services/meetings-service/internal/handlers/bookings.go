package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
)

func decodeBooking(w http.ResponseWriter, r *http.Request, ownerID string) (model.Booking, bool) {
	var req struct {
		Name   string   `json:"name"`
		Date   string   `json:"date"`
		Host   string   `json:"host"`
		Guests []string `json:"guests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return model.Booking{}, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return model.Booking{}, false
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, "date must be RFC3339", http.StatusBadRequest)
		return model.Booking{}, false
	}

	guests := make([]string, 0, len(req.Guests))
	for _, g := range req.Guests {
		if g = strings.TrimSpace(g); g != "" {
			guests = append(guests, g)
		}
	}
	return model.Booking{
		OwnerID: ownerID,
		Name:    req.Name,
		Date:    date.UTC(),
		Host:    strings.TrimSpace(req.Host),
		Guests:  guests,
	}, true
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	items, err := h.bookings.ListBookings(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err, "booking")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	b, ok := decodeBooking(w, r, ownerID)
	if !ok {
		return
	}

	id, err := h.bookings.CreateBooking(r.Context(), b)
	if err != nil {
		h.fail(w, r, err, "booking")
		return
	}
	h.logger.InfoContext(r.Context(), "booking created", "owner_id", ownerID, "booking_id", id)
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"booking_id": id})
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("booking_id"))
	if id == "" {
		http.Error(w, "booking_id is required", http.StatusBadRequest)
		return
	}
	b, ok := decodeBooking(w, r, ownerID)
	if !ok {
		return
	}
	b.ID = id

	if err := h.bookings.UpdateBooking(r.Context(), b); err != nil {
		h.fail(w, r, err, fmt.Sprintf("booking with booking_id %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
