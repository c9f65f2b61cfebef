package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/availability"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/storage"
)

// ListAvailabilities skips stored templates that no longer parse.
func (h *Handler) ListAvailabilities(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}

	records, err := h.availabilities.ListAvailabilities(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err, "availability")
		return
	}
	out := make([]model.AvailabilityTemplate, 0, len(records))
	for _, rec := range records {
		if _, err := storage.TemplateFromRecord(rec); err != nil {
			h.logger.WarnContext(r.Context(), "skipping invalid availability template", "owner_id", ownerID, "availability_id", rec.ID, "err", err)
			continue
		}
		out = append(out, rec)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	rec, err := h.availabilities.CreateAvailability(r.Context(), ownerID, name)
	if err != nil {
		h.fail(w, r, err, "availability")
		return
	}
	h.logger.InfoContext(r.Context(), "availability created", "owner_id", ownerID, "availability_id", rec.ID)
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("availability_id"))
	if id == "" {
		http.Error(w, "availability_id is required", http.StatusBadRequest)
		return
	}

	var req struct {
		Name           string          `json:"name"`
		Availabilities json.RawMessage `json:"availabilities"`
		Timezone       string          `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	week, err := availability.ParseWeekly(req.Availabilities)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Timezone != "" {
		if _, err := availability.LoadLocation(req.Timezone); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	data, err := json.Marshal(week)
	if err != nil {
		h.fail(w, r, err, "availability")
		return
	}

	if err := h.availabilities.UpdateAvailability(r.Context(), ownerID, id, req.Name, data, req.Timezone); err != nil {
		h.fail(w, r, err, fmt.Sprintf("availability with availability_id %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("availability_id"))
	if id == "" {
		http.Error(w, "availability_id is required", http.StatusBadRequest)
		return
	}

	if err := h.availabilities.DeleteAvailability(r.Context(), ownerID, id); err != nil {
		h.fail(w, r, err, fmt.Sprintf("availability with availability_id %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownsAvailability reports whether availabilityID names one of the owner's templates.
func (h *Handler) ownsAvailability(r *http.Request, ownerID, availabilityID string) (bool, error) {
	_, err := h.availabilities.GetAvailability(r.Context(), ownerID, availabilityID)
	if err == nil {
		return true, nil
	}
	if storage.IsNotFound(err) {
		return false, nil
	}
	return false, err
}
