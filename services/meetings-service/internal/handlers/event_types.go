package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

type eventTypeRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	Duration       int    `json:"duration"`
	AvailabilityID string `json:"availability_id"`
	Hidden         bool   `json:"hidden"`
}

// decodeEventType validates the body and writes 400 on failure.
func (h *Handler) decodeEventType(w http.ResponseWriter, r *http.Request, ownerID string) (model.EventType, bool) {
	var req eventTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return model.EventType{}, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.URL = strings.TrimSpace(req.URL)
	req.AvailabilityID = strings.TrimSpace(req.AvailabilityID)

	switch {
	case req.Name == "":
		http.Error(w, "name is required", http.StatusBadRequest)
		return model.EventType{}, false
	case !slugPattern.MatchString(req.URL) || req.URL == model.ReservedURL:
		http.Error(w, "url must be a slug of letters, digits, '-' or '_'", http.StatusBadRequest)
		return model.EventType{}, false
	case req.Duration <= 0:
		http.Error(w, "duration must be a positive number of minutes", http.StatusBadRequest)
		return model.EventType{}, false
	case req.AvailabilityID == "":
		http.Error(w, "availability_id is required", http.StatusBadRequest)
		return model.EventType{}, false
	}

	ok, err := h.ownsAvailability(r, ownerID, req.AvailabilityID)
	if err != nil {
		h.fail(w, r, err, "availability")
		return model.EventType{}, false
	}
	if !ok {
		http.Error(w, fmt.Sprintf("availability with availability_id %s does not exist", req.AvailabilityID), http.StatusBadRequest)
		return model.EventType{}, false
	}

	username := strings.TrimSpace(r.Header.Get(OwnerUsernameHeader))
	if username == "" {
		username = ownerID
	}
	return model.EventType{
		OwnerID:        ownerID,
		Username:       username,
		Name:           req.Name,
		Description:    req.Description,
		URL:            req.URL,
		DurationMins:   req.Duration,
		AvailabilityID: req.AvailabilityID,
		Hidden:         req.Hidden,
	}, true
}

func (h *Handler) ListEventTypes(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	items, err := h.eventTypes.ListEventTypes(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err, "event type")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateEventType(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	et, ok := h.decodeEventType(w, r, ownerID)
	if !ok {
		return
	}

	id, err := h.eventTypes.CreateEventType(r.Context(), et)
	if err != nil {
		h.fail(w, r, err, fmt.Sprintf("event type with url %s", et.URL))
		return
	}
	h.logger.InfoContext(r.Context(), "event type created", "owner_id", ownerID, "event_type_id", id, "url", et.URL)
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"event_type_id": id})
}

func (h *Handler) UpdateEventType(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("event_type_id"))
	if id == "" {
		http.Error(w, "event_type_id is required", http.StatusBadRequest)
		return
	}
	et, ok := h.decodeEventType(w, r, ownerID)
	if !ok {
		return
	}
	et.ID = id

	if err := h.eventTypes.UpdateEventType(r.Context(), et); err != nil {
		h.fail(w, r, err, fmt.Sprintf("event type with event_type_id %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteEventType(w http.ResponseWriter, r *http.Request) {
	ownerID := requireOwner(w, r)
	if ownerID == "" {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("event_type_id"))
	if id == "" {
		http.Error(w, "event_type_id is required", http.StatusBadRequest)
		return
	}
	if err := h.eventTypes.DeleteEventType(r.Context(), ownerID, id); err != nil {
		h.fail(w, r, err, fmt.Sprintf("event type with event_type_id %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
