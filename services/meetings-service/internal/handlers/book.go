package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/availability"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
)

type slotResponse struct {
	Time  string   `json:"time"`
	Users []string `json:"users"`
}

func (h *Handler) PublicEventTypes(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	items, err := h.eventTypes.ListEventTypesByUsername(r.Context(), username)
	if err != nil {
		h.fail(w, r, err, fmt.Sprintf("user with username %s", username))
		return
	}

	out := make([]model.PublicEventType, 0, len(items))
	for _, et := range items {
		if p, ok := et.Public(); ok {
			out = append(out, p)
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) PublicEventType(w http.ResponseWriter, r *http.Request) {
	username, url := r.PathValue("username"), r.PathValue("url")
	et, err := h.eventTypes.GetEventTypeByUsernameAndURL(r.Context(), username, url)
	if err != nil {
		h.fail(w, r, err, "event type")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, et.PublicView())
}

// PublicAvailabilities renders free slots in the zone named by ?tz (default UTC).
// Date keys are in the same zone as the times listed under them.
func (h *Handler) PublicAvailabilities(w http.ResponseWriter, r *http.Request) {
	out := time.UTC
	if tz := strings.TrimSpace(r.URL.Query().Get("tz")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			http.Error(w, fmt.Sprintf("unknown timezone %q", tz), http.StatusBadRequest)
			return
		}
		out = loc
	}

	username, url := r.PathValue("username"), r.PathValue("url")
	et, err := h.eventTypes.GetEventTypeByUsernameAndURL(r.Context(), username, url)
	if err != nil {
		h.fail(w, r, err, "event type")
		return
	}

	free, err := h.slots.GetAvailabilities(r.Context(), availability.Request{
		OwnerID:    et.OwnerID,
		TemplateID: et.AvailabilityID,
		Duration:   et.Duration(),
	})
	if err != nil {
		h.fail(w, r, err, "availability")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderSlots(free, out))
}

func renderSlots(free availability.FreeSlotsByDate, loc *time.Location) map[string][]slotResponse {
	dates := make([]string, 0, len(free))
	for date := range free {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	body := make(map[string][]slotResponse, len(free))
	for _, date := range dates {
		for _, s := range free[date] {
			users := s.Users
			if users == nil {
				users = []string{}
			}
			local := s.Time.In(loc)
			key := local.Format(availability.DateLayout)
			body[key] = append(body[key], slotResponse{Time: local.Format(time.RFC3339), Users: users})
		}
	}
	return body
}
