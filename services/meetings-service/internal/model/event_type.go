package model

import "time"

// ReservedURL marks the internal placeholder row every user owns.
const ReservedURL = "RESERVED_FOR_INTERNAL_USE_ONLY"

type EventType struct {
	OwnerID        string    `json:"owner"`
	ID             string    `json:"event_type_id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	URL            string    `json:"url"`
	DurationMins   int       `json:"duration"`
	AvailabilityID string    `json:"availability_id"`
	Hidden         bool      `json:"hidden"`
	CreatedAt      time.Time `json:"created_at"`
}

type PublicEventType struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DurationMins int    `json:"duration"`
	URL          string `json:"url"`
}

// Public returns the listing view, or false for hidden and reserved rows.
func (e EventType) Public() (PublicEventType, bool) {
	if e.URL == ReservedURL || e.Hidden {
		return PublicEventType{}, false
	}
	return e.PublicView(), true
}

// PublicView is the booking-page view. Hidden types stay reachable by direct url.
func (e EventType) PublicView() PublicEventType {
	return PublicEventType{
		Name:         e.Name,
		Description:  e.Description,
		DurationMins: e.DurationMins,
		URL:          e.URL,
	}
}

func (e EventType) Duration() time.Duration {
	return time.Duration(e.DurationMins) * time.Minute
}
