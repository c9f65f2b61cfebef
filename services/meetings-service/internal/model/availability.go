package model

import (
	"encoding/json"
	"time"
)

// AvailabilityTemplate is the stored form of a weekly template. Data keeps the
// raw JSON so listing can still show records that no longer parse.
type AvailabilityTemplate struct {
	OwnerID   string          `json:"owner"`
	ID        string          `json:"availability_id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"availabilities"`
	Timezone  string          `json:"timezone"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
