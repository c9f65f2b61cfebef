package outbox

import (
	"encoding/json"
	"time"
)

// Event is written to outbox_events; the Kafka topic equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	AggregateBooking = "booking"

	TopicBookingCreated = "meetings.booking.created.v1"
	TopicBookingUpdated = "meetings.booking.updated.v1"
)

type BookingPayload struct {
	OwnerID    string    `json:"owner_id"`
	BookingID  string    `json:"booking_id"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Host       string    `json:"host"`
	Guests     []string  `json:"guests"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(topic string, p BookingPayload) (Event, error) {
	if p.Guests == nil {
		p.Guests = []string{}
	}
	body, err := json.Marshal(p)
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: AggregateBooking,
		AggregateID:   p.BookingID,
		EventType:     topic,
		Payload:       body,
	}, nil
}
