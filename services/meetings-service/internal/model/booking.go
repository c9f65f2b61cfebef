package model

import "time"

type Booking struct {
	OwnerID   string    `json:"owner"`
	ID        string    `json:"booking_id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Host      string    `json:"host"`
	Guests    []string  `json:"guests"`
	CreatedAt time.Time `json:"created_at"`
}
