// Package events defines the messages the server publishes about bookings.
package events

import (
	"strconv"
	"time"
)

const TypeSeatBooked = "seat_booked"

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"booking_id"`
	FlightID   int64     `json:"flight_id"`
	SeatNumber string    `json:"seat_number"`
	UserID     *int64    `json:"user_id,omitempty"`
	PriceCents int64     `json:"price_cents"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Key partitions events by flight so one flight's bookings stay ordered.
func (e BookingEvent) Key() string {
	return "flight-" + strconv.FormatInt(e.FlightID, 10)
}
