package domain

import "time"

// ClaimOutcome is the result of a single attempt to take a seat.
type ClaimOutcome int

const (
	ClaimFailed ClaimOutcome = iota
	Claimed
	AlreadyBooked
	SeatNotFound
	FlightNotFound
)

func (o ClaimOutcome) String() string {
	switch o {
	case ClaimFailed:
		return "failed"
	case Claimed:
		return "claimed"
	case AlreadyBooked:
		return "already_booked"
	case SeatNotFound:
		return "seat_not_found"
	case FlightNotFound:
		return "flight_not_found"
	default:
		return "unknown"
	}
}

// Booking is the ticket recorded after a seat has been claimed.
type Booking struct {
	ID         int64
	FlightID   int64
	SeatNumber string
	UserID     *int64
	PriceCents int64
	CreatedAt  time.Time
}
