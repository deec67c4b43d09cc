package domain

import "time"

type Flight struct {
	ID            int64     `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departure_date"`
}

type Seat struct {
	FlightID   int64  `json:"flight_id"`
	Number     string `json:"number"`
	PriceCents int64  `json:"price_cents"`
	Free       bool   `json:"free"`
}
