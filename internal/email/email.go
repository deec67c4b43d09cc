package email

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/events"
	"github.com/hashicorp/go-hclog"
)

// Sender stands in for mail delivery, which lives outside this service.
// It records the notification that would be sent.
type Sender struct {
	log hclog.Logger
}

func NewSender(log hclog.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(_ context.Context, event events.BookingEvent) error {
	args := []interface{}{"type", event.Type, "booking", event.BookingID, "flight", event.FlightID, "seat", event.SeatNumber}
	if event.UserID != nil {
		args = append(args, "user", *event.UserID)
	}
	s.log.Info("send booking notification", args...)
	return nil
}
