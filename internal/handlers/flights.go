package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/protocol"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/session"
)

func (h *Handlers) getFlights(ctx context.Context, sess *session.Session, _ []string) protocol.Result {
	list, err := h.flights.List(ctx)
	if err != nil {
		h.log.Error("list flights", "session", sess.ID, "error", err)
		return storeError(err)
	}
	if len(list) == 0 {
		return protocol.Error("No flights available")
	}

	records := make([]string, 0, len(list))
	for _, f := range list {
		records = append(records, formatFlight(f))
	}
	return protocol.Records(records)
}

func formatFlight(f domain.Flight) string {
	return fmt.Sprintf("Flight ID: %d, From: %s, To: %s, Date: %s",
		f.ID, f.Origin, f.Destination, f.DepartureDate.Format(dateLayout))
}

func (h *Handlers) getSeats(ctx context.Context, sess *session.Session, args []string) protocol.Result {
	if len(args) < 1 {
		return protocol.Error(msgMissingParameters)
	}
	flightID, ok := parseID(args[0])
	if !ok {
		return protocol.Error("Invalid flight ID")
	}

	seats, err := h.flights.FreeSeats(ctx, flightID)
	if err != nil {
		h.log.Error("list seats", "session", sess.ID, "flight", flightID, "error", err)
		return storeError(err)
	}
	if len(seats) == 0 {
		return protocol.Error("No available seats")
	}

	items := make([]string, 0, len(seats))
	for _, s := range seats {
		items = append(items, fmt.Sprintf("[%s-Price:%s]", s.Number, formatPrice(s.PriceCents)))
	}
	return protocol.Success("Seats: " + strings.Join(items, ", "))
}

func (h *Handlers) bookSeat(ctx context.Context, sess *session.Session, args []string) protocol.Result {
	if len(args) < 2 {
		return protocol.Error(msgMissingParameters)
	}
	flightID, ok := parseID(args[0])
	if !ok {
		return protocol.Error("Invalid flight ID")
	}
	seatNumber := args[1]

	input := booking.ClaimInput{FlightID: flightID, SeatNumber: seatNumber}
	if userID, ok := sess.UserID(); ok {
		input.UserID = &userID
	}

	outcome, err := h.booking.TryClaim(ctx, input)
	if err != nil {
		h.log.Error("book seat", "session", sess.ID, "flight", flightID, "seat", seatNumber, "error", err)
		return protocol.Error("Could not book seat")
	}

	switch outcome {
	case domain.Claimed:
		return protocol.Success(fmt.Sprintf("SUCCESS: Seat %s booked for flight %d", seatNumber, flightID))
	case domain.AlreadyBooked:
		return protocol.Error("Seat is already booked")
	case domain.SeatNotFound:
		return protocol.Error("Seat does not exist")
	case domain.FlightNotFound:
		return protocol.Error("Flight does not exist")
	default:
		return protocol.Error("Could not book seat")
	}
}
