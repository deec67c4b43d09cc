// Package handlers answers the commands of the line protocol.
package handlers

import (
	"fmt"
	"strconv"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/dispatch"
	"github.com/Domenick1991/flightbooking/internal/protocol"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/users"
	"github.com/hashicorp/go-hclog"
)

const (
	dateLayout = "02.01.2006"

	msgMissingParameters = "Missing parameters"
	msgNotAuthorized     = "Not authorized"
)

type Handlers struct {
	users   users.UserUseCase
	flights flights.FlightUseCase
	booking booking.BookingUseCase
	auth    config.AuthConfig
	log     hclog.Logger
}

func New(
	userSvc users.UserUseCase,
	flightSvc flights.FlightUseCase,
	coordinator booking.BookingUseCase,
	auth config.AuthConfig,
	log hclog.Logger,
) *Handlers {
	return &Handlers{
		users:   userSvc,
		flights: flightSvc,
		booking: coordinator,
		auth:    auth,
		log:     log,
	}
}

func (h *Handlers) Register(d *dispatch.Dispatcher) {
	d.Register("LOGIN", h.login)
	d.Register("REGISTER", h.register)
	d.Register("GET_USER", h.getUser)
	d.Register("UPDATE_USER", h.updateUser)
	d.Register("CHANGE_PASSWORD", h.changePassword)
	d.Register("GET_FLIGHTS", h.getFlights)
	d.Register("GET_SEATS", h.getSeats)
	d.Register("BOOK_SEAT", h.bookSeat)
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}

// formatPrice renders cents with two decimals, e.g. 450000 -> "4500.00".
func formatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func storeError(err error) protocol.Result {
	return protocol.Error(err.Error())
}
