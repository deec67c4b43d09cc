package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/events"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/hashicorp/go-hclog"
)

type BookingUseCase interface {
	TryClaim(ctx context.Context, input ClaimInput) (domain.ClaimOutcome, error)
}

// SeatLocker is a lock shared between server processes. Acquire returns a
// token identifying this holder; Release only frees the lock it still owns.
type SeatLocker interface {
	AcquireSeatLock(ctx context.Context, flightID int64, seatNumber string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseSeatLock(ctx context.Context, flightID int64, seatNumber, token string) error
}

const (
	lockRetryMin = 5 * time.Millisecond
	lockRetryMax = 100 * time.Millisecond
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ClaimInput struct {
	FlightID   int64
	SeatNumber string
	// UserID is the logged in user of the requesting session, if any.
	UserID *int64
}

// Coordinator is the only writer of seat availability.
type Coordinator struct {
	flights    repository.FlightRepository
	seats      repository.SeatRepository
	bookings   repository.BookingRepository
	locker     SeatLocker
	lockTTL    time.Duration
	producer   Producer
	eventTopic string
	keys       *keyedMutex
	log        hclog.Logger
	now        func() time.Time
}

type CoordinatorOption func(*Coordinator)

// WithSeatLocker adds a cross-process lock around the claim. Contenders wait
// up to ttl for it before giving up with ErrSeatLocked.
func WithSeatLocker(locker SeatLocker, ttl time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.locker = locker
		c.lockTTL = ttl
	}
}

// WithProducer publishes a seat_booked event to topic after every successful claim.
func WithProducer(producer Producer, topic string) CoordinatorOption {
	return func(c *Coordinator) {
		c.producer = producer
		c.eventTopic = topic
	}
}

func NewCoordinator(
	flights repository.FlightRepository,
	seats repository.SeatRepository,
	bookings repository.BookingRepository,
	log hclog.Logger,
	opts ...CoordinatorOption,
) *Coordinator {
	c := &Coordinator{
		flights:  flights,
		seats:    seats,
		bookings: bookings,
		keys:     newKeyedMutex(),
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TryClaim books one seat. Existence is checked flight first, then seat, so a
// missing flight is never reported as a missing or taken seat. The claim
// itself is a single conditional update in the store, run under a lock keyed
// by (flight, seat).
func (c *Coordinator) TryClaim(ctx context.Context, input ClaimInput) (domain.ClaimOutcome, error) {
	if input.SeatNumber == "" {
		return domain.ClaimFailed, errors.New("seat number is required")
	}

	ok, err := c.flights.Exists(ctx, input.FlightID)
	if err != nil {
		return domain.ClaimFailed, err
	}
	if !ok {
		return domain.FlightNotFound, nil
	}

	ok, err = c.seats.Exists(ctx, input.FlightID, input.SeatNumber)
	if err != nil {
		return domain.ClaimFailed, err
	}
	if !ok {
		return domain.SeatNotFound, nil
	}

	booking, outcome, err := c.claim(ctx, input)
	if err != nil || outcome != domain.Claimed {
		return outcome, err
	}

	c.log.Info("seat claimed", "flight", input.FlightID, "seat", input.SeatNumber, "booking", booking.ID)
	if err := c.publish(ctx, booking); err != nil {
		c.log.Warn("publish seat_booked event", "booking", booking.ID, "error", err)
	}
	return domain.Claimed, nil
}

// claim runs the conditional update and records the booking. Both seat locks
// are held only for the duration of claim.
func (c *Coordinator) claim(ctx context.Context, input ClaimInput) (*domain.Booking, domain.ClaimOutcome, error) {
	unlock := c.keys.Lock(seatKey{input.FlightID, input.SeatNumber})
	defer unlock()

	if c.locker != nil {
		token, err := c.acquireSeatLock(ctx, input)
		if err != nil {
			return nil, domain.ClaimFailed, err
		}
		defer func() {
			if err := c.locker.ReleaseSeatLock(context.WithoutCancel(ctx), input.FlightID, input.SeatNumber, token); err != nil {
				c.log.Warn("release seat lock", "flight", input.FlightID, "seat", input.SeatNumber, "error", err)
			}
		}()
	}

	seat, claimed, err := c.seats.Claim(ctx, input.FlightID, input.SeatNumber)
	if err != nil {
		return nil, domain.ClaimFailed, err
	}
	if !claimed {
		return nil, domain.AlreadyBooked, nil
	}

	booking := &domain.Booking{
		FlightID:   input.FlightID,
		SeatNumber: input.SeatNumber,
		UserID:     input.UserID,
		PriceCents: seat.PriceCents,
	}
	if err := c.bookings.Create(ctx, booking); err != nil {
		c.compensate(ctx, input)
		return nil, domain.ClaimFailed, fmt.Errorf("record booking: %w", err)
	}
	return booking, domain.Claimed, nil
}

// acquireSeatLock waits for the cross-process lock, polling with backoff for
// at most one lock TTL. A holder that crashed releases the key by expiry
// within that window, so waiting longer cannot help.
func (c *Coordinator) acquireSeatLock(ctx context.Context, input ClaimInput) (string, error) {
	deadline := time.Now().Add(c.lockTTL)
	wait := lockRetryMin
	for {
		token, ok, err := c.locker.AcquireSeatLock(ctx, input.FlightID, input.SeatNumber, c.lockTTL)
		if err != nil {
			return "", fmt.Errorf("acquire seat lock: %w", err)
		}
		if ok {
			return token, nil
		}
		if !time.Now().Add(wait).Before(deadline) {
			return "", domain.ErrSeatLocked
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		wait = min(2*wait, lockRetryMax)
	}
}

// compensate undoes a claim whose booking could not be recorded. It runs
// while the seat key is still held.
func (c *Coordinator) compensate(ctx context.Context, input ClaimInput) {
	released, err := c.seats.Release(context.WithoutCancel(ctx), input.FlightID, input.SeatNumber)
	if err != nil || !released {
		c.log.Error("seat left claimed without booking", "flight", input.FlightID, "seat", input.SeatNumber, "released", released, "error", err)
	}
}

func (c *Coordinator) publish(ctx context.Context, booking *domain.Booking) error {
	if c.producer == nil || c.eventTopic == "" {
		return nil
	}
	event := events.BookingEvent{
		Type:       events.TypeSeatBooked,
		BookingID:  booking.ID,
		FlightID:   booking.FlightID,
		SeatNumber: booking.SeatNumber,
		UserID:     booking.UserID,
		PriceCents: booking.PriceCents,
		OccurredAt: c.now().UTC(),
	}
	return c.producer.Publish(ctx, c.eventTopic, event.Key(), event)
}

var _ BookingUseCase = (*Coordinator)(nil)
