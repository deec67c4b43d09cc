package flights

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/hashicorp/go-hclog"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	FreeSeats(ctx context.Context, flightID int64) ([]domain.Seat, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

type FlightService struct {
	repo  repository.FlightRepository
	seats repository.SeatRepository
	cache FlightCache
	log   hclog.Logger
}

// NewFlightService accepts a nil cache; flights are then always read from the store.
func NewFlightService(repo repository.FlightRepository, seats repository.SeatRepository, cache FlightCache, log hclog.Logger) *FlightService {
	return &FlightService{repo: repo, seats: seats, cache: cache, log: log}
}

// List serves flights from the cache when possible. Cache failures fall back to the store.
func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.Warn("read flights cache", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("write flights cache", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// FreeSeats is never cached: availability changes with every booking.
func (s *FlightService) FreeSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	return s.seats.ListFree(ctx, flightID)
}

var _ FlightUseCase = (*FlightService)(nil)
