package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) Exists(ctx context.Context, flightID int64, number string) (bool, error) {
	args := m.Called(ctx, flightID, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatRepository) ListFree(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepository) Claim(ctx context.Context, flightID int64, number string) (domain.Seat, bool, error) {
	args := m.Called(ctx, flightID, number)
	return args.Get(0).(domain.Seat), args.Bool(1), args.Error(2)
}

func (m *MockSeatRepository) Release(ctx context.Context, flightID int64, number string) (bool, error) {
	args := m.Called(ctx, flightID, number)
	return args.Bool(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func testFlights() []domain.Flight {
	return []domain.Flight{
		{ID: 4, Origin: "SVO", Destination: "LED", DepartureDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, &MockSeatRepository{}, mockCache, hclog.NewNullLogger())

	ctx := context.Background()
	flights := testFlights()

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), nil).Once()
	mockRepo.On("List", ctx).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, flights).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, &MockSeatRepository{}, mockCache, hclog.NewNullLogger())

	ctx := context.Background()
	flights := testFlights()

	mockCache.On("GetFlights", ctx).Return(flights, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestFlightService_List_CacheErrorFallsBackToStore(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, &MockSeatRepository{}, mockCache, hclog.NewNullLogger())

	ctx := context.Background()
	flights := testFlights()

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), errors.New("redis down")).Once()
	mockRepo.On("List", ctx).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, flights).Return(errors.New("redis down")).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_List_NoCache(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, &MockSeatRepository{}, nil, hclog.NewNullLogger())

	ctx := context.Background()
	mockRepo.On("List", ctx).Return(testFlights(), nil).Once()

	result, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestFlightService_List_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, &MockSeatRepository{}, nil, hclog.NewNullLogger())

	ctx := context.Background()
	expectedErr := errors.New("database error")
	mockRepo.On("List", ctx).Return(([]domain.Flight)(nil), expectedErr).Once()

	result, err := service.List(ctx)
	assert.Equal(t, expectedErr, err)
	assert.Nil(t, result)
}

func TestFlightService_GetByID(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, &MockSeatRepository{}, nil, hclog.NewNullLogger())

	ctx := context.Background()
	flight := &testFlights()[0]
	mockRepo.On("GetByID", ctx, int64(4)).Return(flight, nil).Once()
	mockRepo.On("GetByID", ctx, int64(5)).Return(nil, domain.ErrNotFound).Once()

	got, err := service.GetByID(ctx, 4)
	assert.NoError(t, err)
	assert.Equal(t, flight, got)

	_, err = service.GetByID(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFlightService_FreeSeats(t *testing.T) {
	mockSeats := &MockSeatRepository{}
	service := NewFlightService(&MockFlightRepository{}, mockSeats, nil, hclog.NewNullLogger())

	ctx := context.Background()
	seats := []domain.Seat{{FlightID: 4, Number: "1A", PriceCents: 100, Free: true}}
	mockSeats.On("ListFree", ctx, int64(4)).Return(seats, nil).Once()

	got, err := service.FreeSeats(ctx, 4)
	assert.NoError(t, err)
	assert.Equal(t, seats, got)
	mockSeats.AssertExpectations(t)
}
