package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

// MemoryStore keeps the whole inventory in process. It backs the test suites
// and `database.in_memory` demo runs. Every method takes the single mutex,
// so Claim is as indivisible as the conditional UPDATE in PostgreSQL.
type MemoryStore struct {
	mu            sync.Mutex
	flights       map[int64]domain.Flight
	seats         map[seatKey]*domain.Seat
	users         map[string]*domain.User
	profiles      map[int64]domain.Profile
	bookings      []domain.Booking
	nextUserID    int64
	nextBookingID int64
}

type seatKey struct {
	flightID int64
	number   string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flights:  make(map[int64]domain.Flight),
		seats:    make(map[seatKey]*domain.Seat),
		users:    make(map[string]*domain.User),
		profiles: make(map[int64]domain.Profile),
	}
}

func (s *MemoryStore) AddFlight(f domain.Flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights[f.ID] = f
}

func (s *MemoryStore) AddSeat(seat domain.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat.Free = true
	s.seats[seatKey{seat.FlightID, seat.Number}] = &seat
}

// Bookings returns a copy of the recorded bookings.
func (s *MemoryStore) Bookings() []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Booking(nil), s.bookings...)
}

func (s *MemoryStore) FlightRepository() FlightRepository   { return memFlights{s} }
func (s *MemoryStore) SeatRepository() SeatRepository       { return memSeats{s} }
func (s *MemoryStore) BookingRepository() BookingRepository { return memBookings{s} }
func (s *MemoryStore) UserRepository() UserRepository       { return memUsers{s} }

type memFlights struct{ s *MemoryStore }

func (m memFlights) List(_ context.Context) ([]domain.Flight, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	flights := make([]domain.Flight, 0, len(m.s.flights))
	for _, f := range m.s.flights {
		flights = append(flights, f)
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].DepartureDate.Equal(flights[j].DepartureDate) {
			return flights[i].ID < flights[j].ID
		}
		return flights[i].DepartureDate.Before(flights[j].DepartureDate)
	})
	return flights, nil
}

func (m memFlights) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	f, ok := m.s.flights[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (m memFlights) Exists(_ context.Context, id int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.flights[id]
	return ok, nil
}

type memSeats struct{ s *MemoryStore }

func (m memSeats) Exists(_ context.Context, flightID int64, number string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.seats[seatKey{flightID, number}]
	return ok, nil
}

func (m memSeats) ListFree(_ context.Context, flightID int64) ([]domain.Seat, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seats := make([]domain.Seat, 0)
	for k, seat := range m.s.seats {
		if k.flightID == flightID && seat.Free {
			seats = append(seats, *seat)
		}
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].Number < seats[j].Number })
	return seats, nil
}

func (m memSeats) Claim(_ context.Context, flightID int64, number string) (domain.Seat, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seat, ok := m.s.seats[seatKey{flightID, number}]
	if !ok || !seat.Free {
		return domain.Seat{}, false, nil
	}
	seat.Free = false
	return *seat, true, nil
}

func (m memSeats) Release(_ context.Context, flightID int64, number string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seat, ok := m.s.seats[seatKey{flightID, number}]
	if !ok || seat.Free {
		return false, nil
	}
	seat.Free = true
	return true, nil
}

type memBookings struct{ s *MemoryStore }

func (m memBookings) Create(_ context.Context, booking *domain.Booking) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.nextBookingID++
	booking.ID = m.s.nextBookingID
	booking.CreatedAt = time.Now().UTC()
	m.s.bookings = append(m.s.bookings, *booking)
	return nil
}

type memUsers struct{ s *MemoryStore }

func (m memUsers) Create(_ context.Context, username, passwordHash string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[username]; ok {
		return nil, domain.ErrUsernameTaken
	}
	m.s.nextUserID++
	u := &domain.User{ID: m.s.nextUserID, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	m.s.users[username] = u
	copied := *u
	return &copied, nil
}

func (m memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m memUsers) UpdatePasswordHash(_ context.Context, username, passwordHash string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[username]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m memUsers) GetProfile(_ context.Context, userID int64) (*domain.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m memUsers) UpsertProfile(_ context.Context, profile domain.Profile) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if !m.s.userExists(profile.UserID) {
		return false, domain.ErrNotFound
	}
	_, existed := m.s.profiles[profile.UserID]
	m.s.profiles[profile.UserID] = profile
	return !existed, nil
}

func (s *MemoryStore) userExists(id int64) bool {
	for _, u := range s.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// SeedDemo fills the store with the same flights and seats as migrations/002_seed.sql.
func (s *MemoryStore) SeedDemo() {
	flights := []domain.Flight{
		{ID: 1, Origin: "Moscow", Destination: "Saint-Petersburg", DepartureDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Origin: "Moscow", Destination: "Kazan", DepartureDate: time.Date(2026, 12, 3, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Origin: "Sochi", Destination: "Moscow", DepartureDate: time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, f := range flights {
		s.AddFlight(f)
		for row := 1; row <= 10; row++ {
			price := int64(450000)
			if row <= 2 {
				price += 300000
			}
			for _, letter := range []string{"A", "B", "C", "D"} {
				s.AddSeat(domain.Seat{FlightID: f.ID, Number: strconv.Itoa(row) + letter, PriceCents: price})
			}
		}
	}
}
