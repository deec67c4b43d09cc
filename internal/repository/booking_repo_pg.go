package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (flight_id, seat_number, user_id, price_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, booking.FlightID, booking.SeatNumber, booking.UserID, booking.PriceCents).
		Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
