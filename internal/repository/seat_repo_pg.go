package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeatRepository is the seat inventory. Claim and Release are single
// conditional statements; callers never read is_free before writing it.
type SeatRepository interface {
	Exists(ctx context.Context, flightID int64, number string) (bool, error)
	ListFree(ctx context.Context, flightID int64) ([]domain.Seat, error)
	// Claim flips the seat from free to taken. claimed is false when the seat was not free.
	Claim(ctx context.Context, flightID int64, number string) (seat domain.Seat, claimed bool, err error)
	// Release flips a taken seat back to free. It is only used to undo a claim.
	Release(ctx context.Context, flightID int64, number string) (bool, error)
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

func (r *PGSeatRepository) Exists(ctx context.Context, flightID int64, number string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seats WHERE flight_id=$1 AND number=$2)`, flightID, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("check seat: %w", err)
	}
	return exists, nil
}

func (r *PGSeatRepository) ListFree(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT flight_id, number, price_cents, is_free FROM seats WHERE flight_id=$1 AND is_free ORDER BY number`, flightID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.FlightID, &s.Number, &s.PriceCents, &s.Free); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r *PGSeatRepository) Claim(ctx context.Context, flightID int64, number string) (domain.Seat, bool, error) {
	row := r.db.QueryRow(ctx, `UPDATE seats SET is_free = false, updated_at = now()
		WHERE flight_id=$1 AND number=$2 AND is_free
		RETURNING flight_id, number, price_cents, is_free`, flightID, number)
	var s domain.Seat
	if err := row.Scan(&s.FlightID, &s.Number, &s.PriceCents, &s.Free); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Seat{}, false, nil
		}
		return domain.Seat{}, false, fmt.Errorf("claim seat: %w", err)
	}
	return s, true, nil
}

func (r *PGSeatRepository) Release(ctx context.Context, flightID int64, number string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE seats SET is_free = true, updated_at = now() WHERE flight_id=$1 AND number=$2 AND NOT is_free`, flightID, number)
	if err != nil {
		return false, fmt.Errorf("release seat: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

var _ SeatRepository = (*PGSeatRepository)(nil)
