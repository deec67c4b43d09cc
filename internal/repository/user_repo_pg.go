package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	// UpsertProfile reports created=true when the profile row did not exist before.
	UpsertProfile(ctx context.Context, profile domain.Profile) (created bool, err error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u := domain.User{Username: username, PasswordHash: passwordHash}
	err := r.db.QueryRow(ctx, `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`, username, passwordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (r *PGUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *PGUserRepository) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$1 WHERE username=$2`, passwordHash, username)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGUserRepository) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	p := domain.Profile{UserID: userID}
	err := r.db.QueryRow(ctx, `SELECT first_name, last_name, age FROM user_profiles WHERE user_id=$1`, userID).
		Scan(&p.FirstName, &p.LastName, &p.Age)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *PGUserRepository) UpsertProfile(ctx context.Context, profile domain.Profile) (bool, error) {
	var created bool
	err := r.db.QueryRow(ctx, `INSERT INTO user_profiles (user_id, first_name, last_name, age)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name, age=EXCLUDED.age
		RETURNING (xmax = 0)`, profile.UserID, profile.FirstName, profile.LastName, profile.Age).Scan(&created)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("upsert profile: %w", err)
	}
	return created, nil
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

var _ UserRepository = (*PGUserRepository)(nil)
