package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type UserUseCase interface {
	Login(ctx context.Context, username, password string) (*domain.User, error)
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Lookup(ctx context.Context, username string) (*domain.User, error)
	Profile(ctx context.Context, userID int64) (*domain.Profile, error)
	SaveProfile(ctx context.Context, profile domain.Profile) (created bool, err error)
	ChangePassword(ctx context.Context, username, newPassword string) error
}

type UserService struct {
	repo   repository.UserRepository
	hasher auth.Hasher
}

func NewUserService(repo repository.UserRepository, hasher auth.Hasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Login returns ErrInvalidCredentials both for unknown users and wrong passwords.
func (s *UserService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, username, hash)
}

func (s *UserService) Lookup(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *UserService) SaveProfile(ctx context.Context, profile domain.Profile) (bool, error) {
	if profile.Age < 0 {
		return false, errors.New("age must not be negative")
	}
	return s.repo.UpsertProfile(ctx, profile)
}

func (s *UserService) ChangePassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return errors.New("password is required")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, username, hash)
}

var _ UserUseCase = (*UserService)(nil)
