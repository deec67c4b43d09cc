package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("not authorized")
	// ErrSeatLocked means another process holds the distributed lock for the seat.
	ErrSeatLocked = errors.New("seat is locked by another booking")
)
