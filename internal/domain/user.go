package domain

import "time"

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is optional; it is created on the first UPDATE_USER for a user.
type Profile struct {
	UserID    int64
	FirstName string
	LastName  string
	Age       int
}
