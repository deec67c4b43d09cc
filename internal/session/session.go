// Package session holds the state tied to one client connection.
package session

import (
	"github.com/google/uuid"
)

// Session lives exactly as long as its connection and is only touched by
// that connection's goroutine.
type Session struct {
	ID         string
	RemoteAddr string

	userID   int64
	loggedIn bool
}

func New(remoteAddr string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
	}
}

// Login binds the session to an authenticated user.
func (s *Session) Login(userID int64) {
	s.userID = userID
	s.loggedIn = true
}

func (s *Session) Logout() {
	s.userID = 0
	s.loggedIn = false
}

// UserID returns the authenticated user, if any.
func (s *Session) UserID() (int64, bool) {
	return s.userID, s.loggedIn
}

// IsUser reports whether the session is logged in as id.
func (s *Session) IsUser(id int64) bool {
	return s.loggedIn && s.userID == id
}
