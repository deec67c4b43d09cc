package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/protocol"
	"github.com/Domenick1991/flightbooking/internal/session"
)

func (h *Handlers) login(ctx context.Context, sess *session.Session, args []string) protocol.Result {
	if len(args) < 2 {
		return protocol.Error(msgMissingParameters)
	}

	u, err := h.users.Login(ctx, args[0], args[1])
	if err != nil {
		sess.Logout()
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return protocol.Error("Invalid credentials")
		}
		h.log.Error("login", "session", sess.ID, "error", err)
		return storeError(err)
	}

	sess.Login(u.ID)
	h.log.Debug("logged in", "session", sess.ID, "user", u.ID)
	return protocol.Success(fmt.Sprintf("SUCCESS=%d", u.ID))
}

func (h *Handlers) register(ctx context.Context, sess *session.Session, args []string) protocol.Result {
	if len(args) < 2 {
		return protocol.Error(msgMissingParameters)
	}

	if _, err := h.users.Register(ctx, args[0], args[1]); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return protocol.Error("Username already exists")
		}
		h.log.Error("register", "session", sess.ID, "error", err)
		return storeError(err)
	}
	return protocol.Success("SUCCESS: User registered")
}

func (h *Handlers) getUser(ctx context.Context, sess *session.Session, args []string) protocol.Result {
	if len(args) < 1 {
		return protocol.Error(msgMissingParameters)
	}
	userID, ok := parseID(args[0])
	if !ok {
		return protocol.Error("Invalid user ID")
	}
	if err := h.authorize(sess, userID); err != nil {
		return protocol.Error(msgNotAuthorized)
	}

	p, err := h.users.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return protocol.Error("User not found")
		}
		h.log.Error("get user", "session", sess.ID, "user", userID, "error", err)
		return storeError(err)
	}
	return protocol.Success(fmt.Sprintf("USER=%s,%s,%d", p.FirstName, p.LastName, p.Age))
}

func (h *Handlers) updateUser(ctx context.Context, sess *session.Session, args []string) protocol.Result {
	if len(args) < 4 {
		return protocol.Error(msgMissingParameters)
	}
	userID, ok := parseID(args[0])
	if !ok {
		return protocol.Error("Invalid user ID")
	}
	// Ages are stored as INTEGER.
	age, err := strconv.ParseInt(args[3], 10, 32)
	if err != nil || age < 0 {
		return protocol.Error("Invalid age")
	}
	if err := h.authorize(sess, userID); err != nil {
		return protocol.Error(msgNotAuthorized)
	}

	created, err := h.users.SaveProfile(ctx, domain.Profile{
		UserID:    userID,
		FirstName: args[1],
		LastName:  args[2],
		Age:       int(age),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return protocol.Error("User not found")
		}
		h.log.Error("update user", "session", sess.ID, "user", userID, "error", err)
		return storeError(err)
	}
	if created {
		return protocol.Success("SUCCESS: User info added")
	}
	return protocol.Success("SUCCESS: User info updated")
}

func (h *Handlers) changePassword(ctx context.Context, sess *session.Session, args []string) protocol.Result {
	if len(args) < 2 {
		return protocol.Error(msgMissingParameters)
	}
	username := args[0]

	if h.auth.BindToSession {
		u, err := h.users.Lookup(ctx, username)
		if errors.Is(err, domain.ErrNotFound) {
			return protocol.Error("User not found")
		}
		if err != nil {
			h.log.Error("change password lookup", "session", sess.ID, "error", err)
			return protocol.Error("Could not update password")
		}
		if err := h.authorize(sess, u.ID); err != nil {
			return protocol.Error(msgNotAuthorized)
		}
	}

	if err := h.users.ChangePassword(ctx, username, args[1]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return protocol.Error("User not found")
		}
		h.log.Error("change password", "session", sess.ID, "error", err)
		return protocol.Error("Could not update password")
	}
	return protocol.Success("SUCCESS: Password updated")
}

// authorize rejects access to another user's account when accounts are bound
// to the logged in session.
func (h *Handlers) authorize(sess *session.Session, userID int64) error {
	if !h.auth.BindToSession || sess.IsUser(userID) {
		return nil
	}
	h.log.Debug("access denied", "session", sess.ID, "user", userID)
	return fmt.Errorf("user %d: %w", userID, domain.ErrUnauthorized)
}
