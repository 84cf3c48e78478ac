// Package auth is the authentication collaborator for the sync core:
// sign-up, password sign-in, sign-out and the current session. The sync
// engine never calls it directly; the account service does.
package auth

import (
	"context"
	"fmt"
)

// Session identifies the signed-in user on this device.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Provider is the authentication contract.
type Provider interface {
	// SignUp creates a new identity and returns its user ID. The identity
	// is left intact on later failures so the caller can retry or roll
	// back explicitly.
	SignUp(ctx context.Context, email, password string) (string, error)

	// SignInWithPassword verifies credentials and establishes the session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignOut drops the current session. Safe to call when signed out.
	SignOut(ctx context.Context) error

	// CurrentSession returns the active session, or nil when signed out.
	CurrentSession(ctx context.Context) (*Session, error)
}

// Error is an authentication failure whose Message is the user-facing
// reason (wrong password, unknown email, and so on).
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Err)
	}
	return "auth: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }
