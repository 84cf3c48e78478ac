// Package remote is the typed client for the authoritative backend: one
// table of user profiles and one append-only, deduplicated table of quiz
// history. Errors pass through raw; the connectivity package classifies
// them for callers.
package remote

import (
	"context"
	"errors"

	"github.com/abhisek/topiq/internal/profile"
)

// ErrProfileNotFound indicates no profile row exists for the user.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRemote is the remote half of the dual-store model.
type ProfileRemote interface {
	// FetchProfile returns the authoritative profile for userID, or
	// ErrProfileNotFound if no row exists.
	FetchProfile(ctx context.Context, userID string) (*profile.Profile, error)

	// InsertProfile creates the profile row at sign-up. A username
	// collision surfaces as a uniqueness-constraint error; any partially
	// created auth identity is left intact for the caller to roll back.
	InsertProfile(ctx context.Context, p *profile.Profile, email string) error

	// UpdateKnowledge replaces the user's entire knowledge map with the
	// provided one. The store trusts the caller's merge; there is no
	// server-side merge.
	UpdateKnowledge(ctx context.Context, userID string, knowledge map[string]profile.TopicKnowledge) error

	// AppendHistory upserts records. Records whose (userID, questionText)
	// pair already exists are silently skipped.
	AppendHistory(ctx context.Context, records []profile.HistoryRecord) error

	// FetchHistory returns the user's history records for the normalized
	// topic, oldest first.
	FetchHistory(ctx context.Context, userID, topic string) ([]profile.HistoryRecord, error)
}
