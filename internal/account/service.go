// Package account orchestrates sign-up and sign-in around the sync core.
// These are the only flows that surface classified errors to the UI
// layer; everything downstream degrades silently.
package account

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/topiq/internal/auth"
	"github.com/abhisek/topiq/internal/cache"
	"github.com/abhisek/topiq/internal/connectivity"
	"github.com/abhisek/topiq/internal/profile"
	"github.com/abhisek/topiq/internal/remote"
)

// Service wires the auth provider, the remote store and the local cache
// for account lifecycle operations.
type Service struct {
	auth   auth.Provider
	remote remote.ProfileRemote
	cache  cache.ProfileCache
	log    *zap.Logger
}

func NewService(a auth.Provider, r remote.ProfileRemote, c cache.ProfileCache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{auth: a, remote: r, cache: c, log: log}
}

// Error is a classified account failure with a user-facing message.
type Error struct {
	Outcome connectivity.Outcome
	Err     error
}

func (e *Error) Error() string {
	if e.Outcome.Message != "" {
		return e.Outcome.Message
	}
	return fmt.Sprintf("account operation failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// SignUp creates the auth identity, inserts the remote profile and
// primes the local cache. A username collision rolls back the partially
// created session so the user can retry cleanly.
func (s *Service) SignUp(ctx context.Context, email, password, username string) (*profile.Profile, error) {
	userID, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, &Error{Outcome: connectivity.Classify(err), Err: err}
	}

	p := profile.New(userID, username)
	if err := s.remote.InsertProfile(ctx, p, email); err != nil {
		out := connectivity.Classify(err)
		if out.Kind == connectivity.KindCredentialConflict {
			// The auth identity exists but the profile does not. Sign out
			// so a retry starts from a clean slate.
			if signOutErr := s.auth.SignOut(ctx); signOutErr != nil {
				s.log.Warn("roll back partial sign-up", zap.Error(signOutErr))
			}
		}
		return nil, &Error{Outcome: out, Err: err}
	}

	s.primeCache(p)
	return p, nil
}

// SignIn establishes the session and primes the local cache from the
// remote profile when it can be fetched. A profile fetch failure does
// not fail the sign-in; the engine falls back to its remote path later.
func (s *Service) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	session, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, &Error{Outcome: connectivity.Classify(err), Err: err}
	}

	p, err := s.remote.FetchProfile(ctx, session.UserID)
	if err != nil {
		out := connectivity.Classify(err)
		s.log.Warn("fetch profile at sign-in",
			zap.String("user", session.UserID),
			zap.String("kind", out.Kind.String()),
			zap.Error(err))
		return session, nil
	}

	s.primeCache(p)
	return session, nil
}

// SignOut drops the session and clears the cached snapshot so the next
// account never sees this one's progress.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.auth.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if err := s.cache.Clear(); err != nil {
		return fmt.Errorf("clear cached profile: %w", err)
	}
	return nil
}

// CurrentSession returns the active session, or nil when signed out.
func (s *Service) CurrentSession(ctx context.Context) (*auth.Session, error) {
	return s.auth.CurrentSession(ctx)
}

// primeCache replaces the cached snapshot with p, clearing first so a
// prior user's snapshot never survives the switch.
func (s *Service) primeCache(p *profile.Profile) {
	if err := s.cache.Clear(); err != nil {
		s.log.Warn("clear cache before prime", zap.Error(err))
	}
	if err := s.cache.Save(p); err != nil {
		s.log.Warn("prime cache", zap.Error(err))
	}
}
