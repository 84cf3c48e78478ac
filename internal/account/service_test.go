package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/topiq/internal/auth"
	"github.com/abhisek/topiq/internal/connectivity"
	"github.com/abhisek/topiq/internal/profile"
	"github.com/abhisek/topiq/internal/remote"
)

type stubCache struct {
	profile *profile.Profile
	clears  int
}

func (s *stubCache) Load() (*profile.Profile, error) { return s.profile, nil }
func (s *stubCache) Save(p *profile.Profile) error   { s.profile = p; return nil }
func (s *stubCache) Clear() error                    { s.profile = nil; s.clears++; return nil }

type stubRemote struct {
	profiles  map[string]*profile.Profile
	insertErr error
	fetchErr  error
}

func newStubRemote() *stubRemote {
	return &stubRemote{profiles: make(map[string]*profile.Profile)}
}

func (s *stubRemote) FetchProfile(_ context.Context, userID string) (*profile.Profile, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, remote.ErrProfileNotFound
	}
	return p, nil
}

func (s *stubRemote) InsertProfile(_ context.Context, p *profile.Profile, _ string) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *stubRemote) UpdateKnowledge(context.Context, string, map[string]profile.TopicKnowledge) error {
	return nil
}

func (s *stubRemote) AppendHistory(context.Context, []profile.HistoryRecord) error {
	return nil
}

func (s *stubRemote) FetchHistory(context.Context, string, string) ([]profile.HistoryRecord, error) {
	return nil, nil
}

func TestSignUpPrimesCache(t *testing.T) {
	a := &auth.MockProvider{SignUpID: "u1"}
	r := newStubRemote()
	c := &stubCache{}
	svc := NewService(a, r, c, zap.NewNop())

	p, err := svc.SignUp(context.Background(), "alice@example.com", "pw", "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "alice", p.Username)

	require.NotNil(t, c.profile)
	assert.Equal(t, "u1", c.profile.ID)
	assert.NotNil(t, r.profiles["u1"])
}

func TestSignUpUsernameConflictRollsBack(t *testing.T) {
	a := &auth.MockProvider{SignUpID: "u1"}
	r := newStubRemote()
	r.insertErr = errors.New("constraint failed: UNIQUE constraint failed: profiles.username")
	c := &stubCache{}
	svc := NewService(a, r, c, zap.NewNop())

	_, err := svc.SignUp(context.Background(), "alice@example.com", "pw", "alice")
	require.Error(t, err)

	var accErr *Error
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, connectivity.KindCredentialConflict, accErr.Outcome.Kind)

	// The partial session was rolled back, the cache never primed.
	assert.Equal(t, 1, a.SignOutCalls)
	assert.Nil(t, c.profile)
}

func TestSignUpAuthRejected(t *testing.T) {
	a := &auth.MockProvider{SignUpErr: &auth.Error{Message: "an account with this email already exists"}}
	svc := NewService(a, newStubRemote(), &stubCache{}, zap.NewNop())

	_, err := svc.SignUp(context.Background(), "alice@example.com", "pw", "alice")
	var accErr *Error
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, connectivity.KindAuthRejected, accErr.Outcome.Kind)
	assert.Equal(t, "an account with this email already exists", accErr.Error())
}

func TestSignInPrimesCacheFromRemote(t *testing.T) {
	a := &auth.MockProvider{SignInSession: &auth.Session{UserID: "u1", Email: "alice@example.com"}}
	r := newStubRemote()
	p := profile.New("u1", "alice")
	p.SetKnowledge("math", profile.TopicKnowledge{TotalQuestions: 5, CorrectAnswers: 3, QuizzesTaken: 1})
	r.profiles["u1"] = p

	// A stale snapshot from another account is on the device.
	c := &stubCache{profile: profile.New("old-user", "bob")}
	svc := NewService(a, r, c, zap.NewNop())

	session, err := svc.SignIn(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)

	require.NotNil(t, c.profile)
	assert.Equal(t, "u1", c.profile.ID)
	assert.GreaterOrEqual(t, c.clears, 1)
}

func TestSignInRejected(t *testing.T) {
	a := &auth.MockProvider{SignInErr: &auth.Error{Message: "invalid email or password"}}
	svc := NewService(a, newStubRemote(), &stubCache{}, zap.NewNop())

	_, err := svc.SignIn(context.Background(), "alice@example.com", "wrong")
	var accErr *Error
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, connectivity.KindAuthRejected, accErr.Outcome.Kind)
	assert.Equal(t, "invalid email or password", accErr.Error())
}

func TestSignInSucceedsWhenProfileFetchOffline(t *testing.T) {
	a := &auth.MockProvider{SignInSession: &auth.Session{UserID: "u1"}}
	r := newStubRemote()
	r.fetchErr = errors.New("no such host")
	c := &stubCache{}
	svc := NewService(a, r, c, zap.NewNop())

	session, err := svc.SignIn(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	// Cache stays as it was; the engine reconciles later.
	assert.Nil(t, c.profile)
}

func TestSignOutClearsCache(t *testing.T) {
	a := &auth.MockProvider{Session: &auth.Session{UserID: "u1"}}
	c := &stubCache{profile: profile.New("u1", "alice")}
	svc := NewService(a, newStubRemote(), c, zap.NewNop())

	require.NoError(t, svc.SignOut(context.Background()))
	assert.Nil(t, c.profile)

	s, err := svc.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}
