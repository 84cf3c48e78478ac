package auth

import "context"

// MockProvider is a deterministic Provider for tests.
type MockProvider struct {
	SignUpID      string
	SignUpErr     error
	SignInSession *Session
	SignInErr     error
	Session       *Session
	SignOutCalls  int
}

func (m *MockProvider) SignUp(_ context.Context, email, _ string) (string, error) {
	if m.SignUpErr != nil {
		return "", m.SignUpErr
	}
	m.Session = &Session{UserID: m.SignUpID, Email: email}
	return m.SignUpID, nil
}

func (m *MockProvider) SignInWithPassword(_ context.Context, _, _ string) (*Session, error) {
	if m.SignInErr != nil {
		return nil, m.SignInErr
	}
	m.Session = m.SignInSession
	return m.SignInSession, nil
}

func (m *MockProvider) SignOut(_ context.Context) error {
	m.SignOutCalls++
	m.Session = nil
	return nil
}

func (m *MockProvider) CurrentSession(_ context.Context) (*Session, error) {
	return m.Session, nil
}
