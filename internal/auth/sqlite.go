package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/topiq/internal/cache"
)

// sessionKey is the KeyValue slot the device session lives under.
const sessionKey = "session"

// SQLiteProvider stores credentials in the backend database and the
// active session in the device-local KeyValue store.
type SQLiteProvider struct {
	db       *sql.DB
	sessions cache.KeyValue
}

// NewSQLiteProvider creates the credentials table if needed.
func NewSQLiteProvider(db *sql.DB, sessions cache.KeyValue) (*SQLiteProvider, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("init credentials schema: %w", err)
	}
	return &SQLiteProvider{db: db, sessions: sessions}, nil
}

func (p *SQLiteProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", &Error{Message: "email and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	userID := uuid.NewString()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, email, password_hash)
		VALUES (?, ?, ?)`,
		userID, email, string(hash),
	)
	if err != nil {
		return "", &Error{Message: "an account with this email already exists", Err: err}
	}

	if err := p.storeSession(&Session{UserID: userID, Email: email}); err != nil {
		return "", err
	}
	return userID, nil
}

func (p *SQLiteProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT user_id, password_hash FROM credentials WHERE email = ?`,
		email,
	)

	var userID, hash string
	err := row.Scan(&userID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Error{Message: "invalid email or password"}
	}
	if err != nil {
		return nil, fmt.Errorf("look up credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, &Error{Message: "invalid email or password"}
	}

	session := &Session{UserID: userID, Email: email}
	if err := p.storeSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (p *SQLiteProvider) SignOut(_ context.Context) error {
	if err := p.sessions.Delete(sessionKey); err != nil {
		return fmt.Errorf("drop session: %w", err)
	}
	return nil
}

func (p *SQLiteProvider) CurrentSession(_ context.Context) (*Session, error) {
	data, ok, err := p.sessions.Get(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt session behaves like signed-out.
		return nil, nil
	}
	return &s, nil
}

func (p *SQLiteProvider) storeSession(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := p.sessions.Set(sessionKey, data); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
