package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"github.com/abhisek/topiq/internal/profile"
)

// SQLiteRemote implements ProfileRemote over a SQLite database.
type SQLiteRemote struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn, applies recommended
// pragmas and creates the schema if needed.
func Open(dsn string) (*SQLiteRemote, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteRemote{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (r *SQLiteRemote) DB() *sql.DB {
	return r.db
}

// Close closes the database connection.
func (r *SQLiteRemote) Close() error {
	return r.db.Close()
}

func (r *SQLiteRemote) FetchProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, knowledge
		FROM profiles
		WHERE id = ?`,
		userID,
	)

	var p profile.Profile
	var knowledge string
	err := row.Scan(&p.ID, &p.Username, &knowledge)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(knowledge), &p.KnowledgeByTopic); err != nil {
		return nil, fmt.Errorf("decode knowledge for %s: %w", userID, err)
	}
	if p.KnowledgeByTopic == nil {
		p.KnowledgeByTopic = make(map[string]profile.TopicKnowledge)
	}
	return &p, nil
}

func (r *SQLiteRemote) InsertProfile(ctx context.Context, p *profile.Profile, email string) error {
	knowledge, err := json.Marshal(p.KnowledgeByTopic)
	if err != nil {
		return fmt.Errorf("encode knowledge: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, email, knowledge)
		VALUES (?, ?, ?, ?)`,
		p.ID, p.Username, email, string(knowledge),
	)
	if err != nil {
		return fmt.Errorf("insert profile %s: %w", p.Username, err)
	}
	return nil
}

func (r *SQLiteRemote) UpdateKnowledge(ctx context.Context, userID string, knowledge map[string]profile.TopicKnowledge) error {
	data, err := json.Marshal(knowledge)
	if err != nil {
		return fmt.Errorf("encode knowledge: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET knowledge = ? WHERE id = ?`,
		string(data), userID,
	)
	if err != nil {
		return fmt.Errorf("update knowledge for %s: %w", userID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update knowledge for %s: %w", userID, err)
	}
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *SQLiteRemote) AppendHistory(ctx context.Context, records []profile.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history append: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		options, err := json.Marshal(rec.Options)
		if err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
		// Duplicate (user_id, question_text) pairs are skipped, not errors.
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO quiz_history
			(user_id, topic, question_text, options, correct_option)
			VALUES (?, ?, ?, ?, ?)`,
			rec.UserID,
			profile.NormalizeTopic(rec.Topic),
			rec.QuestionText,
			string(options),
			rec.CorrectOption,
		)
		if err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history append: %w", err)
	}
	return nil
}

func (r *SQLiteRemote) FetchHistory(ctx context.Context, userID, topic string) ([]profile.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, topic, question_text, options, correct_option
		FROM quiz_history
		WHERE user_id = ? AND topic = ?
		ORDER BY rowid`,
		userID,
		profile.NormalizeTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer rows.Close()

	var result []profile.HistoryRecord
	for rows.Next() {
		var rec profile.HistoryRecord
		var options string
		if err := rows.Scan(&rec.UserID, &rec.Topic, &rec.QuestionText, &options, &rec.CorrectOption); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &rec.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return result, nil
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			knowledge TEXT NOT NULL DEFAULT '{}'
		);
		CREATE TABLE IF NOT EXISTS quiz_history (
			user_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			question_text TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_option INTEGER NOT NULL,
			UNIQUE (user_id, question_text)
		);
		CREATE INDEX IF NOT EXISTS idx_history_user_topic ON quiz_history(user_id, topic);
	`)
	return err
}

// DefaultDBPath resolves the database file path in priority order:
// 1. TOPIQ_DB environment variable
// 2. $XDG_DATA_HOME/topiq/topiq.db
// 3. ~/.local/share/topiq/topiq.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TOPIQ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "topiq", "topiq.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
