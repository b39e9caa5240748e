// Package session provides per-conversation state and a SQLite-backed
// chat history. Sessions are explicit values passed by the caller;
// there is no process-global conversation.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
)

// Record is one question/answer exchange.
type Record struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryStore persists chat exchanges.
type HistoryStore interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context, user string, limit int) ([]Record, error)
	Delete(ctx context.Context, user, question string) error
	Close() error
}

var _ HistoryStore = (*SQLiteHistory)(nil)

// SQLiteHistory stores chat history in a SQLite database.
type SQLiteHistory struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

const historySchema = `
CREATE TABLE IF NOT EXISTS chat_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	sources TEXT NOT NULL DEFAULT '',
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_history_user ON chat_history(user, timestamp);
`

// NewSQLiteHistory opens or creates a history database at path. An
// empty path uses an in-memory database.
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeHistoryFailed,
			fmt.Sprintf("cannot open history database %s", dsn), err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, seekerrors.New(seekerrors.ErrCodeHistoryFailed,
			"cannot initialize history schema", err)
	}
	return &SQLiteHistory{db: db}, nil
}

// Append records an exchange. Timestamps default to now.
func (h *SQLiteHistory) Append(ctx context.Context, rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return seekerrors.New(seekerrors.ErrCodeHistoryFailed, "history store is closed", nil)
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO chat_history (user, question, answer, sources, timestamp) VALUES (?, ?, ?, ?, ?)`,
		rec.User, rec.Question, rec.Answer, strings.Join(rec.Sources, ", "),
		ts.UTC().Format(time.RFC3339))
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeHistoryFailed, "cannot append history record", err)
	}
	return nil
}

// List returns the user's most recent exchanges, newest first. A limit
// of zero or less returns everything.
func (h *SQLiteHistory) List(ctx context.Context, user string, limit int) ([]Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, seekerrors.New(seekerrors.ErrCodeHistoryFailed, "history store is closed", nil)
	}

	q := `SELECT id, user, question, answer, sources, timestamp
		FROM chat_history WHERE user = ? ORDER BY id DESC`
	args := []any{user}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeHistoryFailed, "cannot list history", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var sources, ts string
		if err := rows.Scan(&rec.ID, &rec.User, &rec.Question, &rec.Answer, &sources, &ts); err != nil {
			return nil, seekerrors.New(seekerrors.ErrCodeHistoryFailed, "cannot scan history record", err)
		}
		if sources != "" {
			rec.Sources = strings.Split(sources, ", ")
		}
		if parsed, perr := time.Parse(time.RFC3339, ts); perr == nil {
			rec.Timestamp = parsed
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeHistoryFailed, "cannot read history rows", err)
	}
	return out, nil
}

// Delete removes the user's exchanges matching the question exactly.
func (h *SQLiteHistory) Delete(ctx context.Context, user, question string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return seekerrors.New(seekerrors.ErrCodeHistoryFailed, "history store is closed", nil)
	}

	_, err := h.db.ExecContext(ctx,
		`DELETE FROM chat_history WHERE user = ? AND question = ?`, user, question)
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeHistoryFailed, "cannot delete history records", err)
	}
	return nil
}

// Close releases the database handle. Idempotent.
func (h *SQLiteHistory) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.db.Close()
}
