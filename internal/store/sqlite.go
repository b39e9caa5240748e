package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/query"
)

// SQLiteStore implements DocumentStore on SQLite with an FTS5 index.
// WAL mode enables concurrent multi-process access. It serves both
// query modes: MATCH queries run against FTS5 with native bm25()
// scores, LIKE queries run against the base table.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Verify interface implementation at compile time
var _ DocumentStore = (*SQLiteStore)(nil)

// validateIntegrity checks the database before opening.
// Returns nil if valid or absent, an error describing corruption if not.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Database doesn't exist, will be created
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	return nil
}

// NewSQLiteStore opens or creates a document store at path.
// An empty path creates an in-memory store for testing.
func NewSQLiteStore(path string, cacheMB int) (*SQLiteStore, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, seekerrors.StoreUnavailable(
				fmt.Errorf("failed to create directory %s: %w", dir, err))
		}

		if validErr := validateIntegrity(path); validErr != nil {
			slog.Warn("document_store_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))
			return nil, seekerrors.StoreUnavailable(validErr)
		}

		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("failed to open database: %w", err))
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if cacheMB <= 0 {
		cacheMB = 64
	}
	// WAL mode must be set via PRAGMA for modernc.org/sqlite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA cache_size = -%d", cacheMB*1024),
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, seekerrors.StoreUnavailable(fmt.Errorf("failed to set pragma: %w", err))
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("failed to initialize schema: %w", err))
	}

	return s, nil
}

// initSchema creates the base table and the FTS5 virtual table.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS documents (
		filename TEXT PRIMARY KEY,
		content  TEXT NOT NULL,
		date     TEXT NOT NULL DEFAULT ''
	);

	-- FTS5 virtual table for full-text search with BM25 scoring.
	-- filename is UNINDEXED (stored but not searchable).
	CREATE VIRTUAL TABLE IF NOT EXISTS fts_content USING fts5(
		filename UNINDEXED,
		content,
		tokenize='unicode61'
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// FetchCandidates returns documents matching the query. MATCH mode
// attaches native scores (FTS5 bm25(), negated so higher is better);
// LIKE mode returns unscored candidates.
func (s *SQLiteStore) FetchCandidates(ctx context.Context, q *query.BackendQuery) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	switch q.Mode {
	case query.ModeMatch:
		return s.fetchMatch(ctx, q)
	case query.ModeLike:
		return s.fetchLike(ctx, q)
	default:
		return nil, seekerrors.InternalError(fmt.Sprintf("unknown query mode %d", q.Mode), nil)
	}
}

func (s *SQLiteStore) fetchMatch(ctx context.Context, q *query.BackendQuery) ([]*Document, error) {
	if strings.TrimSpace(q.MatchExpr) == "" {
		return []*Document{}, nil
	}

	sqlText := `
		SELECT d.filename, d.content, d.date, bm25(fts_content) AS score
		FROM fts_content f
		JOIN documents d ON d.filename = f.filename
		WHERE f.content MATCH ?`
	args := []any{q.MatchExpr}

	if q.Range != nil {
		sqlText += ` AND d.filename GLOB '[0-9]*' AND CAST(d.filename AS INTEGER) BETWEEN ? AND ?`
		args = append(args, q.Range.Min, q.Range.Max)
	}
	// FTS5 bm25() returns negative values where lower = better match
	sqlText += ` ORDER BY score`

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		// FTS5 errors on invalid match expressions; treat as no results
		if strings.Contains(err.Error(), "fts5:") || strings.Contains(err.Error(), "syntax error") {
			return []*Document{}, nil
		}
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("search failed: %w", err))
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var doc Document
		var score float64
		if err := rows.Scan(&doc.Filename, &doc.Content, &doc.Date, &score); err != nil {
			return nil, seekerrors.StoreUnavailable(fmt.Errorf("failed to scan result: %w", err))
		}
		// Negate: higher positive = better match
		doc.NativeScore = -score
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, seekerrors.StoreUnavailable(err)
	}
	return docs, nil
}

func (s *SQLiteStore) fetchLike(ctx context.Context, q *query.BackendQuery) ([]*Document, error) {
	if strings.TrimSpace(q.Where) == "" {
		return []*Document{}, nil
	}

	sqlText := fmt.Sprintf(
		`SELECT filename, content, date FROM documents WHERE %s ORDER BY filename`, q.Where)

	rows, err := s.db.QueryContext(ctx, sqlText, q.Params...)
	if err != nil {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("search failed: %w", err))
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.Filename, &doc.Content, &doc.Date); err != nil {
			return nil, seekerrors.StoreUnavailable(fmt.Errorf("failed to scan result: %w", err))
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, seekerrors.StoreUnavailable(err)
	}
	return docs, nil
}

// Exists reports whether a document with the filename is stored.
func (s *SQLiteStore) Exists(ctx context.Context, filename string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE filename = ?`, filename).Scan(&count)
	if err != nil {
		return false, seekerrors.StoreUnavailable(err)
	}
	return count > 0, nil
}

// Get returns the document stored under filename.
func (s *SQLiteStore) Get(ctx context.Context, filename string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	doc := &Document{Filename: filename}
	err := s.db.QueryRowContext(ctx,
		`SELECT content, date FROM documents WHERE filename = ?`, filename).
		Scan(&doc.Content, &doc.Date)
	if err == sql.ErrNoRows {
		return nil, seekerrors.New(seekerrors.ErrCodeFileNotFound,
			fmt.Sprintf("document %s not found", filename), nil)
	}
	if err != nil {
		return nil, seekerrors.StoreUnavailable(err)
	}
	return doc, nil
}

// Put stores a document unless its filename already exists.
func (s *SQLiteStore) Put(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents(filename, content, date) VALUES (?, ?, ?)`,
		doc.Filename, doc.Content, doc.Date)
	if err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to insert document %s: %w", doc.Filename, err))
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return seekerrors.StoreUnavailable(err)
	}
	if inserted == 0 {
		// Duplicate filename: skip, never overwrite
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fts_content(filename, content) VALUES (?, ?)`,
		doc.Filename, doc.Content); err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to index document %s: %w", doc.Filename, err))
	}

	return tx.Commit()
}

// Replace overwrites an existing document, or inserts it if absent.
func (s *SQLiteStore) Replace(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents(filename, content, date) VALUES (?, ?, ?)`,
		doc.Filename, doc.Content, doc.Date); err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to replace document %s: %w", doc.Filename, err))
	}

	// FTS5 virtual tables don't support REPLACE, so delete first
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM fts_content WHERE filename = ?`, doc.Filename); err != nil {
		return seekerrors.StoreUnavailable(err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fts_content(filename, content) VALUES (?, ?)`,
		doc.Filename, doc.Content); err != nil {
		return seekerrors.StoreUnavailable(err)
	}

	return tx.Commit()
}

// Remove deletes documents by filename.
func (s *SQLiteStore) Remove(ctx context.Context, filenames []string) error {
	if len(filenames) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := make([]string, len(filenames))
	args := make([]any, len(filenames))
	for i, f := range filenames {
		placeholders[i] = "?"
		args[i] = f
	}
	inClause := strings.Join(placeholders, ",")

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM documents WHERE filename IN (%s)", inClause), args...); err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to delete documents: %w", err))
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM fts_content WHERE filename IN (%s)", inClause), args...); err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to delete from index: %w", err))
	}

	return tx.Commit()
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, seekerrors.StoreUnavailable(err)
	}
	return count, nil
}

// List returns all stored filenames in lexical order.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	rows, err := s.db.QueryContext(ctx, `SELECT filename FROM documents ORDER BY filename`)
	if err != nil {
		return nil, seekerrors.StoreUnavailable(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, seekerrors.StoreUnavailable(err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Capabilities reports native scoring support (FTS5 bm25 in MATCH mode).
func (s *SQLiteStore) Capabilities() Capabilities {
	return Capabilities{NativeScores: true}
}

// Close closes the store. Forces a WAL checkpoint before closing.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil // Idempotent
	}

	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}
