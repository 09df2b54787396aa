package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps run times in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates or opens the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS last_runs (
		name TEXT PRIMARY KEY,
		last_run TEXT NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) LastRun(ctx context.Context, name string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT last_run FROM last_runs WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last run: %w", err)
	}
	t, ok := parseTimestamp(raw)
	return t, ok, nil
}

func (s *SQLiteStore) SetLastRun(ctx context.Context, name string, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO last_runs (name, last_run) VALUES (?, ?)
	ON CONFLICT(name) DO UPDATE SET last_run = excluded.last_run`,
		name, formatTimestamp(t))
	if err != nil {
		return fmt.Errorf("upsert last run: %w", err)
	}
	return nil
}
