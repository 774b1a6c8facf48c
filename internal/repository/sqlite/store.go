// Package sqlite implements the repository contract on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mamadbah2/herdsync/internal/repository"
)

const currentVersion = 1

// Store is the SQLite backed repository.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ repository.Repository = (*Store)(nil)

// New opens (or creates) the SQLite database at dbPath and runs migrations. An empty
// path selects DefaultDBPath.
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dbPath == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve default db path: %w", err)
		}
		dbPath = p
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps writes sequential and makes :memory: databases usable.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Debug("sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

// NewMemory creates an in-memory store.
func NewMemory() (*Store, error) {
	return New(":memory:", nil)
}

// Close releases the database handle.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS herds (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		cows        INTEGER NOT NULL DEFAULT 0 CHECK (cows >= 0),
		chickens    INTEGER NOT NULL DEFAULT 0 CHECK (chickens >= 0),
		sheep       INTEGER NOT NULL DEFAULT 0 CHECK (sheep >= 0),
		goats       INTEGER NOT NULL DEFAULT 0 CHECK (goats >= 0),
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_goals (
		day   TEXT PRIMARY KEY,
		milk  REAL NOT NULL,
		eggs  INTEGER NOT NULL,
		wool  REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_records (
		day           TEXT PRIMARY KEY,
		milk          REAL NOT NULL DEFAULT 0,
		eggs          INTEGER NOT NULL DEFAULT 0,
		wool          REAL NOT NULL DEFAULT 0,
		is_completed  INTEGER NOT NULL DEFAULT 0,
		updated_at    TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/herdsync/herdsync.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "herdsync", "herdsync.db"), nil
}

// Reset deletes every herd, goal and record in one transaction.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"herds", "daily_goals", "daily_records"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, value)
	return t
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
