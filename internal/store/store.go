package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// migrations are applied in order; user_version records how many have run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key         TEXT PRIMARY KEY,
		value       TEXT NOT NULL,
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	)`,
}

var currentVersion = len(migrations)

// Store is a SQLite-backed key/value store.
type Store struct {
	db     *sql.DB
	logger hclog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes migration and open diagnostics to logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.Named("store")
	}
}

// New opens (or creates) the SQLite database at dbPath and brings its
// schema up to date.
func New(dbPath string, opts ...Option) (*Store, error) {
	s := &Store{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(s)
	}

	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps :memory: databases alive and serialises writes.
	db.SetMaxOpenConns(1)
	s.db = db

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(opts ...Option) (*Store, error) {
	return New(memoryPath, opts...)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for v := version; v < currentVersion; v++ {
		if err := s.apply(v+1, migrations[v]); err != nil {
			return err
		}
		s.logger.Info("applied migration", "version", v+1)
	}
	return nil
}

// apply runs one migration and bumps user_version in the same transaction.
func (s *Store) apply(version int, ddl string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(ddl); err != nil {
		return fmt.Errorf("migration %d: %w", version, err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version %d: %w", version, err)
	}
	return tx.Commit()
}

// DefaultDBPath returns <user config dir>/bbomodoro/bbomodoro.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "bbomodoro", "bbomodoro.db"), nil
}
