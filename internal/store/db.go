// Package store is the SQLite reference implementation of the ledger,
// seed-state and seed-history contracts.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/MJE43/pf-casino-engine/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrPlayerNotFound is returned for lookups of unknown players.
var ErrPlayerNotFound = errors.New("player not found")

// SQLiteDB is a single-connection SQLite database.
type SQLiteDB struct {
	db      *sql.DB
	logger  *slog.Logger
	backoff func() retry.Backoff
	now     func() time.Time
}

// Option configures a SQLiteDB.
type Option func(*SQLiteDB)

func WithLogger(l *slog.Logger) Option {
	return func(s *SQLiteDB) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *SQLiteDB) { s.now = now }
}

// NewSQLiteDB opens the database at path. ":memory:" gives a private
// in-memory database.
func NewSQLiteDB(path string, opts ...Option) (*SQLiteDB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers; one connection keeps :memory: coherent too.
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{
		db:     db,
		logger: slog.Default(),
		now:    time.Now,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(5, retry.NewExponential(20*time.Millisecond))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open is NewSQLiteDB followed by Migrate.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteDB, error) {
	s, err := NewSQLiteDB(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	return s, nil
}

// Migrate applies the embedded goose migrations.
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, r := range results {
		s.logger.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// Ping checks the connection.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close checkpoints the WAL and closes the database.
func (s *SQLiteDB) Close() error {
	_, cerr := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return multierr.Append(cerr, s.db.Close())
}

func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

// write runs fn in a transaction, retrying when the database is busy.
func (s *SQLiteDB) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		err := s.inTx(ctx, fn)
		if err != nil && isBusy(err) {
			s.logger.Warn("database busy, retrying", logging.Err(err))
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *SQLiteDB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		return multierr.Append(err, rollback(tx))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func rollback(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func fromUnixNano(n int64) time.Time { return time.Unix(0, n).UTC() }
