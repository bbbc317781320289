package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Options tunes the SQLite connection pool
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  time.Duration
	Logger       *zap.Logger
}

// DefaultOptions returns pool settings suitable for a single-process server
func DefaultOptions() Options {
	return Options{
		MaxOpenConns: 25,
		MaxIdleConns: 5,
		BusyTimeout:  5 * time.Second,
	}
}

// querier is the subset of *sql.DB and *sql.Tx used by repository operations
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries carries every single-statement repository operation and the hydrators.
// It is embedded by both Store and Tx so reads and writes work in or out of a transaction.
type queries struct {
	q querier
}

// Store handles SQLite database operations for worlds, catalogs and users
type Store struct {
	queries
	db   *sql.DB
	path string
	log  *zap.Logger
}

// Tx is a scoped transaction handed to WithTx callbacks
type Tx struct {
	queries
	tx *sql.Tx
}

// NewStore opens the database file. Every pooled connection enforces foreign
// keys and begins transactions with an immediate write lock.
func NewStore(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dataSourceName(path, opts.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{
		queries: queries{q: db},
		db:      db,
		path:    path,
		log:     opts.Logger,
	}, nil
}

func dataSourceName(path string, busyTimeout time.Duration) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_journal_mode", "WAL")
	params.Set("_txlock", "immediate")
	params.Set("_busy_timeout", strconv.FormatInt(busyTimeout.Milliseconds(), 10))
	return "file:" + path + "?" + params.Encode()
}

// DB exposes the underlying handle for migrations and tests
func (s *Store) DB() *sql.DB {
	return s.db
}

// IsHealthy returns true if the database answers a ping
func (s *Store) IsHealthy(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

// WithTx runs fn inside one transaction. Any error returned by fn, or a panic,
// rolls back every statement fn issued; the transaction commits only when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			s.log.Warn("transaction rollback failed", zap.Error(rbErr))
		}
	}()

	if err := fn(&Tx{queries: queries{q: sqlTx}, tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	committed = true
	return nil
}

// Close closes the database connection pool
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// ☣ DESTRUCTIVE: Removes database file and its WAL companions
	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete database file: %w", err)
		}
	}

	return nil
}
