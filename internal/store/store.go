package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS         = 5000
	defaultMaxOpenConns   = 5
	defaultAcquireTimeout = 3 * time.Second
	connMaxLifetime       = 5 * time.Minute

	maxOpenConnsEnvKey    = "SMOLPASTE_DB_MAX_OPEN_CONNS"
	acquireTimeoutEnvKey  = "SMOLPASTE_DB_ACQUIRE_TIMEOUT"
	connMaxLifetimeEnvKey = "SMOLPASTE_DB_CONN_MAX_LIFETIME"
)

// ErrNotFound is returned when a lookup or delete matches no row.
var ErrNotFound = errors.New("not found")

// Options tunes the connection pool. Zero values fall back to env, then defaults.
type Options struct {
	MaxOpenConns   int
	AcquireTimeout time.Duration
}

// Store wraps the SQLite database holding pastes and tokens.
type Store struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// Open opens the SQLite database at path and bootstraps the schema.
// path may be a bare file path or a sqlite:// URL.
func Open(path string) (*Store, error) {
	return OpenWithOptions(context.Background(), path, Options{})
}

// OpenWithOptions is Open with explicit pool tuning.
func OpenWithOptions(ctx context.Context, path string, opts Options) (*Store, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = intFromEnv(maxOpenConnsEnvKey, defaultMaxOpenConns)
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = durationFromEnv(acquireTimeoutEnvKey, defaultAcquireTimeout)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(durationFromEnv(connMaxLifetimeEnvKey, connMaxLifetime))

	st := &Store{db: db, acquireTimeout: opts.AcquireTimeout}
	if err := st.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

// OpenRaw opens the database without touching the schema, for inspecting
// migration state.
func OpenRaw(path string) (*sql.DB, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	return sql.Open("sqlite", dsn)
}

// EnsureSchema applies pending migrations. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Ping verifies a connection can be acquired within the acquire timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for migration tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// opContext bounds one store operation, connection acquisition included.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.acquireTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.acquireTimeout)
}

func sqliteDSN(path string) (string, error) {
	path = strings.TrimSpace(path)
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if strings.HasPrefix(path, prefix) {
			path = strings.TrimPrefix(path, prefix)
			break
		}
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}

	query := url.Values{}
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	query.Add("_pragma", "journal_mode(WAL)")
	query.Add("_pragma", "synchronous(NORMAL)")
	return path + "?" + query.Encode(), nil
}

func intFromEnv(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return def
}
