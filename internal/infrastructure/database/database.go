package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// MemoryPath selects a private in-memory database.
const MemoryPath = ":memory:"

const openTimeout = 5 * time.Second

// Config maps the database section of config.yaml.
type Config struct {
	// Path is the SQLite file. Empty or ":memory:" keeps the journal in
	// process memory.
	Path string

	// WALMode switches file databases to write-ahead logging.
	WALMode bool

	// BusyTimeout is how long a statement waits on a lock, in seconds.
	BusyTimeout int
}

func (c Config) inMemory() bool {
	return c.Path == "" || c.Path == MemoryPath
}

// dsn builds the go-sqlite3 connection string for c.
func (c Config) dsn() string {
	q := url.Values{}
	q.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout*1000))
	q.Set("_foreign_keys", "on")

	if c.inMemory() {
		return "file::memory:?" + q.Encode()
	}
	if c.WALMode {
		q.Set("_journal_mode", "WAL")
		q.Set("_synchronous", "NORMAL")
	}
	return "file:" + c.Path + "?" + q.Encode()
}

// DB is the journal database handle.
type DB struct {
	*sql.DB
	path string
}

// Open connects to the database described by cfg and pings it.
//
// The pool is pinned to one connection: SQLite allows a single writer and
// an in-memory database exists only on the connection that created it.
// The parent directory of a file database is created if missing.
func Open(cfg Config) (*DB, error) {
	path := MemoryPath
	if !cfg.inMemory() {
		path = cfg.Path
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("pinging %s: %w", path, err)
	}

	return &DB{DB: sqlDB, path: path}, nil
}

// Close releases the connection.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the file path, or ":memory:".
func (db *DB) Path() string { return db.path }

// InMemory reports whether the journal vanishes with the process.
func (db *DB) InMemory() bool { return db.path == MemoryPath }

// HealthCheck runs a trivial query.
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return nil
}
