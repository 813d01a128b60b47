package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	// Pure-Go SQLite driver, registers "sqlite".
	_ "modernc.org/sqlite"
)

// ErrCacheMiss is returned when no entry matches a request key.
var ErrCacheMiss = errors.New("cache miss")

// Entry is a stored response.
type Entry struct {
	Key      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// SQLiteStore keeps named, versioned caches in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS caches (
	name       TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	cache_name TEXT NOT NULL REFERENCES caches(name) ON DELETE CASCADE,
	key        TEXT NOT NULL,
	status     INTEGER NOT NULL,
	header     TEXT NOT NULL,
	body       BLOB NOT NULL,
	stored_at  INTEGER NOT NULL,
	PRIMARY KEY (cache_name, key)
);`

// NewSQLiteStore opens or creates the cache database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening cache database", "path", path)

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close releases the database connection.
func (store *SQLiteStore) Close() error {
	return store.db.Close()
}

// PutAll stores every entry in the named cache, creating it if needed.
// Either all entries are stored or none are.
func (store *SQLiteStore) PutAll(ctx context.Context, cacheName string, entries []Entry) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixNano()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO caches (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		cacheName, now,
	); err != nil {
		return fmt.Errorf("create cache %s: %w", cacheName, err)
	}

	for _, entry := range entries {
		header, err := json.Marshal(entry.Header)
		if err != nil {
			return fmt.Errorf("encode header for %s: %w", entry.Key, err)
		}
		body := entry.Body
		if body == nil {
			body = []byte{}
		}
		storedAt := entry.StoredAt
		if storedAt.IsZero() {
			storedAt = time.Unix(0, now)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entries (cache_name, key, status, header, body, stored_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(cache_name, key) DO UPDATE SET
			   status = excluded.status, header = excluded.header,
			   body = excluded.body, stored_at = excluded.stored_at`,
			cacheName, entry.Key, entry.Status, string(header), body, storedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("store %s: %w", entry.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache %s: %w", cacheName, err)
	}
	return nil
}

// Match returns the entry stored under key in the named cache.
func (store *SQLiteStore) Match(ctx context.Context, cacheName, key string) (Entry, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var (
		entry    Entry
		header   string
		storedAt int64
	)
	err := store.db.QueryRowContext(ctx,
		`SELECT key, status, header, body, stored_at FROM entries WHERE cache_name = ? AND key = ?`,
		cacheName, key,
	).Scan(&entry.Key, &entry.Status, &header, &entry.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrCacheMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("match %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(header), &entry.Header); err != nil {
		return Entry{}, fmt.Errorf("decode header for %s: %w", key, err)
	}
	entry.StoredAt = time.Unix(0, storedAt)
	return entry, nil
}

// CacheNames lists the caches in creation order.
func (store *SQLiteStore) CacheNames(ctx context.Context) ([]string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	rows, err := store.db.QueryContext(ctx, `SELECT name FROM caches ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list caches: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan cache name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteCache removes the named cache and its entries.
func (store *SQLiteStore) DeleteCache(ctx context.Context, cacheName string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, err := store.db.ExecContext(ctx, `DELETE FROM caches WHERE name = ?`, cacheName); err != nil {
		return fmt.Errorf("delete cache %s: %w", cacheName, err)
	}
	store.logger.Info("deleted cache", "cache", cacheName)
	return nil
}
