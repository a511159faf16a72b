// Package journal persists committed pool events into a relational database
// so the host can serve account histories. It implements the engine's event
// sink; a failed insert is logged and never propagates back into the
// state-transition path.
package journal

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ammcore/ammd/internal/core/ledger"
	"github.com/ammcore/ammd/internal/core/pool"
)

// Amounts are stored as decimal text: the balance type is a full-width
// unsigned integer and BIGINT columns are signed.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pool_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	account    TEXT NOT NULL,
	amount     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pool_events_account ON pool_events(account, id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS pool_events (
	id         BIGSERIAL PRIMARY KEY,
	kind       TEXT NOT NULL,
	account    TEXT NOT NULL,
	amount     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pool_events_account ON pool_events(account, id);
`

// Entry is one committed pool event as stored.
type Entry struct {
	ID      int64
	Kind    string
	Account string
	Amount  uint64
	At      time.Time
}

// Journal is an append-only event log over database/sql, with an LRU cache
// in front of the per-account history queries.
type Journal struct {
	db       *sql.DB
	postgres bool
	cache    *lru.Cache[string, []Entry]
	now      func() time.Time
}

// Open opens the journal with the given driver ("sqlite" or "postgres") and
// DSN, creating the schema if needed.
func Open(driver, dsn string, cacheSize int) (*Journal, error) {
	var schema string
	postgres := false
	switch driver {
	case "sqlite":
		schema = sqliteSchema
	case "postgres":
		schema = postgresSchema
		postgres = true
	default:
		return nil, fmt.Errorf("unknown journal driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, []Entry](cacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{
		db:       db,
		postgres: postgres,
		cache:    cache,
		now:      time.Now,
	}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Emit records a committed pool event. Implements pool.Sink.
func (j *Journal) Emit(ev pool.Event) {
	query := `INSERT INTO pool_events (kind, account, amount, created_at) VALUES (?, ?, ?, ?)`
	if j.postgres {
		query = `INSERT INTO pool_events (kind, account, amount, created_at) VALUES ($1, $2, $3, $4)`
	}

	_, err := j.db.Exec(query,
		ev.Kind.String(),
		string(ev.Account),
		strconv.FormatUint(uint64(ev.Amount), 10),
		j.now().UTC(),
	)
	if err != nil {
		log.Printf("journal: failed to record %s event for %s: %v", ev.Kind, ev.Account, err)
		return
	}

	j.cache.Remove(string(ev.Account))
}

// AccountEvents returns the most recent events for an account, newest first.
func (j *Journal) AccountEvents(account ledger.Account, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	if cached, ok := j.cache.Get(string(account)); ok && len(cached) >= limit {
		return cached[:limit], nil
	}

	query := `SELECT id, kind, account, amount, created_at FROM pool_events WHERE account = ? ORDER BY id DESC LIMIT ?`
	if j.postgres {
		query = `SELECT id, kind, account, amount, created_at FROM pool_events WHERE account = $1 ORDER BY id DESC LIMIT $2`
	}

	entries, err := j.queryEntries(query, string(account), limit)
	if err != nil {
		return nil, err
	}

	j.cache.Add(string(account), entries)
	return entries, nil
}

// Recent returns the most recent events across all accounts, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, kind, account, amount, created_at FROM pool_events ORDER BY id DESC LIMIT ?`
	if j.postgres {
		query = `SELECT id, kind, account, amount, created_at FROM pool_events ORDER BY id DESC LIMIT $1`
	}

	return j.queryEntries(query, limit)
}

func (j *Journal) queryEntries(query string, args ...interface{}) ([]Entry, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var amount string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Account, &amount, &e.At); err != nil {
			return nil, err
		}
		e.Amount, err = strconv.ParseUint(amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q in journal entry %d: %w", amount, e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
