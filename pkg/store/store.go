// Package store backs the framework's collection contracts with a shared
// SQLite database.
//
// SQLite in WAL mode is the synchronization oracle: the agreements and
// times tables give every process the same view (synchronized stores),
// while statements and enactments carry a recipient column so that each
// agent only sees what was addressed to it or to everyone (asynchronous
// stores). The database IS the transport; no other channel exists between
// agent processes.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Lut99/justact-go/pkg/model"
)

// recipientAll is the recipient column sentinel for updates addressed to
// every agent.
const recipientAll = "*"

// Store manages all SQLite operations with WAL mode for concurrent access.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	// Transactions take the write lock at Begin so that busy_timeout
	// covers read-then-write transactions too, instead of them failing
	// with a snapshot upgrade error under concurrent writers.
	dsn := path + "?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// retryOnContention wraps retryOp from retry.go with the default config.
// All store write operations should use this to handle transient SQLite
// errors (BUSY, LOCKED, IOERR_SHORT_READ) under concurrent access.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		id         TEXT PRIMARY KEY,
		registered TEXT NOT NULL,
		last_seen  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS times (
		ts      INTEGER PRIMARY KEY,
		current INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS agreements (
		message_id TEXT PRIMARY KEY,
		author     TEXT NOT NULL,
		payload    BLOB,
		applies_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS statements (
		recipient  TEXT NOT NULL,
		message_id TEXT NOT NULL,
		author     TEXT NOT NULL,
		payload    BLOB,
		stated_at  TEXT NOT NULL,
		PRIMARY KEY (recipient, message_id)
	);
	CREATE INDEX IF NOT EXISTS idx_statements_id ON statements(message_id);

	CREATE TABLE IF NOT EXISTS enactments (
		recipient  TEXT NOT NULL,
		action_id  TEXT NOT NULL,
		actor      TEXT NOT NULL,
		body       TEXT NOT NULL,
		taken_at   INTEGER NOT NULL,
		enacted_at TEXT NOT NULL,
		PRIMARY KEY (recipient, action_id)
	);
	CREATE INDEX IF NOT EXISTS idx_enactments_id ON enactments(action_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	// Seed logical time zero as current on first use.
	_, err := s.db.Exec(
		`INSERT INTO times (ts, current) SELECT 0, 1
		 WHERE NOT EXISTS (SELECT 1 FROM times)`,
	)
	return err
}

// ---------------------------------------------------------------------------
// Agents
// ---------------------------------------------------------------------------

// Agent is a registered participant session.
type Agent struct {
	ID         model.AgentID `json:"id"`
	Registered time.Time     `json:"registered_at"`
	LastSeen   time.Time     `json:"last_seen_at"`
}

// RegisterAgent creates or refreshes an agent. Idempotent via ON CONFLICT.
func (s *Store) RegisterAgent(id model.AgentID) (*Agent, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO agents (id, registered, last_seen)
			 VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`,
			string(id), now, now,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetAgent(id)
}

// GetAgent retrieves an agent by ID.
func (s *Store) GetAgent(id model.AgentID) (*Agent, error) {
	row := s.db.QueryRow(
		`SELECT id, registered, last_seen FROM agents WHERE id = ?`, string(id),
	)
	var a Agent
	var regStr, lsStr string
	if err := row.Scan(&a.ID, &regStr, &lsStr); err != nil {
		return nil, err
	}
	var parseErr error
	a.Registered, parseErr = time.Parse(time.RFC3339Nano, regStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parse registered time for agent %s: %w", a.ID, parseErr)
	}
	a.LastSeen, parseErr = time.Parse(time.RFC3339Nano, lsStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parse last_seen time for agent %s: %w", a.ID, parseErr)
	}
	return &a, nil
}

// ListAgents returns all registered agents ordered by ID.
func (s *Store) ListAgents() ([]Agent, error) {
	rows, err := s.db.Query(
		`SELECT id, registered, last_seen FROM agents ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		var regStr, lsStr string
		if err := rows.Scan(&a.ID, &regStr, &lsStr); err != nil {
			return nil, err
		}
		var parseErr error
		a.Registered, parseErr = time.Parse(time.RFC3339Nano, regStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse registered time for agent %s: %w", a.ID, parseErr)
		}
		a.LastSeen, parseErr = time.Parse(time.RFC3339Nano, lsStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse last_seen time for agent %s: %w", a.ID, parseErr)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
