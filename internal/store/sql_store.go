package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"ideaforge/internal/core"
)

// Record kinds in the ideas table.
const (
	kindPublished = "published"
	kindRejected  = "rejected"
)

// SQLStore keeps records in a single ideas table on sqlite or postgres.
// The full record is stored as a JSON payload next to a few indexed columns.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a sqlite database. An empty path puts
// ideaforge.db in dataDir.
func NewSQLiteStore(dataDir, path string) (*SQLStore, error) {
	if path == "" {
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		path = filepath.Join(dataDir, "ideaforge.db")
	}
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQLStore(db, `
	CREATE TABLE IF NOT EXISTS ideas (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		name TEXT NOT NULL,
		critic_score INTEGER,
		payload TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	);`)
}

// NewPostgresStore connects to postgres using dsn.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres store requires store.dsn")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return newSQLStore(db, `
	CREATE TABLE IF NOT EXISTS ideas (
		seq BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		name TEXT NOT NULL,
		critic_score INTEGER,
		payload TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	);`)
}

func newSQLStore(db *sqlx.DB, schema string) (*SQLStore, error) {
	statements := []string{
		schema,
		`CREATE INDEX IF NOT EXISTS idx_ideas_fingerprint ON ideas (fingerprint);`,
		`CREATE INDEX IF NOT EXISTS idx_ideas_kind ON ideas (kind);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Append(rec core.Record) error {
	return s.insert(kindPublished, rec)
}

func (s *SQLStore) AppendRejected(rec core.Record) error {
	return s.insert(kindRejected, rec)
}

func (s *SQLStore) insert(kind string, rec core.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	var score sql.NullInt64
	if v, ok := rec.Idea.Score(); ok {
		score = sql.NullInt64{Int64: int64(v), Valid: true}
	}
	query := s.db.Rebind(`INSERT INTO ideas (kind, fingerprint, name, critic_score, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.Exec(query, kind, rec.Idea.Fingerprint, rec.Idea.Name, score, string(payload), rec.RecordedAt); err != nil {
		return fmt.Errorf("failed to insert %s record: %w", kind, err)
	}
	return nil
}

func (s *SQLStore) List() ([]core.Record, error) {
	return s.list(kindPublished)
}

func (s *SQLStore) ListRejected() ([]core.Record, error) {
	return s.list(kindRejected)
}

func (s *SQLStore) list(kind string) ([]core.Record, error) {
	var payloads []string
	query := s.db.Rebind(`SELECT payload FROM ideas WHERE kind = ? ORDER BY seq`)
	if err := s.db.Select(&payloads, query, kind); err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", kind, err)
	}
	records := make([]core.Record, 0, len(payloads))
	for _, p := range payloads {
		var rec core.Record
		if err := json.Unmarshal([]byte(p), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *SQLStore) HasFingerprint(fp string) (bool, error) {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM ideas WHERE kind = ? AND fingerprint = ?`)
	if err := s.db.Get(&n, query, kindPublished, fp); err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) Find(fp string) (core.Record, error) {
	var payload string
	query := s.db.Rebind(`SELECT payload FROM ideas WHERE kind = ? AND fingerprint = ? ORDER BY seq LIMIT 1`)
	err := s.db.Get(&payload, query, kindPublished, fp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("failed to find record: %w", err)
	}
	var rec core.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return core.Record{}, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
