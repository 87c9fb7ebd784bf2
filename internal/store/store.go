// Package store persists published ideas and the rejected-ideas log.
package store

import (
	"errors"
	"fmt"
	"strings"

	"ideaforge/internal/core"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("store: record not found")

// Store is an append-only record store keyed by insertion order.
// Implementations assume a single writer.
type Store interface {
	Append(rec core.Record) error
	AppendRejected(rec core.Record) error
	List() ([]core.Record, error)
	ListRejected() ([]core.Record, error)
	HasFingerprint(fp string) (bool, error)
	Find(fp string) (core.Record, error)
	Close() error
}

// Backends.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend string // json (default), sqlite or postgres
	DataDir string // Directory for json files and the default sqlite database
	DSN     string // Connection string for postgres, or a sqlite path override
}

// Open returns the configured backend.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendJSON:
		return NewJSONStore(opts.DataDir)
	case BackendSQLite, "sqlite3":
		return NewSQLiteStore(opts.DataDir, opts.DSN)
	case BackendPostgres, "postgresql":
		return NewPostgresStore(opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
