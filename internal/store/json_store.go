package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ideaforge/internal/core"
)

// File names inside the data directory.
const (
	IdeasFile    = "ideas.json"
	RejectedFile = "rejected_ideas.json"
)

// JSONStore keeps records in flat JSON files that are read in full and
// rewritten in full on every append.
type JSONStore struct {
	ideasPath    string
	rejectedPath string
}

// NewJSONStore creates the data directory if needed.
func NewJSONStore(dataDir string) (*JSONStore, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONStore{
		ideasPath:    filepath.Join(dataDir, IdeasFile),
		rejectedPath: filepath.Join(dataDir, RejectedFile),
	}, nil
}

func (s *JSONStore) Append(rec core.Record) error {
	return appendFile(s.ideasPath, rec)
}

func (s *JSONStore) AppendRejected(rec core.Record) error {
	return appendFile(s.rejectedPath, rec)
}

func (s *JSONStore) List() ([]core.Record, error) {
	return readFile(s.ideasPath)
}

func (s *JSONStore) ListRejected() ([]core.Record, error) {
	return readFile(s.rejectedPath)
}

func (s *JSONStore) HasFingerprint(fp string) (bool, error) {
	_, err := s.Find(fp)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *JSONStore) Find(fp string) (core.Record, error) {
	records, err := s.List()
	if err != nil {
		return core.Record{}, err
	}
	for _, rec := range records {
		if fp != "" && rec.Idea.Fingerprint == fp {
			return rec, nil
		}
	}
	return core.Record{}, ErrNotFound
}

func (s *JSONStore) Close() error { return nil }

func readFile(path string) ([]core.Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []core.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return []core.Record{}, nil
	}
	var records []core.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

func appendFile(path string, rec core.Record) error {
	records, err := readFile(path)
	if err != nil {
		return err
	}
	records = append(records, rec)
	return WriteJSONAtomic(path, records)
}

// WriteJSONAtomic writes v as indented JSON through a temp file and rename.
func WriteJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
