package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mtanaka/pricewise/internal/analysis"
)

const slotFilename = "session.json"

// Store is the single-slot cache for the current analysis result. The slot is
// overwritten wholesale on every save and survives restarts; it never holds
// more than one result.
type Store struct {
	path string
}

// NewStore creates a session store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	return &Store{path: filepath.Join(baseDir, slotFilename)}, nil
}

// Save replaces the slot with a deep snapshot of result. Later in-memory
// mutation of the caller's value cannot affect the cached copy.
func (s *Store) Save(result *analysis.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling session result: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing session slot: %w", err)
	}
	return nil
}

// Load returns the current result, or (nil, nil) when the slot is empty.
func (s *Store) Load() (*analysis.Result, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session slot: %w", err)
	}
	result, err := analysis.ParseResult(data)
	if err != nil {
		return nil, fmt.Errorf("restoring session result: %w", err)
	}
	return result, nil
}

// Clear empties the slot. Clearing an already-empty slot is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing session slot: %w", err)
	}
	return nil
}
