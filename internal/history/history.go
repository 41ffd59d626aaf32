// Package history persists recent log queries to a JSON file so they
// can be listed and re-run.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultMaxEntries bounds the history file when no override is set.
const DefaultMaxEntries = 50

// Entry represents a single query in history.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Function    string    `json:"function"`
	Search      string    `json:"search,omitempty"`
	Levels      []string  `json:"levels,omitempty"`
	DateFrom    string    `json:"date_from,omitempty"`
	DateTo      string    `json:"date_to,omitempty"`
	Grouped     bool      `json:"grouped"`
	ResultCount int       `json:"result_count,omitempty"`
}

// Store reads and writes the history file.
type Store struct {
	path       string
	maxEntries int
}

// NewStore creates a Store. An empty path selects ~/.hogtail_history.json;
// maxEntries <= 0 selects DefaultMaxEntries.
func NewStore(path string, maxEntries int) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".hogtail_history.json")
	} else if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{path: path, maxEntries: maxEntries}, nil
}

// Load returns all entries, newest first. A missing file is empty
// history, not an error.
func (s *Store) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return entries, nil
}

// Add prepends an entry and trims the file to the configured maximum.
// A corrupt existing file is replaced rather than surfaced.
func (s *Store) Add(entry Entry) error {
	entries, err := s.Load()
	if err != nil {
		entries = nil
	}

	entries = append([]Entry{entry}, entries...)
	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the history file.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
