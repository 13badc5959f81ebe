package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LogStore appends accepted leads to a newline-delimited JSON file.
// The file is append-only; records are never rewritten or deleted.
type LogStore struct {
	path string
	mu   sync.Mutex
}

// NewLogStore creates a JSONL recorder writing to path. Parent
// directories are created on first write.
func NewLogStore(path string) *LogStore {
	return &LogStore{path: path}
}

// Record appends one JSON line for rec.
func (s *LogStore) Record(_ context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("leads: marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("leads: create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("leads: open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("leads: append record: %w", err)
	}
	return nil
}
