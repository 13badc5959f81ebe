package leads

import (
	"context"
	"sync"
)

// Recorder persists accepted lead records. Persistence is best-effort
// from the caller's point of view: a Recorder error never blocks the
// visitor-facing success response.
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
}

// MemoryRecorder keeps records in memory for tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	records []*Record
}

// NewMemoryRecorder creates an in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends rec to the in-memory list.
func (m *MemoryRecorder) Record(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Records returns a snapshot of everything recorded so far.
func (m *MemoryRecorder) Records() []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Record, len(m.records))
	copy(out, m.records)
	return out
}
