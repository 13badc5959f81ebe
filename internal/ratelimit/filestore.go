package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/planetaskin/lead-intake/pkg/logging"
)

// FileStore keeps one small JSON file of unix-second timestamps per
// identifier. Identifiers are hashed before they become filenames so
// raw IP addresses never land on disk. A keyed mutex serializes the
// read-prune-append-write cycle per identifier; different identifiers
// proceed in parallel.
type FileStore struct {
	dir    string
	config Config
	logger *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// now is swappable in tests.
	now func() time.Time
}

// NewFileStore creates a file-backed limiter rooted at dir.
func NewFileStore(dir string, config Config, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &FileStore{
		dir:    dir,
		config: config,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
		now:    time.Now,
	}
}

// Allow reports whether another attempt from key fits in the window,
// recording the attempt when it does.
func (s *FileStore) Allow(ctx context.Context, key string) bool {
	_, span := tracer.Start(ctx, "ratelimit.file_allow")
	defer span.End()

	hashed := hashKey(key)
	lock := s.keyLock(hashed)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error("rate limit dir unavailable, failing open", "error", err, "dir", s.dir)
		return true
	}

	path := filepath.Join(s.dir, hashed+".json")
	now := s.now().Unix()

	window := s.load(path)
	window = prune(window, now, int64(s.config.Window.Seconds()))

	span.SetAttributes(attribute.Int("ratelimit.window_count", len(window)))

	if len(window) >= s.config.MaxAttempts {
		span.SetAttributes(attribute.Bool("ratelimit.exceeded", true))
		return false
	}

	window = append(window, now)
	if err := s.save(path, window); err != nil {
		s.logger.Error("rate limit write failed, failing open", "error", err, "path", path)
	}
	return true
}

// load reads the timestamp window; absent or corrupt files read as
// empty rather than erroring.
func (s *FileStore) load(path string) []int64 {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var window []int64
	if err := json.Unmarshal(raw, &window); err != nil {
		return nil
	}
	return window
}

func (s *FileStore) save(path string, window []int64) error {
	raw, err := json.Marshal(window)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func (s *FileStore) keyLock(hashed string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[hashed]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[hashed] = lock
	}
	return lock
}

// prune drops timestamps older than windowSec relative to now. It is
// idempotent: pruning an already-pruned window changes nothing.
func prune(window []int64, now, windowSec int64) []int64 {
	kept := window[:0]
	for _, t := range window {
		if now-t <= windowSec {
			kept = append(kept, t)
		}
	}
	return kept
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
