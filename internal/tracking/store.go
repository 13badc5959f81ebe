// Package tracking keeps ad attribution parameters for the duration of
// a visitor session, so a form submitted three pages deep still carries
// the campaign that brought the visitor in.
package tracking

import (
	"net/url"
	"sync"
)

// Params are the query parameters captured from the landing URL.
var Params = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_content",
	"utm_term",
	"gclid",
	"yclid",
}

// Store is a session-scoped key-value store. It replaces the implicit
// global state the site's scripts used to share: seeding happens once
// per session and every form controller reads the same snapshot.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	seeded bool
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Seed captures tracking parameters from the landing URL and the
// document referrer. Only the first call in a session has any effect;
// later page views must not overwrite the original attribution.
func (s *Store) Seed(landing *url.URL, referrer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return
	}
	s.seeded = true

	if landing != nil {
		query := landing.Query()
		for _, key := range Params {
			if v := query.Get(key); v != "" {
				s.values[key] = v
			}
		}
	}
	if referrer != "" {
		s.values["referrer"] = referrer
	}
}

// Get returns the stored value for key, or empty.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Snapshot returns a copy of all stored values.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
