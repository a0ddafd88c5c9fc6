// Package memstore provides an in-memory implementation of mirror.Store.
// Suitable for dev/testing and for running without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/linnemanlabs/gridwatch/internal/incident"
)

// Store holds mirrored incidents in memory, keyed by incident id.
type Store struct {
	mu        sync.RWMutex
	incidents map[string]incident.Public
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{incidents: make(map[string]incident.Public)}
}

// Upsert inserts or replaces incidents by id. Replaying the same rows is
// a no-op in effect: no duplication, no drift.
func (s *Store) Upsert(_ context.Context, incidents []incident.Public) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inc := range incidents {
		s.incidents[inc.ID] = inc
	}
	return nil
}

// Query returns mirrored incidents ordered by created_at descending,
// filtered to rows created strictly after since when set.
func (s *Store) Query(_ context.Context, limit int, since *time.Time) ([]incident.Public, error) {
	s.mu.RLock()
	out := make([]incident.Public, 0, len(s.incidents))
	for _, inc := range s.incidents {
		if since != nil && !inc.CreatedAt.After(*since) {
			continue
		}
		out = append(out, inc)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports the number of mirrored incidents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.incidents)
}
