package evidence

import (
	"sync"
	"time"
)

// DefaultTTL keeps evidence active for an hour, matching how long a
// typical physical-world report stays actionable.
const DefaultTTL = time.Hour

type entry struct {
	arrived time.Time
	ev      Evidence
}

// Store retains recently ingested Evidence and evicts by age. Items
// expire individually based on their own arrival time: a cluster
// corroborated by evidence arriving at different times degrades item by
// item rather than disappearing at once. Eviction is lazy and scans only
// from the oldest end, relying on arrival order correlating with age.
//
// Safe for concurrent use by many producers and queriers.
type Store struct {
	ttl   time.Duration
	clock func() time.Time

	mu    sync.Mutex
	items []entry
}

// NewStore creates a Store with the given TTL. clock supplies the current
// time for arrival stamps and eviction; nil means time.Now. Tests inject
// a synthetic clock for deterministic eviction.
func NewStore(ttl time.Duration, clock func() time.Time) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Store{ttl: ttl, clock: clock}
}

// Add appends ev with an arrival timestamp. O(1).
func (s *Store) Add(ev Evidence) {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, entry{arrived: now, ev: ev})
}

// Snapshot returns a point-in-time copy of all items within TTL and
// permanently discards expired items found at the front of the
// arrival-ordered sequence.
func (s *Store) Snapshot() []Evidence {
	cutoff := s.clock().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := 0
	for idx < len(s.items) && s.items[idx].arrived.Before(cutoff) {
		idx++
	}
	if idx > 0 {
		// Copy down rather than reslicing so evicted entries are freed.
		s.items = append(s.items[:0], s.items[idx:]...)
	}

	out := make([]Evidence, len(s.items))
	for i, it := range s.items {
		out[i] = it.ev
	}
	return out
}

// Size reports the number of retained items, including any not yet
// lazily evicted.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
