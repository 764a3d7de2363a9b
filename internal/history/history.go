// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history tracks identifiers produced by earlier generations so
// future prompts can steer the backend away from duplicates. The set is
// advisory: a colliding response is still accepted, and matching is exact
// string equality with case preserved.
package history

import "sync"

// Tracker is a synchronized, insertion-ordered set of identifiers. Multiple
// orchestrator workers add and snapshot concurrently; a snapshot taken while
// another worker is adding may be stale, which is acceptable for advisory
// deduplication.
type Tracker struct {
	mu    sync.Mutex
	seen  map[string]bool
	order []string
}

// NewTracker returns a Tracker seeded with the given identifiers, in order.
func NewTracker(seed ...string) *Tracker {
	t := &Tracker{seen: make(map[string]bool, len(seed))}
	for _, id := range seed {
		t.add(id)
	}
	return t
}

// Contains reports whether the identifier has been recorded.
func (t *Tracker) Contains(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[id]
}

// Add records an identifier. Adding an already-present identifier is a
// no-op; the return value reports whether the identifier was new.
func (t *Tracker) Add(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.add(id)
}

func (t *Tracker) add(id string) bool {
	if t.seen[id] {
		return false
	}
	t.seen[id] = true
	t.order = append(t.order, id)
	return true
}

// Snapshot returns a copy of the recorded identifiers in insertion order.
func (t *Tracker) Snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of recorded identifiers.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}
