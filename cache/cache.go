// Package cache holds per-collection snapshots keyed by the server's change
// token (ctag). The cache is passive: it never talks to the network, callers
// fetch the current token and decide whether to re-fetch.
package cache

import (
	"sync"
	"time"
)

// Cloneable lets the store hand out deep copies, so a caller mutating a
// result cannot corrupt the cached snapshot.
type Cloneable[T any] interface {
	Clone() T
}

// Config tunes a Store. A zero MaxAge disables age-based expiry; token
// comparison is authoritative.
type Config struct {
	MaxAge time.Duration
}

type entry[T Cloneable[T]] struct {
	ctag      string
	objects   []T
	fetchedAt time.Time
}

// Store caches one object list per collection URL. The map access is
// mutex-guarded; the wider read-fetch-put race between concurrent service
// calls on one collection is an accepted single-process limitation.
type Store[T Cloneable[T]] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	maxAge  time.Duration
	now     func() time.Time
}

func New[T Cloneable[T]](cfg Config) *Store[T] {
	return &Store[T]{
		entries: make(map[string]entry[T]),
		maxAge:  cfg.MaxAge,
		now:     time.Now,
	}
}

// IsDirty reports whether the cached snapshot for the collection is missing,
// carries a different change token than currentCTag, or has aged out.
func (s *Store[T]) IsDirty(collectionURL, currentCTag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[collectionURL]
	if !ok {
		return true
	}
	if e.ctag != currentCTag {
		return true
	}
	if s.maxAge > 0 && s.now().Sub(e.fetchedAt) > s.maxAge {
		return true
	}
	return false
}

// Get returns a clone of the cached object list, if any.
func (s *Store[T]) Get(collectionURL string) ([]T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[collectionURL]
	if !ok {
		return nil, false
	}
	return cloneAll(e.objects), true
}

// Put replaces the collection's snapshot wholesale.
func (s *Store[T]) Put(collectionURL, ctag string, objects []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[collectionURL] = entry[T]{
		ctag:      ctag,
		objects:   cloneAll(objects),
		fetchedAt: s.now(),
	}
}

// Invalidate drops the collection's snapshot unconditionally.
func (s *Store[T]) Invalidate(collectionURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, collectionURL)
}

func cloneAll[T Cloneable[T]](objects []T) []T {
	out := make([]T, len(objects))
	for i, obj := range objects {
		out[i] = obj.Clone()
	}
	return out
}
