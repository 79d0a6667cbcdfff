// Package cache provides a single-value snapshot cache with a fixed
// staleness window.
package cache

import (
	"sync"
	"time"
)

// Snapshot holds one cached value of type T. A value older than the
// ttl is treated as absent. Writes to the underlying data must call
// Invalidate (or Set) so readers never see a stale snapshot past one
// window.
type Snapshot[T any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	data       T
	capturedAt time.Time
	valid      bool
	now        func() time.Time
}

func NewSnapshot[T any](ttl time.Duration) *Snapshot[T] {
	return &Snapshot[T]{ttl: ttl, now: time.Now}
}

// Get returns the cached value and whether it is still fresh.
func (s *Snapshot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid || s.now().Sub(s.capturedAt) > s.ttl {
		var zero T
		return zero, false
	}
	return s.data, true
}

func (s *Snapshot[T]) Set(data T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.capturedAt = s.now()
	s.valid = true
}

func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.data = zero
	s.valid = false
}

// Age reports how old the snapshot is; ok is false when nothing fresh
// is cached.
func (s *Snapshot[T]) Age() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid {
		return 0, false
	}
	age := s.now().Sub(s.capturedAt)
	if age > s.ttl {
		return 0, false
	}
	return age, true
}
