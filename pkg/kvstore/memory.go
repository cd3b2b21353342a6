package kvstore

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily
// on access and by Cleanup.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Take(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		return "", ErrNotFound
	}
	delete(s.entries, key)
	return e.value, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.lookup(key)
	var n int64
	if ok {
		parsed, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		n = parsed
	} else if window > 0 {
		e.expiresAt = now.Add(window)
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	s.entries[key] = e

	var ttl time.Duration
	if !e.expiresAt.IsZero() {
		ttl = e.expiresAt.Sub(now)
	}
	return n, ttl, nil
}

// Cleanup removes expired entries.
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (s *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
