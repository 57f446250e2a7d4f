// Package cache stores finished comps results for a bounded time.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/comps"
)

const (
	DefaultTTL        = 15 * time.Minute
	DefaultMaxEntries = 100
	// evictFraction of entries is dropped, oldest first, when a sweep of
	// expired entries does not bring the store under MaxEntries.
	evictFraction = 0.2
)

// Options configures a store. Zero values take the defaults.
type Options struct {
	TTL        time.Duration
	MaxEntries int
	// Now is the clock; tests inject a fake one.
	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

type entry struct {
	result    *comps.CompsResult
	storedAt  time.Time
	expiresAt time.Time
}

// MemoryStore is a process-local result cache. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	opts    Options
}

var _ comps.ResultCache = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts Options) *MemoryStore {
	opts.setDefaults()
	return &MemoryStore{
		entries: make(map[string]entry),
		opts:    opts,
	}
}

// Get returns a copy of the entry for key while now is before its expiry.
// An expired entry is deleted.
func (s *MemoryStore) Get(_ context.Context, key string) (*comps.CompsResult, time.Duration, bool) {
	now := s.opts.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, 0, false
	}
	if !now.Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, 0, false
	}
	return e.result.Clone(), now.Sub(e.storedAt), true
}

// Set stores a copy of result for the configured TTL.
func (s *MemoryStore) Set(_ context.Context, key string, result *comps.CompsResult) {
	now := s.opts.Now()
	stored := result.Clone()
	stored.Cached = false
	stored.CacheAge = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		result:    stored,
		storedAt:  now,
		expiresAt: now.Add(s.opts.TTL),
	}
	if len(s.entries) > s.opts.MaxEntries {
		s.evictLocked(now)
	}
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup deletes expired entries and returns how many were removed.
func (s *MemoryStore) Cleanup() int {
	now := s.opts.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) evictLocked(now time.Time) {
	s.sweepLocked(now)
	if len(s.entries) <= s.opts.MaxEntries {
		return
	}

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.entries[keys[i]], s.entries[keys[j]]
		if !a.storedAt.Equal(b.storedAt) {
			return a.storedAt.Before(b.storedAt)
		}
		return keys[i] < keys[j]
	})

	drop := max(int(float64(len(keys))*evictFraction), 1)
	for _, k := range keys[:drop] {
		delete(s.entries, k)
	}
}
