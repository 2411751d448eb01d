package session

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Store keeps the source list of each conversation session.
// Unknown sessions read as an empty list; sessions are created on first Set.
type Store interface {
	Get(ctx context.Context, sessionID string) ([]string, error)
	Set(ctx context.Context, sessionID string, sources []string) error
}

type entry struct {
	mu      sync.Mutex // serializes reads and writes of one session
	sources []string

	// guarded by MemoryStore.mu
	id       string
	lastUsed time.Time
	elem     *list.Element
}

// MemoryStore is an in-process Store. The map lock is held only to find or
// create an entry; the session's own lock guards its sources, so distinct
// sessions never wait on each other.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*entry
	lru        *list.List // front = most recently used
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithTTL expires sessions not used for d. Zero disables expiry.
func WithTTL(d time.Duration) MemoryOption { return func(s *MemoryStore) { s.ttl = d } }

// WithMaxEntries evicts the least recently used session beyond n. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption { return func(s *MemoryStore) { s.maxEntries = n } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption { return func(s *MemoryStore) { s.now = now } }

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		lru:     list.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]string, error) {
	e := s.lookup(sessionID, false)
	if e == nil {
		return []string{}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.sources...), nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID string, sources []string) error {
	e := s.lookup(sessionID, true)
	e.mu.Lock()
	e.sources = append([]string{}, sources...)
	e.mu.Unlock()
	s.attach(e)
	return nil
}

// attach re-inserts an entry that was evicted while a writer held its lock.
func (s *MemoryStore) attach(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[e.id]; !ok || cur != e {
		s.insertLocked(e)
	}
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for el := s.lru.Back(); el != nil; {
		e := el.Value.(*entry)
		if !e.lastUsed.Before(cutoff) {
			break
		}
		prev := el.Prev()
		s.removeLocked(e)
		removed++
		el = prev
	}
	return removed
}

// StartJanitor sweeps expired sessions every interval until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *MemoryStore) lookup(id string, create bool) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[id]; ok {
		if s.ttl > 0 && now.Sub(e.lastUsed) > s.ttl {
			s.removeLocked(e)
		} else {
			e.lastUsed = now
			s.lru.MoveToFront(e.elem)
			return e
		}
	}
	if !create {
		return nil
	}
	e := &entry{id: id, lastUsed: now}
	s.insertLocked(e)
	return e
}

func (s *MemoryStore) insertLocked(e *entry) {
	if old, ok := s.entries[e.id]; ok {
		s.removeLocked(old)
	}
	e.lastUsed = s.now()
	e.elem = s.lru.PushFront(e)
	s.entries[e.id] = e

	for s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		oldest := s.lru.Back()
		if oldest == nil {
			break
		}
		s.removeLocked(oldest.Value.(*entry))
	}
}

func (s *MemoryStore) removeLocked(e *entry) {
	if e.elem != nil {
		s.lru.Remove(e.elem)
		e.elem = nil
	}
	if cur, ok := s.entries[e.id]; ok && cur == e {
		delete(s.entries, e.id)
	}
}
