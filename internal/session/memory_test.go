package session

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemoryStoreGetSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.Get(ctx, "unknown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty sources for unknown session, got %q", got)
	}
	if s.Len() != 0 {
		t.Fatalf("Get must not create sessions")
	}

	in := []string{"PS100.pdf", "manual.pdf"}
	if err := s.Set(ctx, "s1", in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	in[0] = "mutated"

	got, _ = s.Get(ctx, "s1")
	if want := []string{"PS100.pdf", "manual.pdf"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if err := s.Set(ctx, "s1", []string{"other.pdf"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ = s.Get(ctx, "s1")
	if want := []string{"other.pdf"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Set must replace the list, got %q", got)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(WithTTL(time.Hour), WithClock(clock.Now))
	ctx := context.Background()

	_ = s.Set(ctx, "a", []string{"a.pdf"})
	_ = s.Set(ctx, "b", []string{"b.pdf"})

	clock.Advance(30 * time.Minute)
	if got, _ := s.Get(ctx, "a"); len(got) != 1 {
		t.Fatalf("session a should still be alive")
	}

	clock.Advance(45 * time.Minute)
	if got, _ := s.Get(ctx, "b"); len(got) != 0 {
		t.Fatalf("session b should have expired, got %q", got)
	}
	if got, _ := s.Get(ctx, "a"); len(got) != 1 {
		t.Fatalf("reading a at 30m must have refreshed it")
	}

	clock.Advance(2 * time.Hour)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected sweep to drop 1 session, dropped %d", n)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestMemoryStoreLRU(t *testing.T) {
	s := NewMemoryStore(WithMaxEntries(2))
	ctx := context.Background()

	_ = s.Set(ctx, "a", []string{"a.pdf"})
	_ = s.Set(ctx, "b", []string{"b.pdf"})
	_, _ = s.Get(ctx, "a") // a is now most recently used
	_ = s.Set(ctx, "c", []string{"c.pdf"})

	if got, _ := s.Get(ctx, "b"); len(got) != 0 {
		t.Fatalf("b should have been evicted, got %q", got)
	}
	if got, _ := s.Get(ctx, "a"); len(got) != 1 {
		t.Fatalf("a should have survived")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", s.Len())
	}
}

func TestMemoryStoreConcurrentSessions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%5)
			_ = s.Set(ctx, id, []string{fmt.Sprintf("%d.pdf", i)})
			if _, err := s.Get(ctx, id); err != nil {
				t.Errorf("Get: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 5 {
		t.Fatalf("expected 5 sessions, got %d", s.Len())
	}
}
