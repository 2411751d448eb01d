package index

import (
	"context"
	"fmt"
	"sync"

	"fdv-chatbot-platform/models"
)

// Reader is the read side shared by FileStore and Cache.
type Reader interface {
	Load(ctx context.Context, vendor, source string) (models.DocumentIndex, error)
	LoadAll(ctx context.Context, vendor string) ([]models.DocumentIndex, error)
}

type snapshot struct {
	version  string
	indexes  []models.DocumentIndex
	bySource map[string]int
}

// Cache keeps one read-only snapshot of each vendor's indexes in memory.
// A snapshot is dropped on Invalidate and whenever the store's version of
// the vendor changes, which covers rebuilds run by another process.
// Callers must not modify returned slices.
type Cache struct {
	store *FileStore

	mu      sync.RWMutex
	entries map[string]*snapshot
}

func NewCache(store *FileStore) *Cache {
	return &Cache{store: store, entries: make(map[string]*snapshot)}
}

func (c *Cache) LoadAll(ctx context.Context, vendor string) ([]models.DocumentIndex, error) {
	snap, err := c.snapshot(ctx, vendor)
	if err != nil {
		return nil, err
	}
	return snap.indexes, nil
}

func (c *Cache) Load(ctx context.Context, vendor, source string) (models.DocumentIndex, error) {
	snap, err := c.snapshot(ctx, vendor)
	if err != nil {
		return models.DocumentIndex{}, err
	}
	if i, ok := snap.bySource[source]; ok {
		return snap.indexes[i], nil
	}
	return models.DocumentIndex{}, fmt.Errorf("%w: %s/%s", ErrIndexNotFound, vendor, source)
}

// Invalidate drops the vendor's snapshot.
func (c *Cache) Invalidate(vendor string) {
	c.mu.Lock()
	delete(c.entries, vendor)
	c.mu.Unlock()
}

func (c *Cache) snapshot(ctx context.Context, vendor string) (*snapshot, error) {
	version, err := c.store.Version(vendor)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	snap, ok := c.entries[vendor]
	c.mu.RUnlock()
	if ok && snap.version == version {
		return snap, nil
	}

	indexes, err := c.store.LoadAll(ctx, vendor)
	if err != nil {
		return nil, err
	}
	snap = &snapshot{
		version:  version,
		indexes:  indexes,
		bySource: make(map[string]int, len(indexes)),
	}
	for i, idx := range indexes {
		snap.bySource[idx.Source] = i
	}

	// Do not cache an empty view of a directory that does not exist yet.
	if version != "" {
		c.mu.Lock()
		c.entries[vendor] = snap
		c.mu.Unlock()
	}
	return snap, nil
}
