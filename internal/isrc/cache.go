package isrc

import (
	"context"
	"sync"
	"time"

	"trackfeed/internal/store"
)

// Entry is the earliest-appearance record for one recording.
type Entry struct {
	ISRC         string
	EarliestDate time.Time
	AlbumName    string
}

// Cache is the backing store for resolved recordings. Implementations must
// apply the immutability rule: an existing entry may only be replaced by one
// with a strictly earlier date.
type Cache interface {
	Get(ctx context.Context, isrc string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
}

// MemoryCache is an in-memory Cache for tests and one-off sessions.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

func (c *MemoryCache) Get(_ context.Context, isrc string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.entries[isrc]
	return entry, found, nil
}

func (c *MemoryCache) Put(_ context.Context, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, found := c.entries[entry.ISRC]; found && !entry.EarliestDate.Before(existing.EarliestDate) {
		return nil
	}
	c.entries[entry.ISRC] = entry
	return nil
}

// DurableCache persists entries in the engine's SQLite store.
type DurableCache struct {
	store *store.Store
}

func NewDurableCache(s *store.Store) *DurableCache {
	return &DurableCache{store: s}
}

func (c *DurableCache) Get(ctx context.Context, isrc string) (Entry, bool, error) {
	entry, found, err := c.store.GetISRC(ctx, isrc)
	if err != nil || !found {
		return Entry{}, false, err
	}
	return Entry{ISRC: entry.ISRC, EarliestDate: entry.EarliestDate, AlbumName: entry.AlbumName}, true, nil
}

func (c *DurableCache) Put(ctx context.Context, entry Entry) error {
	return c.store.PutISRC(ctx, store.ISRCEntry{
		ISRC:         entry.ISRC,
		EarliestDate: entry.EarliestDate,
		AlbumName:    entry.AlbumName,
	})
}
