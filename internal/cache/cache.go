// Package cache persists dated recap snapshots in durable key-value storage.
//
// Snapshots are stored under namespaced keys (aewiki-recap-<DateKey>) with
// no TTL. When a write fails because storage is exhausted, the oldest 25%
// of entries are evicted and the write is retried once. Storage failures
// are never surfaced to callers; a failed read is a miss and a dropped
// write is logged.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/core"
	"github.com/aewiki/recap-cli/internal/store"
)

// Cache is a thin transactional wrapper over a durable Store. It owns no
// in-memory state.
type Cache struct {
	store   store.Store
	verbose bool
}

// New creates a snapshot cache over the given store.
func New(st store.Store, verbose bool) *Cache {
	return &Cache{store: st, verbose: verbose}
}

// log writes a debug message if verbose mode is enabled.
func (c *Cache) log(msg string) {
	core.Eprint(fmt.Sprintf("[Cache] %s", msg), c.verbose)
}

func snapshotKey(date string) string {
	return core.SnapshotKeyPrefix + date
}

// Get returns the cached snapshot for the date, or nil on a miss. Read and
// deserialization failures are logged and treated as misses.
func (c *Cache) Get(ctx context.Context, date string) *api.Snapshot {
	data, err := c.store.Get(ctx, snapshotKey(date))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log(fmt.Sprintf("read for %s failed: %v", date, err))
		}
		return nil
	}

	var snap api.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log(fmt.Sprintf("corrupt entry for %s: %v", date, err))
		return nil
	}
	return &snap
}

// Put persists the snapshot under its date key. If the write fails the
// oldest entries are evicted and the write is retried once; a second
// failure is logged and the snapshot is dropped.
func (c *Cache) Put(ctx context.Context, date string, snap *api.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		c.log(fmt.Sprintf("failed to serialize snapshot for %s: %v", date, err))
		return
	}

	key := snapshotKey(date)
	err = c.store.Put(ctx, key, data)
	if err == nil {
		return
	}

	c.log(fmt.Sprintf("write for %s failed (%v); evicting oldest entries", date, err))
	c.Evict(ctx)

	if err := c.store.Put(ctx, key, data); err != nil {
		c.log(fmt.Sprintf("write for %s failed after eviction: %v", date, err))
	}
}

// Evict removes the chronologically oldest quarter of cached snapshots,
// rounded up, and returns how many entries were removed. Individual
// deletion failures are logged and skipped.
func (c *Cache) Evict(ctx context.Context) int {
	keys, err := c.store.Keys(ctx, core.SnapshotKeyPrefix)
	if err != nil {
		c.log(fmt.Sprintf("eviction scan failed: %v", err))
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	// Keys share the namespace prefix, so key order is date order.
	sort.Strings(keys)

	count := (len(keys) + 3) / 4
	removed := 0
	for _, key := range keys[:count] {
		if err := c.store.Delete(ctx, key); err != nil {
			c.log(fmt.Sprintf("failed to evict %s: %v", key, err))
			continue
		}
		removed++
	}
	c.log(fmt.Sprintf("evicted %d of %d entries", removed, len(keys)))
	return removed
}
