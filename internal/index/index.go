// Package index maintains the availability index: the set of dates known to
// have a recap snapshot in the remote repository.
//
// The index is derived wholesale from the remote directory listing and
// persisted to durable storage as a side channel. The persisted copy is
// trusted while younger than the freshness window; past that it is
// re-derived on the next load. The in-process handle is populated once per
// process lifetime and never invalidated mid-process (long-running servers
// call Reload explicitly).
//
// All failures are absorbed: a failed listing yields an empty set (fail-open
// toward "nothing available") and a failed persist keeps the freshly
// computed set anyway.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/core"
	"github.com/aewiki/recap-cli/internal/store"
)

// Lister fetches the remote directory listing.
type Lister interface {
	ListTree(ctx context.Context) ([]api.TreeEntry, error)
}

// filePattern extracts the date key from a snapshot file name.
var filePattern = regexp.MustCompile(`recap-(\d{4}-\d{2}-\d{2})\.json$`)

// persistedIndex is the durable side-channel format.
type persistedIndex struct {
	Timestamp int64    `json:"timestamp"`
	Files     []string `json:"files"`
}

// Index is the service-owned availability index handle.
type Index struct {
	lister  Lister
	store   store.Store
	window  time.Duration
	now     func() time.Time
	verbose bool

	// mu guards loaded and dates. Servers read the handle from concurrent
	// request goroutines while the scheduled Reload swaps it out.
	mu     sync.RWMutex
	loaded bool
	dates  map[string]struct{}
}

// New creates an availability index over the given listing client and
// durable store. A non-positive window falls back to the default one-day
// freshness window.
func New(lister Lister, st store.Store, window time.Duration, verbose bool) *Index {
	if window <= 0 {
		window = core.DefaultFreshnessWindow
	}
	return &Index{
		lister:  lister,
		store:   st,
		window:  window,
		now:     time.Now,
		verbose: verbose,
	}
}

// log writes a debug message if verbose mode is enabled.
func (ix *Index) log(msg string) {
	core.Eprint(fmt.Sprintf("[Index] %s", msg), ix.verbose)
}

// Refresh returns the current availability set. A persisted copy younger
// than the freshness window is used without a network call; otherwise the
// remote listing is fetched, filtered, persisted with a fresh timestamp
// and returned. On listing failure an empty set is returned.
func (ix *Index) Refresh(ctx context.Context) map[string]struct{} {
	if set, ok := ix.readPersisted(ctx); ok {
		return set
	}

	entries, err := ix.lister.ListTree(ctx)
	if err != nil {
		ix.log(fmt.Sprintf("listing failed: %v; treating no recaps as available", err))
		return map[string]struct{}{}
	}

	set := make(map[string]struct{})
	for _, entry := range entries {
		if entry.Type != "blob" {
			continue
		}
		if !strings.HasPrefix(entry.Path, "data/") {
			continue
		}
		if !strings.HasSuffix(entry.Path, ".json") || !strings.Contains(entry.Path, "recap-") {
			continue
		}
		m := filePattern.FindStringSubmatch(entry.Path)
		if m == nil {
			continue
		}
		set[m[1]] = struct{}{}
	}

	ix.persist(ctx, set)
	return set
}

// EnsureLoaded populates the in-process handle exactly once per process
// lifetime. Subsequent calls are no-ops regardless of elapsed time.
func (ix *Index) EnsureLoaded(ctx context.Context) {
	ix.mu.RLock()
	loaded := ix.loaded
	ix.mu.RUnlock()
	if loaded {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.loaded {
		return
	}
	ix.dates = ix.Refresh(ctx)
	ix.loaded = true
}

// Reload re-derives the handle even if already loaded. Used by long-running
// servers on a schedule; the persisted freshness window still applies. The
// new set is computed before the swap so readers keep serving the old one
// during the listing.
func (ix *Index) Reload(ctx context.Context) {
	set := ix.Refresh(ctx)

	ix.mu.Lock()
	ix.dates = set
	ix.loaded = true
	ix.mu.Unlock()

	ix.log(fmt.Sprintf("reloaded with %d dates", len(set)))
}

// Contains reports whether a snapshot is known to exist for the date.
func (ix *Index) Contains(ctx context.Context, date string) bool {
	ix.EnsureLoaded(ctx)

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.dates[date]
	return ok
}

// MostRecent returns the chronologically latest known date, or false when
// nothing is available.
func (ix *Index) MostRecent(ctx context.Context) (string, bool) {
	ix.EnsureLoaded(ctx)

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	latest := ""
	for date := range ix.dates {
		// Lexicographic order is date order for zero-padded keys.
		if date > latest {
			latest = date
		}
	}
	return latest, latest != ""
}

// Dates returns all known dates in ascending order.
func (ix *Index) Dates(ctx context.Context) []string {
	ix.EnsureLoaded(ctx)

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	dates := make([]string, 0, len(ix.dates))
	for date := range ix.dates {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// readPersisted loads the durable copy if it exists and is still fresh.
func (ix *Index) readPersisted(ctx context.Context) (map[string]struct{}, bool) {
	data, err := ix.store.Get(ctx, core.IndexKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			ix.log(fmt.Sprintf("failed to read persisted index: %v", err))
		}
		return nil, false
	}

	var p persistedIndex
	if err := json.Unmarshal(data, &p); err != nil {
		ix.log(fmt.Sprintf("corrupt persisted index: %v", err))
		return nil, false
	}

	age := ix.now().Sub(time.UnixMilli(p.Timestamp))
	if age >= ix.window {
		ix.log(fmt.Sprintf("persisted index is stale (%v old)", age.Round(time.Minute)))
		return nil, false
	}

	set := make(map[string]struct{}, len(p.Files))
	for _, date := range p.Files {
		set[date] = struct{}{}
	}
	return set, true
}

// persist writes the freshly derived set with a new timestamp. Failure is
// logged and ignored; the computed set is still served.
func (ix *Index) persist(ctx context.Context, set map[string]struct{}) {
	files := make([]string, 0, len(set))
	for date := range set {
		files = append(files, date)
	}
	sort.Strings(files)

	data, err := json.Marshal(persistedIndex{
		Timestamp: ix.now().UnixMilli(),
		Files:     files,
	})
	if err != nil {
		ix.log(fmt.Sprintf("failed to serialize index: %v", err))
		return
	}
	if err := ix.store.Put(ctx, core.IndexKey, data); err != nil {
		ix.log(fmt.Sprintf("failed to persist index: %v", err))
	}
}
