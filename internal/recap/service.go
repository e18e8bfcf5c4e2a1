// Package recap orchestrates cache lookup, availability checks and remote
// fetch-and-store for dated recap snapshots.
package recap

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/cache"
	"github.com/aewiki/recap-cli/internal/core"
	"github.com/aewiki/recap-cli/internal/index"
)

// ErrNotAvailable is returned when the availability index denies a date.
var ErrNotAvailable = errors.New("no recap available")

// ErrFetchFailed is returned when the remote snapshot request does not
// succeed. The wrapped detail carries the status or transport error.
var ErrFetchFailed = errors.New("recap fetch failed")

var overridePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Fetcher retrieves a snapshot body from the remote repository.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, date string) (*api.Snapshot, error)
}

// Service is the recap fetch service. It owns the availability index handle
// and shares the snapshot cache with other in-process callers.
type Service struct {
	fetcher Fetcher
	cache   *cache.Cache
	index   *index.Index
	verbose bool
}

// New creates a recap fetch service.
func New(fetcher Fetcher, c *cache.Cache, ix *index.Index, verbose bool) *Service {
	return &Service{fetcher: fetcher, cache: c, index: ix, verbose: verbose}
}

// log writes a debug message if verbose mode is enabled.
func (s *Service) log(msg string) {
	core.Eprint(fmt.Sprintf("[Recap] %s", msg), s.verbose)
}

// Index returns the service-owned availability index handle.
func (s *Service) Index() *index.Index {
	return s.index
}

// Fetch returns the snapshot for the given date key.
//
// A cache hit is returned immediately with no availability check and no
// network call, even if the date was later delisted. On a miss the
// availability index must confirm the date (ErrNotAvailable otherwise),
// then a single remote attempt is made; success is stored into the cache,
// failure propagates as ErrFetchFailed without caching.
func (s *Service) Fetch(ctx context.Context, date string) (*api.Snapshot, error) {
	if snap := s.cache.Get(ctx, date); snap != nil {
		s.log(fmt.Sprintf("cache hit for %s", date))
		return snap, nil
	}

	if !s.index.Contains(ctx, date) {
		return nil, fmt.Errorf("%w for %s", ErrNotAvailable, date)
	}

	snap, err := s.fetcher.FetchSnapshot(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	s.cache.Put(ctx, date, snap)
	return snap, nil
}

// ResolveInitialDate picks the date a caller should open on. A well-formed
// explicit override wins unchecked (availability is not verified; a bad
// override simply fails downstream in Fetch). Otherwise the most recent
// known date, and finally today when nothing is available. The ordering of
// this fallback chain is part of the contract.
func (s *Service) ResolveInitialDate(ctx context.Context, override string) string {
	if overridePattern.MatchString(override) {
		return override
	}
	if latest, ok := s.index.MostRecent(ctx); ok {
		return latest
	}
	return core.Today()
}
