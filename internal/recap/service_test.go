package recap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/cache"
	"github.com/aewiki/recap-cli/internal/core"
	"github.com/aewiki/recap-cli/internal/index"
	"github.com/aewiki/recap-cli/internal/store"
)

type fixture struct {
	remote *api.FakeRemote
	store  *store.MemoryStore
	cache  *cache.Cache
	svc    *Service
}

func newFixture() *fixture {
	remote := api.NewFakeRemote()
	st := store.NewMemoryStore()
	c := cache.New(st, false)
	ix := index.New(remote, st, time.Hour, false)
	return &fixture{
		remote: remote,
		store:  st,
		cache:  c,
		svc:    New(remote, c, ix, false),
	}
}

func sampleSnapshot() *api.Snapshot {
	return &api.Snapshot{
		TotalContributors: 2,
		Contributors: []api.Contributor{
			{UserID: "u1", UserName: "Alice", Contributions: 40, ContributionsText: "40 edits"},
			{UserID: "u2", UserName: "Bob", Contributions: 2, ContributionsText: "2 edits", IsAdmin: true},
		},
	}
}

func TestFetchCacheHitSkipsAvailabilityAndRemote(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.cache.Put(ctx, "2025-06-01", sampleSnapshot())

	snap, err := f.svc.Fetch(ctx, "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, sampleSnapshot(), snap)

	// Cache hits never touch the listing or the snapshot endpoint, even
	// though the index was never loaded.
	require.Equal(t, 0, f.remote.ListCalls)
	require.Empty(t, f.remote.FetchCalls)
}

func TestFetchNotAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Fetch(ctx, "2025-06-01")
	require.ErrorIs(t, err, ErrNotAvailable)

	// The index was consulted, the snapshot endpoint was not.
	require.Equal(t, 1, f.remote.ListCalls)
	require.Empty(t, f.remote.FetchCalls)
}

func TestFetchStoresIntoCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.remote.SeedSnapshot("2025-06-01", sampleSnapshot())

	snap, err := f.svc.Fetch(ctx, "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, sampleSnapshot(), snap)
	require.Equal(t, []string{"2025-06-01"}, f.remote.FetchCalls)

	// The second fetch is served from cache.
	_, err = f.svc.Fetch(ctx, "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, []string{"2025-06-01"}, f.remote.FetchCalls)
}

func TestFetchFailurePropagatesWithoutCaching(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.remote.SeedDates("2025-06-01")
	f.remote.FetchErr = &api.RequestError{StatusCode: 503, Message: "unavailable"}

	_, err := f.svc.Fetch(ctx, "2025-06-01")
	require.ErrorIs(t, err, ErrFetchFailed)
	require.Contains(t, err.Error(), "503")

	require.Nil(t, f.cache.Get(ctx, "2025-06-01"))
}

func TestFetchFailureCausesRetryOnNextCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.remote.SeedSnapshot("2025-06-01", sampleSnapshot())
	f.remote.FetchErr = errors.New("connection reset")

	_, err := f.svc.Fetch(ctx, "2025-06-01")
	require.ErrorIs(t, err, ErrFetchFailed)

	// Nothing was cached, so a later call goes back to the remote.
	f.remote.FetchErr = nil
	snap, err := f.svc.Fetch(ctx, "2025-06-01")
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, f.remote.FetchCalls, 2)
}

func TestResolveInitialDate(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit override wins unchecked", func(t *testing.T) {
		f := newFixture()
		f.remote.SeedDates("2025-05-01")

		// The override is not in the index; it is returned anyway.
		got := f.svc.ResolveInitialDate(ctx, "2025-06-01")
		require.Equal(t, "2025-06-01", got)
		require.Equal(t, 0, f.remote.ListCalls)
	})

	t.Run("malformed override falls through", func(t *testing.T) {
		f := newFixture()
		f.remote.SeedDates("2025-05-01", "2025-05-03")

		got := f.svc.ResolveInitialDate(ctx, "06/01/2025")
		require.Equal(t, "2025-05-03", got)
	})

	t.Run("most recent known date", func(t *testing.T) {
		f := newFixture()
		f.remote.SeedDates("2025-05-01", "2025-05-03", "2025-04-30")

		got := f.svc.ResolveInitialDate(ctx, "")
		require.Equal(t, "2025-05-03", got)
	})

	t.Run("empty index falls back to today", func(t *testing.T) {
		f := newFixture()

		got := f.svc.ResolveInitialDate(ctx, "")
		require.Equal(t, core.Today(), got)
	})
}

func TestAvatarURL(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			"size token upgraded",
			`<img src="http://x/width/36/height/36/img.png">`,
			"http://x/width/128/height/128/img.png",
		},
		{
			"no size token",
			`<img src="http://x/img.png" alt="avatar">`,
			"http://x/img.png",
		},
		{
			"first src wins",
			`<img src="http://a/one.png"><img src="http://b/two.png">`,
			"http://a/one.png",
		},
		{
			"no src attribute",
			`<span class="avatar"></span>`,
			DefaultAvatarURL,
		},
		{
			"empty fragment",
			"",
			DefaultAvatarURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AvatarURL(tt.fragment))
		})
	}
}
