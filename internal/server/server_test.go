package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/cache"
	"github.com/aewiki/recap-cli/internal/index"
	"github.com/aewiki/recap-cli/internal/recap"
	"github.com/aewiki/recap-cli/internal/store"
)

func newTestServer(remote *api.FakeRemote) *Server {
	st := store.NewMemoryStore()
	c := cache.New(st, false)
	ix := index.New(remote, st, time.Hour, false)
	return New(recap.New(remote, c, ix, false), false)
}

func TestRecapEndpoint(t *testing.T) {
	remote := api.NewFakeRemote()
	remote.SeedSnapshot("2025-06-01", &api.Snapshot{
		TotalContributors: 1,
		Contributors:      []api.Contributor{{UserID: "u1", UserName: "Alice", Contributions: 3}},
	})
	srv := newTestServer(remote)

	req := httptest.NewRequest(http.MethodGet, "/api/recap?date=2025-06-01", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Date     string        `json:"date"`
		Snapshot *api.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "2025-06-01", body.Date)
	require.Equal(t, 1, body.Snapshot.TotalContributors)
}

func TestRecapEndpointDefaultsToLatest(t *testing.T) {
	remote := api.NewFakeRemote()
	remote.SeedSnapshot("2025-06-01", &api.Snapshot{TotalContributors: 1})
	remote.SeedSnapshot("2025-06-02", &api.Snapshot{TotalContributors: 2})
	srv := newTestServer(remote)

	req := httptest.NewRequest(http.MethodGet, "/api/recap", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "2025-06-02", body.Date)
}

func TestRecapEndpointNotAvailable(t *testing.T) {
	srv := newTestServer(api.NewFakeRemote())

	req := httptest.NewRequest(http.MethodGet, "/api/recap?date=2025-06-01", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "no recap data available", body.Error)
}

// The scheduled index reload runs on its own goroutine while handlers keep
// serving; run under -race.
func TestHandlersDuringReload(t *testing.T) {
	remote := api.NewFakeRemote()
	remote.SeedSnapshot("2025-06-01", &api.Snapshot{TotalContributors: 1})
	remote.SeedSnapshot("2025-06-02", &api.Snapshot{TotalContributors: 2})
	srv := newTestServer(remote)
	handler := srv.Handler()

	get := func(path string) int {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	// Warm the index and the cache before the concurrent phase.
	require.Equal(t, http.StatusOK, get("/api/recap?date=2025-06-01"))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if code := get("/api/recap?date=2025-06-01"); code != http.StatusOK {
					t.Errorf("recap request returned %d", code)
				}
				if code := get("/api/dates"); code != http.StatusOK {
					t.Errorf("dates request returned %d", code)
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 25; j++ {
			srv.svc.Index().Reload(context.Background())
		}
	}()
	wg.Wait()

	require.Equal(t, http.StatusOK, get("/api/recap?date=2025-06-02"))
}

func TestDatesEndpoint(t *testing.T) {
	remote := api.NewFakeRemote()
	remote.SeedDates("2025-06-02", "2025-06-01")
	srv := newTestServer(remote)

	req := httptest.NewRequest(http.MethodGet, "/api/dates", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Dates  []string `json:"dates"`
		Latest string   `json:"latest"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []string{"2025-06-01", "2025-06-02"}, body.Dates)
	require.Equal(t, "2025-06-02", body.Latest)
	require.Equal(t, 2, body.Count)
}
