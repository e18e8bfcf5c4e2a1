// Package server exposes the recap fetch service over HTTP for long-running
// deployments.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/core"
	"github.com/aewiki/recap-cli/internal/recap"
)

// Server serves recap snapshots as JSON. Unlike the one-shot CLI the
// process is long-lived, so the availability index is reloaded on a daily
// schedule instead of once per process.
type Server struct {
	svc     *recap.Service
	verbose bool
}

// New creates a server around the given fetch service.
func New(svc *recap.Service, verbose bool) *Server {
	return &Server{svc: svc, verbose: verbose}
}

// recapResponse is the body of a successful /api/recap answer. The resolved
// date is echoed so clients can write it back into their location for
// shareable URLs.
type recapResponse struct {
	Date     string        `json:"date"`
	Snapshot *api.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Date  string `json:"date,omitempty"`
	Error string `json:"error"`
}

// Handler returns the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/recap", s.handleRecap)
	mux.HandleFunc("/api/dates", s.handleDates)
	return mux
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date := s.svc.ResolveInitialDate(ctx, r.URL.Query().Get("date"))
	snap, err := s.svc.Fetch(ctx, date)
	switch {
	case errors.Is(err, recap.ErrNotAvailable):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Date:  date,
			Error: "no recap data available",
		})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Date:  date,
			Error: err.Error(),
		})
	default:
		writeJSON(w, http.StatusOK, recapResponse{Date: date, Snapshot: snap})
	}
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dates := s.svc.Index().Dates(ctx)
	latest, _ := s.svc.Index().MostRecent(ctx)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dates":  dates,
		"latest": latest,
		"count":  len(dates),
	})
}

// Run serves on addr until the listener fails, reloading the availability
// index every day so new recaps become visible without a restart.
func (s *Server) Run(addr string) error {
	c := cron.New()
	if _, err := c.AddFunc("@daily", func() {
		s.svc.Index().Reload(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule index reload: %w", err)
	}
	c.Start()
	defer c.Stop()

	core.Eprint(fmt.Sprintf("[Server] listening on %s", addr), s.verbose)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		core.Eprint(fmt.Sprintf("[Server] failed to encode response: %v", err), true)
	}
}
