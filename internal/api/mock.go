package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// FakeRemote is a lightweight simulation of the recap data repository.
// Implements the listing and snapshot endpoints sufficient for unit testing
// index and fetch logic. Safe for concurrent use; the recorded call fields
// should only be read after in-flight operations have finished.
type FakeRemote struct {
	mu        sync.Mutex
	tree      []TreeEntry
	snapshots map[string]*Snapshot

	ListCalls  int
	FetchCalls []string

	// ListErr and FetchErr, when set, fail the corresponding operation.
	ListErr  error
	FetchErr error
}

// NewFakeRemote creates an empty in-memory repository for testing.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		snapshots:  make(map[string]*Snapshot),
		FetchCalls: make([]string, 0),
	}
}

// SeedDates lists the given date keys in the remote tree without snapshot
// bodies. Entries follow the repository layout: data/<year>/recap-<date>.json.
func (f *FakeRemote) SeedDates(dates ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range dates {
		f.tree = append(f.tree, TreeEntry{
			Path: fmt.Sprintf("data/%s/recap-%s.json", d[:4], d),
			Type: "blob",
		})
	}
}

// SeedSnapshot stores a snapshot body and lists its date in the tree.
func (f *FakeRemote) SeedSnapshot(date string, snap *Snapshot) {
	f.SeedDates(date)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[date] = snap
}

// AddTreeEntry appends an arbitrary listing entry (for filter tests).
func (f *FakeRemote) AddTreeEntry(path, typ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tree = append(f.tree, TreeEntry{Path: path, Type: typ})
}

// Reset clears all seeded data and recorded calls.
func (f *FakeRemote) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tree = nil
	f.snapshots = make(map[string]*Snapshot)
	f.ListCalls = 0
	f.FetchCalls = make([]string, 0)
	f.ListErr = nil
	f.FetchErr = nil
}

// ListTree simulates the directory listing endpoint.
func (f *FakeRemote) ListTree(ctx context.Context) ([]TreeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]TreeEntry, len(f.tree))
	copy(out, f.tree)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// FetchSnapshot simulates the snapshot endpoint. Missing dates answer 404.
func (f *FakeRemote) FetchSnapshot(ctx context.Context, date string) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchCalls = append(f.FetchCalls, date)
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	snap, ok := f.snapshots[date]
	if !ok {
		return nil, &RequestError{StatusCode: 404, Message: "not found"}
	}
	cp := *snap
	cp.Contributors = append([]Contributor(nil), snap.Contributors...)
	return &cp, nil
}
