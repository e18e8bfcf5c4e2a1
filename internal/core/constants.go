// Package core provides shared constants and date utilities for the recap CLI.
package core

import (
	"os"
	"path/filepath"
	"time"
)

// Durable storage keys. The names match the web recap page so a cache
// written by one can be inspected with the other.
const (
	// SnapshotKeyPrefix namespaces persisted snapshots: prefix + DateKey.
	SnapshotKeyPrefix = "aewiki-recap-"

	// IndexKey holds the persisted availability index side channel.
	IndexKey = "aewiki-available-files"
)

// DefaultFreshnessWindow is the maximum age of the persisted availability
// index before it is re-derived from the remote listing.
const DefaultFreshnessWindow = 24 * time.Hour

// CacheRoot returns the default cache directory path.
func CacheRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".aewiki", "recap")
}

// Version is the current CLI version.
const Version = "0.3.0"
