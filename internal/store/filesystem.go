package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aewiki/recap-cli/internal/core"
)

// FilesystemStore keeps each key as a JSON file in a single flat directory:
// <root>/<key>.json. Keys are already namespaced strings that are safe as
// file names.
type FilesystemStore struct {
	root      string
	writeLock sync.Mutex
}

// NewFilesystemStore creates a filesystem-backed store rooted at root.
func NewFilesystemStore(root string) *FilesystemStore {
	if root == "" {
		root = core.CacheRoot()
	}
	return &FilesystemStore{root: root}
}

// Path returns the file path holding the given key (for debugging).
func (s *FilesystemStore) Path(key string) string {
	return filepath.Join(s.root, key+".json")
}

// Root returns the store's directory.
func (s *FilesystemStore) Root() string {
	return s.root
}

// Get reads the value under key.
func (s *FilesystemStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes the value atomically via temp file + rename.
func (s *FilesystemStore) Put(ctx context.Context, key string, value []byte) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return err
	}

	path := s.Path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, value, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Delete removes the key's file. An absent file is not an error.
func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Keys lists all keys under the prefix.
func (s *FilesystemStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
