// Package store provides local persistence: JSON section blobs under fixed
// keys in a Pebble database, written through a debounced outbox.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebbleStore keeps one JSON blob per section key.
type PebbleStore struct {
	db *pebble.DB
}

// Open opens (or creates) the store under dir.
func Open(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

// Put writes the blob under key. Writes go through the WAL; the debounce
// window above this layer is the only durability gap.
func (s *PebbleStore) Put(key string, data []byte) error {
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", key, err)
	}
	return nil
}

// Get returns the blob under key, or nil when the key has never been
// written.
func (s *PebbleStore) Get(key string) ([]byte, error) {
	v, closer, err := s.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get %s: %w", key, err)
	}
	defer closer.Close()
	out := append([]byte(nil), v...)
	return out, nil
}
