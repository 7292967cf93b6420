// Package cachestore persists one snapshot blob per indexed repository root
// in a local bbolt database, so a later build or query can restore a graph
// without re-walking and re-parsing the whole tree.
package cachestore

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var snapshotsBucket = []byte("snapshots")

// Store is a single bbolt-backed cache file holding one snapshot per
// repository root, keyed by a hash of the root's absolute path.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the cache database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "codegraph.db")

	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores data as root's snapshot, replacing any prior value.
func (s *Store) Save(root string, data []byte) error {
	key := rootKey(root)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Put(key, data)
	})
}

// Load returns root's most recently saved snapshot, if any.
func (s *Store) Load(root string) ([]byte, bool, error) {
	key := rootKey(root)
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(snapshotsBucket).Get(key)
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, data != nil, nil
}

// Delete removes root's cached snapshot, if any.
func (s *Store) Delete(root string) error {
	key := rootKey(root)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Delete(key)
	})
}

func rootKey(root string) []byte {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha256.Sum256([]byte(abs))
	return []byte(hex.EncodeToString(sum[:]))
}
