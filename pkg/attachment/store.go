// Package attachment provides the durable local store binding captured
// photo artifacts to server-assigned transaction identifiers.
package attachment

import (
	"fmt"
	"strconv"
	"strings"

	bolt "go.etcd.io/bbolt"
)

// bucketImages holds one entry per bound artifact. Keys use the
// transaction_image_{id} namespace; values are opaque artifact URIs.
const bucketImages = "transaction_images"

const keyPrefix = "transaction_image_"

// Store is the bbolt-backed attachment store.
//
// A successful Put is durable before it returns; callers treat it as
// crash-safe. Absence of a binding is an expected state and is never
// reported as an error, so callers can always tell "no image" apart from
// "image status unknown because the store failed".
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the attachment database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketImages))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put binds an artifact reference to a transaction ID. An existing binding
// for the same ID is overwritten (last write wins). Idempotent.
func (s *Store) Put(txID int64, ref string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketImages)).Put(keyFor(txID), []byte(ref))
	})
	if err != nil {
		return fmt.Errorf("failed to store attachment for transaction %d: %w", txID, err)
	}
	return nil
}

// Get returns the artifact reference bound to a transaction ID. A missing
// binding returns ok=false with a nil error.
func (s *Store) Get(txID int64) (ref string, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketImages)).Get(keyFor(txID))
		if data == nil {
			return nil
		}
		ref = string(data)
		ok = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read attachment for transaction %d: %w", txID, err)
	}
	return ref, ok, nil
}

// Delete removes the binding for a transaction ID. Deleting an absent key
// succeeds, so repeated deletes converge to the same state.
func (s *Store) Delete(txID int64) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketImages)).Delete(keyFor(txID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete attachment for transaction %d: %w", txID, err)
	}
	return nil
}

// ListKeys returns the transaction IDs of all stored bindings. Intended for
// diagnostics and cleanup, not primary lookup.
func (s *Store) ListKeys() ([]int64, error) {
	var ids []int64
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketImages)).ForEach(func(k, v []byte) error {
			id, err := parseKey(string(k))
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attachment keys: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored bindings.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketImages)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count attachments: %w", err)
	}
	return n, nil
}

func keyFor(txID int64) []byte {
	return []byte(fmt.Sprintf("%s%d", keyPrefix, txID))
}

func parseKey(key string) (int64, error) {
	raw, found := strings.CutPrefix(key, keyPrefix)
	if !found {
		return 0, fmt.Errorf("unexpected attachment key: %s", key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected attachment key: %s", key)
	}
	return id, nil
}
