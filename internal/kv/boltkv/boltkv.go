// Package boltkv is the bbolt-backed durable implementation of kv.Store.
package boltkv

import (
	"time"

	"go.etcd.io/bbolt"
)

const bucketLocal = "local" // key -> string value

// Store persists keys in a single bbolt bucket. Writes are committed before
// Set returns, so values survive process restart.
type Store struct {
	db *bbolt.DB
}

// Open creates or opens the database file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketLocal))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get implements kv.Store. A cursor seek is used instead of Bucket.Get
// because bbolt returns nil for zero-length values, which would make an
// empty stored value indistinguishable from absence.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketLocal)).Cursor()
		if k, v := c.Seek([]byte(key)); k != nil && string(k) == key {
			value = string(v)
			found = true
		}
		return nil
	})
	return value, found, err
}

// Set implements kv.Store.
func (s *Store) Set(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketLocal)).Put([]byte(key), []byte(value))
	})
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
