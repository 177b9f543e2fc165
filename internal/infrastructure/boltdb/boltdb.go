package boltdb

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names used by the embedded store.
var (
	BucketTodos     = []byte("todos")
	BucketUsers     = []byte("users")
	BucketUsernames = []byte("usernames")
)

// Open initializes the BoltDB file and ensures every bucket exists.
func Open(path string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{BucketTodos, BucketUsers, BucketUsernames} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Ping reports whether the database is open and readable.
func Ping(db *bolt.DB) error {
	if db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(BucketTodos) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}
