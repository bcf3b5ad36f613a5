package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// BoltStore persists records in a bbolt database. bbolt serializes writers
// and holds an exclusive file lock, so one process owns the database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Update runs fn in one bbolt read-write transaction.
func (s *BoltStore) Update(fn func(*Txn) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&Txn{kv: boltKV{tx: tx}})
	})
}

// View runs fn in one bbolt read-only transaction.
func (s *BoltStore) View(fn func(*Txn) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&Txn{kv: boltKV{tx: tx}})
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *BoltStore) Path() string { return s.db.Path() }

type boltKV struct {
	tx *bbolt.Tx
}

func (b boltKV) get(bucket, key []byte) []byte {
	return b.tx.Bucket(bucket).Get(key)
}

func (b boltKV) put(bucket, key, value []byte) error {
	if !b.tx.Writable() {
		return ErrReadOnly
	}
	if err := b.tx.Bucket(bucket).Put(key, value); err != nil {
		return fmt.Errorf("boltstore: put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (b boltKV) delete(bucket, key []byte) error {
	if !b.tx.Writable() {
		return ErrReadOnly
	}
	if err := b.tx.Bucket(bucket).Delete(key); err != nil {
		return fmt.Errorf("boltstore: delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (b boltKV) forEach(bucket []byte, fn func(key, value []byte) error) error {
	return b.tx.Bucket(bucket).ForEach(fn)
}
