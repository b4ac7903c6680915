package manifest

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// BboltBackend implements Backend on a bbolt file
type BboltBackend struct {
	db *bolt.DB
}

// NewBboltBackend opens (or creates) the bbolt file at path
func NewBboltBackend(path string) (*BboltBackend, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	return &BboltBackend{db: db}, nil
}

// CreateBucket creates a bucket if it does not exist yet
func (b *BboltBackend) CreateBucket(name []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	})
}

// Put stores a key-value pair in a bucket
func (b *BboltBackend) Put(bucket, key, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		if bkt == nil {
			return fmt.Errorf("bucket not found: %s", bucket)
		}
		return bkt.Put(key, value)
	})
}

// Get retrieves a value from a bucket
func (b *BboltBackend) Get(bucket, key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		if bkt == nil {
			return fmt.Errorf("bucket not found: %s", bucket)
		}
		if v := bkt.Get(key); v != nil {
			// Only valid for the life of the transaction
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

// ForEach iterates over a bucket in key order
func (b *BboltBackend) ForEach(bucket []byte, fn func(k, v []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		if bkt == nil {
			return fmt.Errorf("bucket not found: %s", bucket)
		}
		return bkt.ForEach(fn)
	})
}

// Close closes the database file
func (b *BboltBackend) Close() error {
	return b.db.Close()
}
