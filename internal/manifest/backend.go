package manifest

// Backend is the key-value store a manifest is kept in. Keys live in named
// buckets; values are raw bytes and the manifest decides their encoding.
type Backend interface {
	CreateBucket(name []byte) error
	Put(bucket, key, value []byte) error
	// Get returns nil with no error for a missing key.
	Get(bucket, key []byte) ([]byte, error)
	ForEach(bucket []byte, fn func(k, v []byte) error) error
	Close() error
}
