package manifest

import (
	"fmt"
	"sync"
)

// MemoryBackend implements Backend with maps. Nothing is persisted; pass it
// to New for a manifest that lives only as long as the process.
type MemoryBackend struct {
	buckets map[string]map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		buckets: make(map[string]map[string][]byte),
	}
}

// CreateBucket creates a bucket if it does not exist yet
func (m *MemoryBackend) CreateBucket(name []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.buckets[string(name)]; !exists {
		m.buckets[string(name)] = make(map[string][]byte)
	}
	return nil
}

// Put stores a copy of value
func (m *MemoryBackend) Put(bucket, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bkt, exists := m.buckets[string(bucket)]
	if !exists {
		return fmt.Errorf("bucket not found: %s", bucket)
	}
	bkt[string(key)] = append([]byte(nil), value...)
	return nil
}

// Get returns a copy of the stored value
func (m *MemoryBackend) Get(bucket, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bkt, exists := m.buckets[string(bucket)]
	if !exists {
		return nil, fmt.Errorf("bucket not found: %s", bucket)
	}
	value, exists := bkt[string(key)]
	if !exists {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// ForEach iterates over a bucket in no particular order
func (m *MemoryBackend) ForEach(bucket []byte, fn func(k, v []byte) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bkt, exists := m.buckets[string(bucket)]
	if !exists {
		return fmt.Errorf("bucket not found: %s", bucket)
	}
	for k, v := range bkt {
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for memory backend
func (m *MemoryBackend) Close() error {
	return nil
}
