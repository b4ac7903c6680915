package manifest

import (
	"bytes"
	"path/filepath"
	"testing"
)

// backendTestSuite runs the same checks against any Backend implementation
func backendTestSuite(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Run("CreateBucketIdempotent", func(t *testing.T) {
		backend := newBackend(t)
		defer backend.Close()

		if err := backend.CreateBucket([]byte("test")); err != nil {
			t.Fatalf("CreateBucket failed: %v", err)
		}
		if err := backend.CreateBucket([]byte("test")); err != nil {
			t.Errorf("CreateBucket should be idempotent: %v", err)
		}
	})

	t.Run("PutAndGet", func(t *testing.T) {
		backend := newBackend(t)
		defer backend.Close()

		backend.CreateBucket([]byte("test"))
		if err := backend.Put([]byte("test"), []byte("key1"), []byte("value1")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, err := backend.Get([]byte("test"), []byte("key1"))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, []byte("value1")) {
			t.Errorf("Get returned %s, want value1", got)
		}

		got, err = backend.Get([]byte("test"), []byte("nonexistent"))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != nil {
			t.Errorf("Get should return nil for non-existent key, got %s", got)
		}
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		backend := newBackend(t)
		defer backend.Close()

		backend.CreateBucket([]byte("test"))
		backend.Put([]byte("test"), []byte("k"), []byte("old"))
		backend.Put([]byte("test"), []byte("k"), []byte("new"))

		got, _ := backend.Get([]byte("test"), []byte("k"))
		if !bytes.Equal(got, []byte("new")) {
			t.Errorf("Get returned %s, want new", got)
		}
	})

	t.Run("MissingBucket", func(t *testing.T) {
		backend := newBackend(t)
		defer backend.Close()

		if err := backend.Put([]byte("nope"), []byte("k"), []byte("v")); err == nil {
			t.Error("Put into a missing bucket should fail")
		}
		if _, err := backend.Get([]byte("nope"), []byte("k")); err == nil {
			t.Error("Get from a missing bucket should fail")
		}
	})

	t.Run("ForEach", func(t *testing.T) {
		backend := newBackend(t)
		defer backend.Close()

		backend.CreateBucket([]byte("test"))
		expected := map[string]string{"key1": "value1", "key2": "value2", "key3": "value3"}
		for k, v := range expected {
			backend.Put([]byte("test"), []byte(k), []byte(v))
		}

		found := make(map[string]string)
		err := backend.ForEach([]byte("test"), func(k, v []byte) error {
			found[string(k)] = string(v)
			return nil
		})
		if err != nil {
			t.Fatalf("ForEach failed: %v", err)
		}
		if len(found) != len(expected) {
			t.Errorf("ForEach found %d items, want %d", len(found), len(expected))
		}
		for k, v := range expected {
			if found[k] != v {
				t.Errorf("ForEach: key %s = %s, want %s", k, found[k], v)
			}
		}
	})
}

func TestBboltBackend(t *testing.T) {
	backendTestSuite(t, func(t *testing.T) Backend {
		backend, err := NewBboltBackend(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("failed to create backend: %v", err)
		}
		return backend
	})
}

func TestMemoryBackend(t *testing.T) {
	backendTestSuite(t, func(*testing.T) Backend {
		return NewMemoryBackend()
	})
}
