// Package memory stores blob content in-memory for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

// BlobStore keeps objects in a map, keyed like a real bucket.
type BlobStore struct {
	bucket string
	mu     sync.RWMutex
	data   map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore(bucket string) *BlobStore {
	return &BlobStore{
		bucket: bucket,
		data:   make(map[string][]byte),
	}
}

// Put persists the content and returns the bucket/key path.
func (s *BlobStore) Put(_ context.Context, key string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return s.bucket + "/" + key, nil
}

// Get returns the stored bytes, wrapping harvest.ErrObjectNotFound for
// missing keys.
func (s *BlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, harvest.ErrObjectNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Bucket returns the bucket name.
func (s *BlobStore) Bucket() string {
	return s.bucket
}

// Delete removes an object. Test helper.
func (s *BlobStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Len returns the number of stored objects. Test helper.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
