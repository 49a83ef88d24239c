package memory

import (
	"context"
	"slices"
	"sync"

	"adda/internal/ports"
)

// BlobStore keeps blobs in a map, keyed by full name
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ ports.BlobStore = (*BlobStore)(nil)

// NewBlobStore creates an empty in-memory blob store
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

func (b *BlobStore) Put(ctx context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[name] = slices.Clone(data)
	return nil
}

// Get returns a stored blob
func (b *BlobStore) Get(name string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.blobs[name]
	return data, ok
}

// Names lists the stored blob names in lexical order
func (b *BlobStore) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.blobs))
	for name := range b.blobs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
