package ports

import "context"

// BlobStore receives exported documents. Names are slash separated and the
// first segment is the container, e.g. "bronze/tasks/tasks_20230301T120000Z.json".
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) error
}
