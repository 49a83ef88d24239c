package ports

import (
	"context"
	"errors"
	"time"

	"adda/internal/domain"
)

// Table write errors shared by every backend
var (
	ErrEntityExists   = errors.New("entity already exists")
	ErrEntityNotFound = errors.New("entity not found")
)

// ProjectTable is the key-value table holding project rows, keyed by
// (partition key, row key). Rows are never physically removed.
type ProjectTable interface {
	// Get returns nil, nil when no row exists for the key
	Get(ctx context.Context, partitionKey, rowKey string) (*domain.ProjectEntity, error)
	// Add fails with ErrEntityExists when the key is taken
	Add(ctx context.Context, entity *domain.ProjectEntity) error
	// Update replaces the whole row and fails with ErrEntityNotFound when it is missing
	Update(ctx context.Context, entity *domain.ProjectEntity) error

	// ListRowKeys returns every row key of the partition, soft-deleted rows included
	ListRowKeys(ctx context.Context, partitionKey string) ([]string, error)

	// List returns the rows of the partition matching filter, ordered by name
	List(ctx context.Context, partitionKey string, filter domain.ProjectFilter) ([]domain.ProjectEntity, error)

	Close() error
}

// SyncJournal is implemented by tables that remember when each partition
// was last synchronized
type SyncJournal interface {
	RecordSync(ctx context.Context, partitionKey string, at time.Time) error
	LastSync(ctx context.Context, partitionKey string) (time.Time, error)
}
