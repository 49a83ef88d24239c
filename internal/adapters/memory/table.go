// Package memory holds in-process adapters used for dry runs and tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"adda/internal/domain"
	"adda/internal/ports"
)

// Table is a ProjectTable kept in a map
type Table struct {
	mu   sync.RWMutex
	rows map[string]map[string]domain.ProjectEntity
}

// Ensure Table implements ports.ProjectTable
var _ ports.ProjectTable = (*Table)(nil)

// NewTable creates an empty in-memory table
func NewTable() *Table {
	return &Table{rows: make(map[string]map[string]domain.ProjectEntity)}
}

func (t *Table) Get(ctx context.Context, partitionKey, rowKey string) (*domain.ProjectEntity, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.rows[partitionKey][rowKey]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (t *Table) Add(ctx context.Context, entity *domain.ProjectEntity) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	partition, ok := t.rows[entity.PartitionKey]
	if !ok {
		partition = make(map[string]domain.ProjectEntity)
		t.rows[entity.PartitionKey] = partition
	}
	if _, exists := partition[entity.RowKey]; exists {
		return fmt.Errorf("%s/%s: %w", entity.PartitionKey, entity.RowKey, ports.ErrEntityExists)
	}
	partition[entity.RowKey] = *entity
	return nil
}

func (t *Table) Update(ctx context.Context, entity *domain.ProjectEntity) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	partition := t.rows[entity.PartitionKey]
	if _, exists := partition[entity.RowKey]; !exists {
		return fmt.Errorf("%s/%s: %w", entity.PartitionKey, entity.RowKey, ports.ErrEntityNotFound)
	}
	partition[entity.RowKey] = *entity
	return nil
}

func (t *Table) ListRowKeys(ctx context.Context, partitionKey string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.rows[partitionKey]))
	for k := range t.rows[partitionKey] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (t *Table) List(ctx context.Context, partitionKey string, filter domain.ProjectFilter) ([]domain.ProjectEntity, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []domain.ProjectEntity
	for _, e := range t.rows[partitionKey] {
		if filter.Matches(&e) {
			result = append(result, e)
		}
	}
	slices.SortFunc(result, func(a, b domain.ProjectEntity) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.RowKey, b.RowKey))
	})
	return result, nil
}

// Len returns the number of rows in a partition, deleted ones included
func (t *Table) Len(partitionKey string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows[partitionKey])
}

func (t *Table) Close() error {
	return nil
}
