package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adda/internal/domain"
	"adda/internal/ports"
)

// Synchronizer reconciles a project table partition with the project list
// reported by an external system
type Synchronizer struct {
	table  ports.ProjectTable
	logger *slog.Logger
	now    func() time.Time
}

// NewSynchronizer creates a Synchronizer writing to table
func NewSynchronizer(table ports.ProjectTable, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		table:  table,
		logger: logger.With(slog.String("component", "sync")),
		now:    time.Now,
	}
}

// UpsertBatch adds projects not yet in the partition and renames the ones
// whose name changed. Selected and Deleted are never touched. A failed write
// is logged and not counted; a failed lookup aborts the batch.
func (s *Synchronizer) UpsertBatch(ctx context.Context, batch []domain.ProjectInfo, partitionKey string) (added, updated int, err error) {
	added, updated, _, err = s.upsert(ctx, batch, partitionKey)
	return added, updated, err
}

func (s *Synchronizer) upsert(ctx context.Context, batch []domain.ProjectInfo, partitionKey string) (added, updated, failed int, err error) {
	for _, p := range batch {
		if err := ctx.Err(); err != nil {
			return added, updated, failed, err
		}

		existing, err := s.table.Get(ctx, partitionKey, p.ID)
		if err != nil {
			return added, updated, failed, fmt.Errorf("failed to look up project %s: %w", p.ID, err)
		}

		if existing == nil {
			entity := domain.NewProjectEntity(partitionKey, p)
			entity.UpdatedAt = s.now().UTC()
			if err := s.table.Add(ctx, entity); err != nil {
				s.logger.Warn("add failed", "partition", partitionKey, "id", p.ID, "name", p.Name, "error", err)
				failed++
				continue
			}
			added++
			continue
		}

		if existing.Name == p.Name {
			continue
		}

		existing.Name = p.Name
		existing.UpdatedAt = s.now().UTC()
		if err := s.table.Update(ctx, existing); err != nil {
			s.logger.Warn("update failed", "partition", partitionKey, "id", p.ID, "name", p.Name, "error", err)
			failed++
			continue
		}
		updated++
	}

	return added, updated, failed, nil
}

// SoftDeleteMissing flags every row of the partition whose key is absent
// from batch as deleted and unselected. Rows are never removed.
func (s *Synchronizer) SoftDeleteMissing(ctx context.Context, batch []domain.ProjectInfo, partitionKey string) (deleted int, err error) {
	deleted, _, err = s.softDelete(ctx, batch, partitionKey)
	return deleted, err
}

func (s *Synchronizer) softDelete(ctx context.Context, batch []domain.ProjectInfo, partitionKey string) (deleted, failed int, err error) {
	present := make(map[string]bool, len(batch))
	for _, p := range batch {
		present[p.ID] = true
	}

	rowKeys, err := s.table.ListRowKeys(ctx, partitionKey)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list partition %s: %w", partitionKey, err)
	}

	for _, rowKey := range rowKeys {
		if present[rowKey] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return deleted, failed, err
		}

		entity, err := s.table.Get(ctx, partitionKey, rowKey)
		if err != nil {
			return deleted, failed, fmt.Errorf("failed to look up project %s: %w", rowKey, err)
		}
		if entity == nil {
			continue
		}

		entity.MarkDeleted()
		entity.UpdatedAt = s.now().UTC()
		if err := s.table.Update(ctx, entity); err != nil {
			s.logger.Warn("soft delete failed", "partition", partitionKey, "id", rowKey, "error", err)
			failed++
			continue
		}
		deleted++
	}

	return deleted, failed, nil
}

// Sync runs UpsertBatch then SoftDeleteMissing. An empty batch is refused
// so a transient empty response cannot soft-delete a whole partition.
func (s *Synchronizer) Sync(ctx context.Context, batch []domain.ProjectInfo, partitionKey string) (*domain.SyncStats, error) {
	if err := ValidatePartitionKey(partitionKey); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("%s: %w", partitionKey, ErrEmptyBatch)
	}

	start := s.now()
	stats := &domain.SyncStats{
		PartitionKey: partitionKey,
		Fetched:      len(batch),
	}

	added, updated, upsertFailed, err := s.upsert(ctx, batch, partitionKey)
	stats.Added, stats.Updated, stats.Failed = added, updated, upsertFailed
	if err != nil {
		return stats, err
	}

	deleted, deleteFailed, err := s.softDelete(ctx, batch, partitionKey)
	stats.Deleted = deleted
	stats.Failed += deleteFailed
	if err != nil {
		return stats, err
	}

	stats.Duration = s.now().Sub(start)

	if journal, ok := s.table.(ports.SyncJournal); ok {
		if err := journal.RecordSync(ctx, partitionKey, s.now().UTC()); err != nil {
			s.logger.Warn("failed to record sync time", "partition", partitionKey, "error", err)
		}
	}

	s.logger.Info("partition synchronized",
		"partition", partitionKey,
		"fetched", stats.Fetched,
		"added", stats.Added,
		"updated", stats.Updated,
		"deleted", stats.Deleted,
		"failed", stats.Failed,
	)

	return stats, nil
}
