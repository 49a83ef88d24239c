package commands

import (
	"context"
	"fmt"
	"log/slog"

	"adda/internal/application"
	"adda/internal/domain"
)

// ProjectLister is any external system able to report its projects
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]domain.ProjectInfo, error)
}

// SyncProjectsResult contains the result of a project synchronization
type SyncProjectsResult struct {
	Stats   *domain.SyncStats
	Message string
}

// SyncProjectsCommand pulls the project list of one external system and
// reconciles it into its table partition
type SyncProjectsCommand struct {
	source ProjectLister
	sync   *application.Synchronizer
	logger *slog.Logger
	Source domain.ProjectSource
}

// NewSyncDevOpsProjectsCommand syncs Azure DevOps projects into the AzureDevOpsProject partition
func NewSyncDevOpsProjectsCommand(client ProjectLister, sync *application.Synchronizer, logger *slog.Logger) *SyncProjectsCommand {
	return newSyncProjectsCommand(client, sync, logger, domain.SourceDevOps)
}

// NewSyncJiraProjectsCommand syncs Jira projects into the JiraProject partition
func NewSyncJiraProjectsCommand(client ProjectLister, sync *application.Synchronizer, logger *slog.Logger) *SyncProjectsCommand {
	return newSyncProjectsCommand(client, sync, logger, domain.SourceJira)
}

func newSyncProjectsCommand(client ProjectLister, sync *application.Synchronizer, logger *slog.Logger, source domain.ProjectSource) *SyncProjectsCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncProjectsCommand{
		source: client,
		sync:   sync,
		logger: logger.With(slog.String("component", "sync-"+source.String())),
		Source: source,
	}
}

// Execute runs the sync command
func (c *SyncProjectsCommand) Execute(ctx context.Context) (*SyncProjectsResult, error) {
	partitionKey := c.Source.PartitionKey()
	if partitionKey == "" {
		return nil, fmt.Errorf("%w: %s", application.ErrInvalidSource, c.Source)
	}

	projects, err := c.source.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s projects: %w", c.Source, err)
	}
	c.logger.Info("projects fetched", "count", len(projects))

	stats, err := c.sync.Sync(ctx, projects, partitionKey)
	if err != nil {
		return &SyncProjectsResult{Stats: stats}, fmt.Errorf("failed to sync %s projects: %w", c.Source, err)
	}

	msg := SyncMessage(stats)
	c.logger.Info(msg)

	return &SyncProjectsResult{
		Stats:   stats,
		Message: msg,
	}, nil
}

// SyncMessage renders stats as "2 projects were added, 1 project was updated, 0 projects were deleted"
func SyncMessage(stats *domain.SyncStats) string {
	msg := fmt.Sprintf("%s, %s, %s",
		countVerb(stats.Added, "added"),
		countVerb(stats.Updated, "updated"),
		countVerb(stats.Deleted, "deleted"),
	)
	if stats.Failed > 0 {
		msg += fmt.Sprintf(" (%s failed)", domain.Pluralize(stats.Failed, "write", "writes"))
	}
	return msg
}

func countVerb(n int, verb string) string {
	if n == 1 {
		return fmt.Sprintf("%s was %s", domain.Pluralize(n, "project", "projects"), verb)
	}
	return fmt.Sprintf("%s were %s", domain.Pluralize(n, "project", "projects"), verb)
}
