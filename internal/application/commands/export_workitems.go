package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"adda/internal/application"
	"adda/internal/domain"
	"adda/internal/ports"
)

// Export defaults
const (
	DefaultIterationNode = "2023"
	DefaultConcurrency   = 4
)

// ProjectExport describes what was resolved for one selected project
type ProjectExport struct {
	ProjectID string
	Name      string
	Skipped   bool // Iteration node not found within the fetched depth
	Paths     []string
	TaskIDs   []int
}

// LevelExport describes one written blob
type LevelExport struct {
	Kind  domain.ExportKind
	Blob  string
	Count int
}

// ExportWorkItemsResult contains the result of an export run
type ExportWorkItemsResult struct {
	Projects []ProjectExport
	Levels   []LevelExport
	Message  string
}

// ExportWorkItemsCommand exports the done Tasks of every selected DevOps
// project under an iteration node, and their PBIs, Features and Epics
type ExportWorkItemsCommand struct {
	table         ports.ProjectTable
	client        ports.DevOpsClient
	blobs         ports.BlobStore
	logger        *slog.Logger
	now           func() time.Time
	IterationNode string
	Depth         int
	BatchSize     int
	Concurrency   int
}

// NewExportWorkItemsCommand creates a new ExportWorkItemsCommand with default settings
func NewExportWorkItemsCommand(table ports.ProjectTable, client ports.DevOpsClient, blobs ports.BlobStore, logger *slog.Logger) *ExportWorkItemsCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportWorkItemsCommand{
		table:         table,
		client:        client,
		blobs:         blobs,
		logger:        logger.With(slog.String("component", "export")),
		now:           time.Now,
		IterationNode: DefaultIterationNode,
		Depth:         DefaultClassificationDepth,
		BatchSize:     domain.MaxWorkItemsPerCall,
		Concurrency:   DefaultConcurrency,
	}
}

// Validate checks the export settings
func (c *ExportWorkItemsCommand) Validate() error {
	if err := application.ValidateRequired("iterationNode", c.IterationNode); err != nil {
		return err
	}
	if err := application.ValidateDepth(c.Depth); err != nil {
		return err
	}
	if c.BatchSize < 1 || c.BatchSize > domain.MaxWorkItemsPerCall {
		return &application.ValidationError{
			Field:   "batchSize",
			Message: fmt.Sprintf("batch size must be between 1 and %d, got: %d", domain.MaxWorkItemsPerCall, c.BatchSize),
		}
	}
	return nil
}

// Execute runs the export
func (c *ExportWorkItemsCommand) Execute(ctx context.Context) (*ExportWorkItemsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	projects, err := c.table.List(ctx, domain.DevOpsProjectPartitionKey, domain.ProjectFilter{SelectedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list selected projects: %w", err)
	}
	if len(projects) == 0 {
		c.logger.Info("no project selected, nothing to export")
		return &ExportWorkItemsResult{Message: application.ErrNoSelectedProjects.Error()}, nil
	}

	timestamp := c.now().UTC().Format(domain.ExportTimestampLayout)

	resolved, err := c.resolveTasks(ctx, projects)
	if err != nil {
		return nil, err
	}

	var ids []int
	seen := make(map[int]bool)
	for _, p := range resolved {
		for _, id := range p.TaskIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	result := &ExportWorkItemsResult{Projects: resolved}

	for _, kind := range domain.ExportLevels {
		items, err := c.fetchDetails(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", kind, err)
		}

		blob, err := c.write(ctx, kind, timestamp, items)
		if err != nil {
			return nil, err
		}
		result.Levels = append(result.Levels, LevelExport{Kind: kind, Blob: blob, Count: len(items)})
		c.logger.Info("level exported", "kind", kind, "count", len(items), "blob", blob)

		ids = domain.ParentIDs(items)
	}

	result.Message = exportMessage(result)
	return result, nil
}

// resolveTasks runs the per-project tree lookups and WIQL queries
// concurrently. Results keep the order of projects.
func (c *ExportWorkItemsCommand) resolveTasks(ctx context.Context, projects []domain.ProjectEntity) ([]ProjectExport, error) {
	results := make([]ProjectExport, len(projects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Concurrency, 1))

	for i, p := range projects {
		g.Go(func() error {
			export, err := c.resolveProject(gctx, p)
			if err != nil {
				return err
			}
			results[i] = export
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *ExportWorkItemsCommand) resolveProject(ctx context.Context, p domain.ProjectEntity) (ProjectExport, error) {
	export := ProjectExport{ProjectID: p.RowKey, Name: p.Name}

	root, err := c.client.GetClassificationNode(ctx, p.RowKey, domain.StructureIterations, c.Depth)
	if err != nil {
		return export, &application.ProjectError{ProjectID: p.RowKey, Op: "get iterations", Err: err}
	}

	if !domain.ClassificationHasNode(root, c.IterationNode) {
		c.logger.Info("iteration node not found, skipping project", "project", p.Name, "node", c.IterationNode)
		export.Skipped = true
		return export, nil
	}

	seen := make(map[int]bool)
	for _, path := range domain.ClassificationPathsEndingWith(root, c.IterationNode) {
		iterationPath := domain.JoinClassificationPath(path)
		export.Paths = append(export.Paths, iterationPath)

		ids, err := c.client.QueryWorkItemIDs(ctx, domain.DoneTasksQuery(p.Name, iterationPath))
		if err != nil {
			return export, &application.ProjectError{
				ProjectID: p.RowKey,
				Op:        fmt.Sprintf("query done tasks under %s", iterationPath),
				Err:       err,
			}
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				export.TaskIDs = append(export.TaskIDs, id)
			}
		}
	}

	c.logger.Debug("project resolved", "project", p.Name, "paths", len(export.Paths), "tasks", len(export.TaskIDs))
	return export, nil
}

// fetchDetails reads items in windows of BatchSize, preserving id order
func (c *ExportWorkItemsCommand) fetchDetails(ctx context.Context, ids []int) ([]domain.WorkItem, error) {
	items := make([]domain.WorkItem, 0, len(ids))
	for window := range domain.Batch(ids, c.BatchSize) {
		batch, err := c.client.GetWorkItems(ctx, slices.Clone(window), domain.WorkItemFields)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

func (c *ExportWorkItemsCommand) write(ctx context.Context, kind domain.ExportKind, timestamp string, items []domain.WorkItem) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	name := domain.ExportBlobName(kind, timestamp)
	if err := c.blobs.Put(ctx, name, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return name, nil
}

func exportMessage(r *ExportWorkItemsResult) string {
	exported := 0
	for _, p := range r.Projects {
		if !p.Skipped {
			exported++
		}
	}
	msg := fmt.Sprintf("Exported %s", domain.Pluralize(exported, "project", "projects"))
	for _, l := range r.Levels {
		msg += fmt.Sprintf(", %d %s", l.Count, l.Kind)
	}
	return msg
}
