package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adda/internal/application"
	"adda/internal/domain"
	"adda/internal/ports"
)

// ListProjectsCommand lists the projects of one source
type ListProjectsCommand struct {
	table  ports.ProjectTable
	Source domain.ProjectSource
	Filter domain.ProjectFilter
}

// NewListProjectsCommand creates a new ListProjectsCommand
func NewListProjectsCommand(table ports.ProjectTable, source domain.ProjectSource, filter domain.ProjectFilter) *ListProjectsCommand {
	return &ListProjectsCommand{
		table:  table,
		Source: source,
		Filter: filter,
	}
}

// Execute runs the list projects command
func (c *ListProjectsCommand) Execute(ctx context.Context) ([]domain.ProjectEntity, error) {
	partitionKey := c.Source.PartitionKey()
	if partitionKey == "" {
		return nil, fmt.Errorf("%w: %s", application.ErrInvalidSource, c.Source)
	}
	return c.table.List(ctx, partitionKey, c.Filter)
}

// SetProjectSelectionResult contains the result of selecting or unselecting a project
type SetProjectSelectionResult struct {
	Project *domain.ProjectEntity
	Changed bool
	Message string
}

// SetProjectSelectionCommand marks a project as selected (or not) for export
type SetProjectSelectionCommand struct {
	table     ports.ProjectTable
	Source    domain.ProjectSource
	ProjectID string
	Selected  bool
}

// NewSetProjectSelectionCommand creates a new SetProjectSelectionCommand
func NewSetProjectSelectionCommand(table ports.ProjectTable, source domain.ProjectSource, projectID string, selected bool) *SetProjectSelectionCommand {
	return &SetProjectSelectionCommand{
		table:     table,
		Source:    source,
		ProjectID: projectID,
		Selected:  selected,
	}
}

// Validate checks if the selection change is valid
func (c *SetProjectSelectionCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	if c.Source.PartitionKey() == "" {
		return &application.ValidationError{
			Field:   "source",
			Message: fmt.Sprintf("unknown source: %s", c.Source),
		}
	}
	return nil
}

// Execute runs the selection command
func (c *SetProjectSelectionCommand) Execute(ctx context.Context) (*SetProjectSelectionResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	entity, err := c.table.Get(ctx, c.Source.PartitionKey(), c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if entity == nil {
		return nil, fmt.Errorf("project %s: %w", c.ProjectID, application.ErrNotFound)
	}
	if c.Selected && entity.Deleted {
		return nil, fmt.Errorf("project %s (%s): %w", entity.Name, c.ProjectID, application.ErrProjectDeleted)
	}

	verb := "Selected"
	if !c.Selected {
		verb = "Unselected"
	}

	if entity.Selected == c.Selected {
		return &SetProjectSelectionResult{
			Project: entity,
			Changed: false,
			Message: fmt.Sprintf("%s already %s", entity.Name, strings.ToLower(verb)),
		}, nil
	}

	entity.Selected = c.Selected
	entity.UpdatedAt = time.Now().UTC()
	if err := c.table.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &SetProjectSelectionResult{
		Project: entity,
		Changed: true,
		Message: fmt.Sprintf("%s: %s", verb, entity.Name),
	}, nil
}
