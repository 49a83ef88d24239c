package ports

import (
	"context"

	"adda/internal/domain"
)

// DevOpsClient is the subset of the Azure DevOps REST API the pipeline uses
type DevOpsClient interface {
	// ListProjects returns every project of the organization, across pages
	ListProjects(ctx context.Context) ([]domain.ProjectInfo, error)

	// GetClassificationNode fetches the iteration or area tree of a project, depth levels deep
	GetClassificationNode(ctx context.Context, projectID string, group domain.StructureGroup, depth int) (*domain.ClassificationNode, error)

	// QueryWorkItemIDs runs a WIQL query and returns the matching ids
	QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error)

	// GetWorkItems fetches at most domain.MaxWorkItemsPerCall items by id
	GetWorkItems(ctx context.Context, ids []int, fields []string) ([]domain.WorkItem, error)
}

// JiraClient lists the projects of a Jira site
type JiraClient interface {
	ListProjects(ctx context.Context) ([]domain.ProjectInfo, error)
}
