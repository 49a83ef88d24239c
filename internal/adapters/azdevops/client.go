// Package azdevops reads projects, classification trees and work items
// from an Azure DevOps organization.
package azdevops

import (
	"context"
	"fmt"
	"strconv"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"adda/internal/domain"
	"adda/internal/ports"
)

// coreAPI and workItemAPI are the parts of the SDK clients in use
type coreAPI interface {
	GetProjects(context.Context, core.GetProjectsArgs) (*core.GetProjectsResponseValue, error)
}

type workItemAPI interface {
	GetClassificationNode(context.Context, workitemtracking.GetClassificationNodeArgs) (*workitemtracking.WorkItemClassificationNode, error)
	QueryByWiql(context.Context, workitemtracking.QueryByWiqlArgs) (*workitemtracking.WorkItemQueryResult, error)
	GetWorkItems(context.Context, workitemtracking.GetWorkItemsArgs) (*[]workitemtracking.WorkItem, error)
}

// Client implements ports.DevOpsClient with a personal access token
type Client struct {
	projects  coreAPI
	workItems workItemAPI
}

var _ ports.DevOpsClient = (*Client)(nil)

// NewClient connects to the organization at organizationURL (e.g. https://dev.azure.com/acme)
func NewClient(ctx context.Context, organizationURL, personalAccessToken string) (*Client, error) {
	conn := azuredevops.NewPatConnection(organizationURL, personalAccessToken)

	coreClient, err := core.NewClient(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("azdevops: core client: %w", err)
	}
	witClient, err := workitemtracking.NewClient(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("azdevops: work item client: %w", err)
	}

	return &Client{projects: coreClient, workItems: witClient}, nil
}

// ListProjects returns every project, following continuation tokens
func (c *Client) ListProjects(ctx context.Context) ([]domain.ProjectInfo, error) {
	var projects []domain.ProjectInfo
	args := core.GetProjectsArgs{}

	for {
		resp, err := c.projects.GetProjects(ctx, args)
		if err != nil {
			return nil, fmt.Errorf("azdevops: list projects: %w", err)
		}
		if resp == nil {
			return projects, nil
		}

		for _, p := range resp.Value {
			if info, ok := convertProject(p); ok {
				projects = append(projects, info)
			}
		}

		if resp.ContinuationToken == "" {
			return projects, nil
		}
		token, err := strconv.Atoi(resp.ContinuationToken)
		if err != nil {
			return nil, fmt.Errorf("azdevops: invalid continuation token %q: %w", resp.ContinuationToken, err)
		}
		args.ContinuationToken = &token
	}
}

// GetClassificationNode fetches the root of the iteration or area tree, depth levels deep
func (c *Client) GetClassificationNode(ctx context.Context, projectID string, group domain.StructureGroup, depth int) (*domain.ClassificationNode, error) {
	structure := workitemtracking.TreeStructureGroupValues.Iterations
	if group == domain.StructureAreas {
		structure = workitemtracking.TreeStructureGroupValues.Areas
	}

	node, err := c.workItems.GetClassificationNode(ctx, workitemtracking.GetClassificationNodeArgs{
		Project:        &projectID,
		StructureGroup: &structure,
		Depth:          &depth,
	})
	if err != nil {
		return nil, fmt.Errorf("azdevops: get %s of %s: %w", group, projectID, err)
	}
	if node == nil {
		return nil, nil
	}
	return convertNode(*node), nil
}

// QueryWorkItemIDs runs a flat WIQL query
func (c *Client) QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error) {
	result, err := c.workItems.QueryByWiql(ctx, workitemtracking.QueryByWiqlArgs{
		Wiql: &workitemtracking.Wiql{Query: &wiql},
	})
	if err != nil {
		return nil, fmt.Errorf("azdevops: query: %w", err)
	}
	if result == nil || result.WorkItems == nil {
		return nil, nil
	}

	ids := make([]int, 0, len(*result.WorkItems))
	for _, ref := range *result.WorkItems {
		if ref.Id != nil {
			ids = append(ids, *ref.Id)
		}
	}
	return ids, nil
}

// GetWorkItems fetches up to domain.MaxWorkItemsPerCall items
func (c *Client) GetWorkItems(ctx context.Context, ids []int, fields []string) ([]domain.WorkItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > domain.MaxWorkItemsPerCall {
		return nil, fmt.Errorf("azdevops: %d ids requested, at most %d per call", len(ids), domain.MaxWorkItemsPerCall)
	}

	items, err := c.workItems.GetWorkItems(ctx, workitemtracking.GetWorkItemsArgs{
		Ids:    &ids,
		Fields: &fields,
	})
	if err != nil {
		return nil, fmt.Errorf("azdevops: get work items: %w", err)
	}
	if items == nil {
		return nil, nil
	}

	result := make([]domain.WorkItem, 0, len(*items))
	for _, item := range *items {
		result = append(result, convertWorkItem(item))
	}
	return result, nil
}

func convertProject(p core.TeamProjectReference) (domain.ProjectInfo, bool) {
	if p.Id == nil {
		return domain.ProjectInfo{}, false
	}
	return domain.ProjectInfo{ID: p.Id.String(), Name: deref(p.Name)}, true
}

func convertNode(n workitemtracking.WorkItemClassificationNode) *domain.ClassificationNode {
	node := &domain.ClassificationNode{
		Name: deref(n.Name),
		Path: deref(n.Path),
	}
	if n.Id != nil {
		node.ID = *n.Id
	}
	if n.Children != nil {
		node.Children = make([]*domain.ClassificationNode, 0, len(*n.Children))
		for _, child := range *n.Children {
			node.Children = append(node.Children, convertNode(child))
		}
	}
	return node
}

func convertWorkItem(w workitemtracking.WorkItem) domain.WorkItem {
	item := domain.WorkItem{
		URL:    deref(w.Url),
		Fields: map[string]any{},
	}
	if w.Id != nil {
		item.ID = *w.Id
	}
	if w.Rev != nil {
		item.Rev = *w.Rev
	}
	if w.Fields != nil {
		for k, v := range *w.Fields {
			item.Fields[k] = v
		}
	}
	return item
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
