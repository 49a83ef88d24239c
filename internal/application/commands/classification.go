package commands

import (
	"context"
	"fmt"

	"adda/internal/application"
	"adda/internal/domain"
	"adda/internal/ports"
)

// DefaultClassificationDepth is how many levels below the root are fetched
const DefaultClassificationDepth = 5

// ClassificationCommand answers questions about a project's iteration or area tree
type ClassificationCommand struct {
	client ports.DevOpsClient
	Group  domain.StructureGroup
	Depth  int
}

// NewClassificationCommand creates a new ClassificationCommand
func NewClassificationCommand(client ports.DevOpsClient, group domain.StructureGroup, depth int) *ClassificationCommand {
	if depth == 0 {
		depth = DefaultClassificationDepth
	}
	return &ClassificationCommand{
		client: client,
		Group:  group,
		Depth:  depth,
	}
}

// Validate checks the command parameters
func (c *ClassificationCommand) Validate(projectID string) error {
	if err := application.ValidateRequired("projectID", projectID); err != nil {
		return err
	}
	return application.ValidateDepth(c.Depth)
}

// Fetch returns the root of the project's classification tree
func (c *ClassificationCommand) Fetch(ctx context.Context, projectID string) (*domain.ClassificationNode, error) {
	if err := c.Validate(projectID); err != nil {
		return nil, err
	}

	root, err := c.client.GetClassificationNode(ctx, projectID, c.Group, c.Depth)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s of project %s: %w", c.Group, projectID, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%s of project %s: %w", c.Group, projectID, application.ErrNotFound)
	}
	return root, nil
}

// HasNode reports whether a node named name exists within the fetched depth
func (c *ClassificationCommand) HasNode(ctx context.Context, projectID, name string) (bool, error) {
	root, err := c.Fetch(ctx, projectID)
	if err != nil {
		return false, err
	}
	return domain.ClassificationHasNode(root, name), nil
}

// Paths returns the joined path of every node of the tree
func (c *ClassificationCommand) Paths(ctx context.Context, projectID string) ([]string, error) {
	root, err := c.Fetch(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return joinAll(domain.ClassificationPaths(root)), nil
}

// LeafPaths returns the joined path of every leaf of the tree
func (c *ClassificationCommand) LeafPaths(ctx context.Context, projectID string) ([]string, error) {
	root, err := c.Fetch(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return joinAll(domain.ClassificationLeafPaths(root)), nil
}

// PathsEndingWith returns the joined paths whose last node is named name
func (c *ClassificationCommand) PathsEndingWith(ctx context.Context, projectID, name string) ([]string, error) {
	if err := application.ValidateRequired("nodeName", name); err != nil {
		return nil, err
	}
	root, err := c.Fetch(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return joinAll(domain.ClassificationPathsEndingWith(root, name)), nil
}

// Tree renders the classification tree as indented text
func (c *ClassificationCommand) Tree(ctx context.Context, projectID string) (string, error) {
	root, err := c.Fetch(ctx, projectID)
	if err != nil {
		return "", err
	}
	return domain.RenderTree([]*domain.ClassificationNode{root}, domain.ClassificationChildren, domain.ClassificationName), nil
}

func joinAll(paths [][]string) []string {
	joined := make([]string, len(paths))
	for i, p := range paths {
		joined[i] = domain.JoinClassificationPath(p)
	}
	return joined
}
