package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"adda/internal/application"
	"adda/internal/application/commands"
	"adda/internal/domain"
	"adda/internal/ports"
)

// Backend builds the commands that need an Azure DevOps connection.
// bootstrap.App implements it.
type Backend interface {
	ClassificationCommand(ctx context.Context, group domain.StructureGroup, depth int) (*commands.ClassificationCommand, error)
	SyncCommand(ctx context.Context, source domain.ProjectSource) (*commands.SyncProjectsCommand, error)
	ExportCommand(ctx context.Context) (*commands.ExportWorkItemsCommand, error)
}

// RegisterReadTools adds the read-only project tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, table ports.ProjectTable, backend Backend) {
	s.AddTool(listProjectsTool(), listProjectsHandler(table))
	s.AddTool(treeTool(), treeHandler(backend))
	s.AddTool(iterationPathsTool(), iterationPathsHandler(backend))
}

// --- list_projects ---

func listProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List the synchronized projects of a source. Soft-deleted projects are hidden unless include_deleted is set."),
		mcp.WithString("source",
			mcp.Description("Project source: devops (default) or jira"),
			mcp.Enum("devops", "jira"),
		),
		mcp.WithString("query",
			mcp.Description("Fuzzy filter on the project name (at least 2 characters)"),
		),
		mcp.WithBoolean("selected_only",
			mcp.Description("Only list projects selected for export"),
		),
		mcp.WithBoolean("include_deleted",
			mcp.Description("Also list soft-deleted projects"),
		),
	)
}

func listProjectsHandler(table ports.ProjectTable) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := application.ParseProjectSource(req.GetString("source", ""))
		if err != nil {
			return toolError(err)
		}
		filter := domain.ProjectFilter{
			SelectedOnly:   req.GetBool("selected_only", false),
			IncludeDeleted: req.GetBool("include_deleted", false),
		}

		if query := req.GetString("query", ""); query != "" {
			search := commands.NewSearchProjectsCommand(table, source, query)
			search.IncludeDeleted = filter.IncludeDeleted
			matches, err := search.Execute(ctx)
			if err != nil {
				return toolError(err)
			}
			rows := make([]domain.ProjectEntity, 0, len(matches))
			for _, m := range matches {
				if filter.Matches(&m.ProjectEntity) {
					rows = append(rows, m.ProjectEntity)
				}
			}
			return formatEntities(rows, formatProject)
		}

		rows, err := commands.NewListProjectsCommand(table, source, filter).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(rows, formatProject)
	}
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the iteration or area tree of an Azure DevOps project."),
		mcp.WithString("project_id",
			mcp.Description("Project id or name"),
			mcp.Required(),
		),
		mcp.WithString("group",
			mcp.Description("iterations (default) or areas"),
			mcp.Enum("iterations", "areas"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Levels below the root to fetch (default from configuration)"),
		),
	)
}

func treeHandler(backend Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd, projectID, err := classificationCommand(ctx, backend, req)
		if err != nil {
			return toolError(err)
		}
		tree, err := cmd.Tree(ctx, projectID)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(tree), nil
	}
}

// --- iteration_paths ---

func iterationPathsTool() mcp.Tool {
	return mcp.NewTool("iteration_paths",
		mcp.WithDescription("List the classification paths of a project, one per node, joined with backslashes as WIQL expects them."),
		mcp.WithString("project_id",
			mcp.Description("Project id or name"),
			mcp.Required(),
		),
		mcp.WithString("group",
			mcp.Description("iterations (default) or areas"),
			mcp.Enum("iterations", "areas"),
		),
		mcp.WithString("ending_with",
			mcp.Description("Only paths whose last node has this exact name (e.g. 2023)"),
		),
		mcp.WithBoolean("leaves_only",
			mcp.Description("Only paths that end at a leaf"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Levels below the root to fetch (default from configuration)"),
		),
	)
}

func iterationPathsHandler(backend Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd, projectID, err := classificationCommand(ctx, backend, req)
		if err != nil {
			return toolError(err)
		}

		var paths []string
		switch endingWith := req.GetString("ending_with", ""); {
		case endingWith != "":
			paths, err = cmd.PathsEndingWith(ctx, projectID, endingWith)
		case req.GetBool("leaves_only", false):
			paths, err = cmd.LeafPaths(ctx, projectID)
		default:
			paths, err = cmd.Paths(ctx, projectID)
		}
		if err != nil {
			return toolError(err)
		}

		if len(paths) == 0 {
			return mcp.NewToolResultText("No results."), nil
		}
		return mcp.NewToolResultText(strings.Join(paths, "\n") + "\n"), nil
	}
}

// --- helpers ---

func classificationCommand(ctx context.Context, backend Backend, req mcp.CallToolRequest) (*commands.ClassificationCommand, string, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return nil, "", fmt.Errorf("project_id is required")
	}
	group, err := domain.ParseStructureGroup(req.GetString("group", ""))
	if err != nil {
		return nil, "", err
	}
	cmd, err := backend.ClassificationCommand(ctx, group, req.GetInt("depth", 0))
	if err != nil {
		return nil, "", err
	}
	return cmd, projectID, nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatProject(p domain.ProjectEntity) string {
	var flags []string
	if p.Selected {
		flags = append(flags, "selected")
	}
	if p.Deleted {
		flags = append(flags, "deleted")
	}
	if len(flags) == 0 {
		return fmt.Sprintf("%s  %s", p.RowKey, p.Name)
	}
	return fmt.Sprintf("%s  %s  [%s]", p.RowKey, p.Name, strings.Join(flags, ", "))
}
