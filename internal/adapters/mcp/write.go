package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"adda/internal/application"
	"adda/internal/application/commands"
	"adda/internal/ports"
)

// RegisterWriteTools adds the tools that change the project table or write blobs.
func RegisterWriteTools(s *server.MCPServer, table ports.ProjectTable, backend Backend) {
	s.AddTool(selectProjectTool(), selectProjectHandler(table))
	s.AddTool(syncProjectsTool(), syncProjectsHandler(backend))
	s.AddTool(exportWorkItemsTool(), exportWorkItemsHandler(backend))
}

// --- select_project ---

func selectProjectTool() mcp.Tool {
	return mcp.NewTool("select_project",
		mcp.WithDescription("Select a project for export, or unselect it. Soft-deleted projects cannot be selected."),
		mcp.WithString("project_id",
			mcp.Description("Project id (the table row key)"),
			mcp.Required(),
		),
		mcp.WithString("source",
			mcp.Description("Project source: devops (default) or jira"),
			mcp.Enum("devops", "jira"),
		),
		mcp.WithBoolean("selected",
			mcp.Description("false to unselect (default true)"),
			mcp.DefaultBool(true),
		),
	)
}

func selectProjectHandler(table ports.ProjectTable) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := application.ParseProjectSource(req.GetString("source", ""))
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewSetProjectSelectionCommand(table, source, req.GetString("project_id", ""), req.GetBool("selected", true))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- sync_projects ---

func syncProjectsTool() mcp.Tool {
	return mcp.NewTool("sync_projects",
		mcp.WithDescription("Fetch the project list of a source and reconcile it into the project table (add, rename, soft delete)."),
		mcp.WithString("source",
			mcp.Description("Project source: devops (default) or jira"),
			mcp.Enum("devops", "jira"),
		),
	)
}

func syncProjectsHandler(backend Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := application.ParseProjectSource(req.GetString("source", ""))
		if err != nil {
			return toolError(err)
		}

		cmd, err := backend.SyncCommand(ctx, source)
		if err != nil {
			return toolError(err)
		}
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- export_work_items ---

func exportWorkItemsTool() mcp.Tool {
	return mcp.NewTool("export_work_items",
		mcp.WithDescription("Export the done tasks of the selected projects, with their PBIs, features and epics, as JSON blobs."),
		mcp.WithString("iteration_node",
			mcp.Description("Name of the iteration node whose paths are exported (default from configuration)"),
		),
	)
}

func exportWorkItemsHandler(backend Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd, err := backend.ExportCommand(ctx)
		if err != nil {
			return toolError(err)
		}
		if node := req.GetString("iteration_node", ""); node != "" {
			cmd.IterationNode = node
		}

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, l := range result.Levels {
			fmt.Fprintf(&sb, "%s  %d  %s\n", l.Kind, l.Count, l.Blob)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
