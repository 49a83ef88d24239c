package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"adda/internal/adapters/memory"
	"adda/internal/application"
	"adda/internal/application/commands"
	"adda/internal/domain"
)

type fakeDevOps struct {
	projects []domain.ProjectInfo
	root     *domain.ClassificationNode
}

func (f *fakeDevOps) ListProjects(ctx context.Context) ([]domain.ProjectInfo, error) {
	return f.projects, nil
}

func (f *fakeDevOps) GetClassificationNode(ctx context.Context, projectID string, group domain.StructureGroup, depth int) (*domain.ClassificationNode, error) {
	return f.root, nil
}

func (f *fakeDevOps) QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error) {
	return nil, nil
}

func (f *fakeDevOps) GetWorkItems(ctx context.Context, ids []int, fields []string) ([]domain.WorkItem, error) {
	return nil, nil
}

type fakeBackend struct {
	table  *memory.Table
	blobs  *memory.BlobStore
	devops *fakeDevOps
	err    error
}

func (b *fakeBackend) ClassificationCommand(ctx context.Context, group domain.StructureGroup, depth int) (*commands.ClassificationCommand, error) {
	if b.err != nil {
		return nil, b.err
	}
	return commands.NewClassificationCommand(b.devops, group, depth), nil
}

func (b *fakeBackend) SyncCommand(ctx context.Context, source domain.ProjectSource) (*commands.SyncProjectsCommand, error) {
	if b.err != nil {
		return nil, b.err
	}
	return commands.NewSyncDevOpsProjectsCommand(b.devops, application.NewSynchronizer(b.table, nil), nil), nil
}

func (b *fakeBackend) ExportCommand(ctx context.Context) (*commands.ExportWorkItemsCommand, error) {
	if b.err != nil {
		return nil, b.err
	}
	return commands.NewExportWorkItemsCommand(b.table, b.devops, b.blobs, nil), nil
}

func newBackend() *fakeBackend {
	// Contoso -> Iteration -> [2023 -> [Sprint 1], 2024]
	root := &domain.ClassificationNode{Name: "Contoso", Children: []*domain.ClassificationNode{
		{Name: "Iteration", Children: []*domain.ClassificationNode{
			{Name: "2023", Children: []*domain.ClassificationNode{{Name: "Sprint 1"}}},
			{Name: "2024"},
		}},
	}}
	return &fakeBackend{
		table: memory.NewTable(),
		blobs: memory.NewBlobStore(),
		devops: &fakeDevOps{
			projects: []domain.ProjectInfo{{ID: "p1", Name: "Contoso"}, {ID: "p2", Name: "Fabrikam"}},
			root:     root,
		},
	}
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text, result.IsError
}

func TestSyncThenListAndSelect(t *testing.T) {
	b := newBackend()

	msg, isErr := call(t, syncProjectsHandler(b), nil)
	if isErr {
		t.Fatalf("sync failed: %s", msg)
	}
	if !strings.Contains(msg, "2 projects were added") {
		t.Errorf("unexpected sync message: %s", msg)
	}

	msg, isErr = call(t, selectProjectHandler(b.table), map[string]any{"project_id": "p2"})
	if isErr || msg != "Selected: Fabrikam" {
		t.Errorf("unexpected select result: %s (error=%v)", msg, isErr)
	}

	list, _ := call(t, listProjectsHandler(b.table), map[string]any{"selected_only": true})
	if list != "p2  Fabrikam  [selected]\n" {
		t.Errorf("unexpected list: %q", list)
	}

	list, _ = call(t, listProjectsHandler(b.table), map[string]any{"query": "cnts"})
	if !strings.HasPrefix(list, "p1  Contoso") {
		t.Errorf("expected fuzzy match on Contoso, got %q", list)
	}
}

func TestSelectProject_Errors(t *testing.T) {
	b := newBackend()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing id", map[string]any{}},
		{"unknown project", map[string]any{"project_id": "nope"}},
		{"bad source", map[string]any{"project_id": "p1", "source": "github"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, isErr := call(t, selectProjectHandler(b.table), tt.args); !isErr {
				t.Error("expected a tool error")
			}
		})
	}
}

func TestIterationPaths(t *testing.T) {
	b := newBackend()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"all", map[string]any{"project_id": "p1"},
			"Contoso\\Iteration\\2023\\Sprint 1\nContoso\\Iteration\\2023\nContoso\\Iteration\\2024\nContoso\\Iteration\nContoso\n"},
		{"ending with", map[string]any{"project_id": "p1", "ending_with": "2023"}, "Contoso\\Iteration\\2023\n"},
		{"leaves", map[string]any{"project_id": "p1", "leaves_only": true},
			"Contoso\\Iteration\\2023\\Sprint 1\nContoso\\Iteration\\2024\n"},
		{"no match", map[string]any{"project_id": "p1", "ending_with": "1999"}, "No results."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, isErr := call(t, iterationPathsHandler(b), tt.args)
			if isErr {
				t.Fatalf("unexpected tool error: %s", got)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTree(t *testing.T) {
	b := newBackend()

	got, isErr := call(t, treeHandler(b), map[string]any{"project_id": "p1"})
	if isErr {
		t.Fatalf("unexpected tool error: %s", got)
	}
	want := "Contoso\n  Iteration\n    2023\n      Sprint 1\n    2024\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if _, isErr := call(t, treeHandler(b), map[string]any{}); !isErr {
		t.Error("expected error without project_id")
	}
	if _, isErr := call(t, treeHandler(b), map[string]any{"project_id": "p1", "group": "teams"}); !isErr {
		t.Error("expected error for unknown group")
	}
}

func TestBackendErrorsAreToolErrors(t *testing.T) {
	b := newBackend()
	b.err = errors.New("no token")

	for name, handler := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"sync":   syncProjectsHandler(b),
		"export": exportWorkItemsHandler(b),
		"tree":   treeHandler(b),
	} {
		t.Run(name, func(t *testing.T) {
			msg, isErr := call(t, handler, map[string]any{"project_id": "p1"})
			if !isErr || msg != "no token" {
				t.Errorf("expected tool error %q, got %q (error=%v)", "no token", msg, isErr)
			}
		})
	}
}

func TestExportWithoutSelection(t *testing.T) {
	b := newBackend()

	msg, isErr := call(t, exportWorkItemsHandler(b), nil)
	if isErr {
		t.Fatalf("unexpected tool error: %s", msg)
	}
	if !strings.Contains(msg, application.ErrNoSelectedProjects.Error()) {
		t.Errorf("unexpected message: %q", msg)
	}
	if names := b.blobs.Names(); len(names) != 0 {
		t.Errorf("expected no blobs, got %v", names)
	}
}
