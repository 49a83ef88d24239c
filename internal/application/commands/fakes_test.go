package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"sync"

	"adda/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDevOps serves canned trees and work items
type fakeDevOps struct {
	mu       sync.Mutex
	projects []domain.ProjectInfo
	trees    map[string]*domain.ClassificationNode
	tasks    map[string][]int // keyed by iteration path
	items    map[int]domain.WorkItem
	listErr  error
	treeErr  error

	queries    []string
	fetchSizes []int
}

func (f *fakeDevOps) ListProjects(ctx context.Context) ([]domain.ProjectInfo, error) {
	return f.projects, f.listErr
}

func (f *fakeDevOps) GetClassificationNode(ctx context.Context, projectID string, group domain.StructureGroup, depth int) (*domain.ClassificationNode, error) {
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	root, ok := f.trees[projectID]
	if !ok {
		return nil, errors.New("project not found")
	}
	return root, nil
}

var underRe = regexp.MustCompile(`Under '((?:[^']|'')*)'`)

func (f *fakeDevOps) QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error) {
	f.mu.Lock()
	f.queries = append(f.queries, wiql)
	f.mu.Unlock()

	m := underRe.FindStringSubmatch(wiql)
	if m == nil {
		return nil, errors.New("unexpected query: " + wiql)
	}
	return f.tasks[m[1]], nil
}

func (f *fakeDevOps) GetWorkItems(ctx context.Context, ids []int, fields []string) ([]domain.WorkItem, error) {
	f.mu.Lock()
	f.fetchSizes = append(f.fetchSizes, len(ids))
	f.mu.Unlock()

	items := make([]domain.WorkItem, 0, len(ids))
	for _, id := range ids {
		item, ok := f.items[id]
		if !ok {
			return nil, errors.New("work item " + strconv.Itoa(id) + " not found")
		}
		items = append(items, item)
	}
	return items, nil
}

func node(name string, children ...*domain.ClassificationNode) *domain.ClassificationNode {
	return &domain.ClassificationNode{Name: name, Children: children}
}

func workItem(id int, kind string, parent int) domain.WorkItem {
	fields := map[string]any{
		domain.FieldWorkItemType: kind,
		domain.FieldTitle:        kind + " " + strconv.Itoa(id),
	}
	if parent > 0 {
		fields[domain.FieldParent] = float64(parent)
	}
	return domain.WorkItem{ID: id, Rev: 1, Fields: fields}
}
