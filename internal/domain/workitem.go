package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Work item field reference names
const (
	FieldID             = "System.ID"
	FieldTitle          = "System.Title"
	FieldState          = "System.State"
	FieldIterationPath  = "System.IterationPath"
	FieldAreaPath       = "System.AreaPath"
	FieldWorkItemType   = "System.WorkItemType"
	FieldParent         = "System.Parent"
	FieldClosedDate     = "Microsoft.VSTS.Common.ClosedDate"
	FieldCompletedWork  = "Microsoft.VSTS.Scheduling.CompletedWork"
	MaxWorkItemsPerCall = 200
)

// WorkItemFields is the field set fetched for every exported work item
var WorkItemFields = []string{
	FieldID,
	FieldTitle,
	FieldState,
	FieldIterationPath,
	FieldAreaPath,
	FieldWorkItemType,
	FieldParent,
	FieldClosedDate,
	FieldCompletedWork,
}

// WorkItem is a work item as exported to the bronze container
type WorkItem struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev,omitempty"`
	Fields map[string]any `json:"fields"`
	URL    string         `json:"url,omitempty"`
}

// ParentID returns the System.Parent id, if the item has one
func (w WorkItem) ParentID() (int, bool) {
	raw, ok := w.Fields[FieldParent]
	if !ok || raw == nil {
		return 0, false
	}
	id, err := intField(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// StringField returns a field rendered as text, or "" when absent
func (w WorkItem) StringField(name string) string {
	raw, ok := w.Fields[name]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

func intField(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("unexpected field type %T", v)
	}
}

// ParentIDs returns the distinct parent ids of items, in first-seen order
func ParentIDs(items []WorkItem) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, item := range items {
		id, ok := item.ParentID()
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// ExportKind names one level of the exported work item hierarchy
type ExportKind string

const (
	ExportTasks    ExportKind = "tasks"
	ExportPBIs     ExportKind = "pbis"
	ExportFeatures ExportKind = "features"
	ExportEpics    ExportKind = "epics"
)

// ExportLevels lists the hierarchy bottom-up: each level holds the parents of the previous one
var ExportLevels = []ExportKind{ExportTasks, ExportPBIs, ExportFeatures, ExportEpics}

// BronzeContainer receives raw exports
const BronzeContainer = "bronze"

// ExportTimestampLayout is used in export blob names
const ExportTimestampLayout = "20060102T150405Z"

// ExportBlobName returns e.g. "bronze/tasks/tasks_20230301T120000Z.json"
func ExportBlobName(kind ExportKind, timestamp string) string {
	return fmt.Sprintf("%s/%s/%s_%s.json", BronzeContainer, kind, kind, timestamp)
}
