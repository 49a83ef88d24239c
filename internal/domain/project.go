package domain

import (
	"fmt"
	"strings"
	"time"
)

// Partition keys grouping project rows by the system they come from
const (
	DevOpsProjectPartitionKey = "AzureDevOpsProject"
	JiraProjectPartitionKey   = "JiraProject"
)

// ProjectSource identifies an external project system
type ProjectSource int

const (
	SourceUnknown ProjectSource = iota
	SourceDevOps
	SourceJira
)

func (s ProjectSource) String() string {
	switch s {
	case SourceDevOps:
		return "devops"
	case SourceJira:
		return "jira"
	default:
		return "unknown"
	}
}

// PartitionKey returns the table partition holding projects of this source
func (s ProjectSource) PartitionKey() string {
	switch s {
	case SourceDevOps:
		return DevOpsProjectPartitionKey
	case SourceJira:
		return JiraProjectPartitionKey
	default:
		return ""
	}
}

// ParseProjectSource accepts "devops", "azdo", "jira" (case-insensitive)
func ParseProjectSource(s string) (ProjectSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "devops", "azdo", "azure-devops", "":
		return SourceDevOps, nil
	case "jira":
		return SourceJira, nil
	default:
		return SourceUnknown, fmt.Errorf("unknown project source: %s", s)
	}
}

// ProjectInfo is one (Id, Name) pair reported by an external system
type ProjectInfo struct {
	ID   string
	Name string
}

// ProjectEntity is the persisted row for a project.
// RowKey is the external id and never changes within a partition.
type ProjectEntity struct {
	PartitionKey string
	RowKey       string
	Name         string
	Selected     bool
	Deleted      bool // Soft delete: the row is kept, flagged inactive
	UpdatedAt    time.Time
}

// NewProjectEntity builds the row created on first sight of a project
func NewProjectEntity(partitionKey string, p ProjectInfo) *ProjectEntity {
	return &ProjectEntity{
		PartitionKey: partitionKey,
		RowKey:       p.ID,
		Name:         p.Name,
		Selected:     false,
		Deleted:      false,
	}
}

// MarkDeleted soft-deletes the project and drops it from the selection
func (e *ProjectEntity) MarkDeleted() {
	e.Deleted = true
	e.Selected = false
}

// ProjectFilter narrows table listings
type ProjectFilter struct {
	SelectedOnly   bool
	IncludeDeleted bool
}

// Matches applies the filter to one entity
func (f ProjectFilter) Matches(e *ProjectEntity) bool {
	if e.Deleted && !f.IncludeDeleted {
		return false
	}
	if f.SelectedOnly && !e.Selected {
		return false
	}
	return true
}

// SyncStats holds statistics from a project synchronization
type SyncStats struct {
	PartitionKey string
	Fetched      int
	Added        int
	Updated      int
	Deleted      int
	Failed       int // Writes that returned an error and were not counted
	Duration     time.Duration
}

// Pluralize returns "1 project" / "3 projects" style wording
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
