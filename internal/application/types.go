package application

import (
	"fmt"

	"adda/internal/domain"
)

// Re-export domain types for use by adapters
type (
	ProjectInfo        = domain.ProjectInfo
	ProjectEntity      = domain.ProjectEntity
	ProjectFilter      = domain.ProjectFilter
	ProjectSource      = domain.ProjectSource
	SyncStats          = domain.SyncStats
	ClassificationNode = domain.ClassificationNode
	WorkItem           = domain.WorkItem
)

// Re-export project sources
const (
	SourceDevOps = domain.SourceDevOps
	SourceJira   = domain.SourceJira
)

// ParseProjectSource maps a source name to a ProjectSource
func ParseProjectSource(s string) (ProjectSource, error) {
	src, err := domain.ParseProjectSource(s)
	if err != nil {
		return src, fmt.Errorf("%w: %s", ErrInvalidSource, s)
	}
	return src, nil
}
