package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound           = errors.New("not found")
	ErrEmptyBatch         = errors.New("external system returned no projects")
	ErrProjectDeleted     = errors.New("project is deleted")
	ErrNoSelectedProjects = errors.New("no project selected")
	ErrInvalidSource      = errors.New("invalid project source")
	ErrNodeNotFound       = errors.New("classification node not found")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProjectError ties a failure to the project it happened on
type ProjectError struct {
	ProjectID string
	Op        string
	Err       error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("%s for project %s: %v", e.Op, e.ProjectID, e.Err)
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}
