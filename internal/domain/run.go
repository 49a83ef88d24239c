package domain

import (
	"fmt"
	"time"
)

// StepStatus is the outcome of one orchestration activity
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult records one activity of a run
type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RunReport is written after every orchestration run
type RunReport struct {
	InstanceID string       `json:"instanceId"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Steps      []StepResult `json:"steps"`
}

// Step returns the named step, if it ran
func (r *RunReport) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Succeeded is true when no step failed
func (r *RunReport) Succeeded() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return false
		}
	}
	return true
}

// RunReportBlobName returns the blob name the report is stored under
func RunReportBlobName(instanceID string) string {
	return fmt.Sprintf("runs/run_%s.json", instanceID)
}
