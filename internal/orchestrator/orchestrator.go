// Package orchestrator runs the pipeline activities in order and records
// the outcome of every run.
package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"adda/internal/application/commands"
	"adda/internal/domain"
	"adda/internal/ports"
)

// Step names as they appear in run reports
const (
	StepSyncDevOps = "sync-devops-projects"
	StepSyncJira   = "sync-jira-projects"
	StepExport     = "export-work-items"
)

// Activity is one step of a run. The returned detail ends up in the report.
type Activity func(ctx context.Context) (string, error)

// Activities wires the steps of a run. SyncJira is optional.
type Activities struct {
	SyncDevOps Activity
	SyncJira   Activity
	Export     Activity
}

// Orchestrator runs the activities sequentially
type Orchestrator struct {
	activities Activities
	reports    ports.BlobStore
	logger     *slog.Logger
	newID      func() string
	now        func() time.Time
}

// New creates an Orchestrator. reports may be nil to skip writing run reports.
func New(activities Activities, reports ports.BlobStore, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if isNilStore(reports) {
		reports = nil
	}
	return &Orchestrator{
		activities: activities,
		reports:    reports,
		logger:     logger.With(slog.String("component", "orchestrator")),
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Run executes one pipeline run. Jira failures do not block the export;
// a failed DevOps sync skips it. Only cancellation is returned as an error.
func (o *Orchestrator) Run(ctx context.Context) (*domain.RunReport, error) {
	report := &domain.RunReport{
		InstanceID: o.newID(),
		StartedAt:  o.now().UTC(),
	}
	logger := o.logger.With(slog.String("instance", report.InstanceID))
	logger.Info("run started")

	devops := o.step(ctx, logger, StepSyncDevOps, o.activities.SyncDevOps)
	report.Steps = append(report.Steps, devops)

	if o.activities.SyncJira != nil {
		report.Steps = append(report.Steps, o.step(ctx, logger, StepSyncJira, o.activities.SyncJira))
	}

	if devops.Status == domain.StepOK {
		report.Steps = append(report.Steps, o.step(ctx, logger, StepExport, o.activities.Export))
	} else {
		report.Steps = append(report.Steps, domain.StepResult{
			Name:   StepExport,
			Status: domain.StepSkipped,
			Detail: "project sync failed",
		})
		logger.Warn("export skipped", "reason", "project sync failed")
	}

	report.FinishedAt = o.now().UTC()
	o.writeReport(ctx, logger, report)

	logger.Info("run finished", "succeeded", report.Succeeded(), "duration", report.FinishedAt.Sub(report.StartedAt))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (o *Orchestrator) step(ctx context.Context, logger *slog.Logger, name string, activity Activity) domain.StepResult {
	result := domain.StepResult{Name: name}
	if activity == nil {
		result.Status = domain.StepSkipped
		result.Detail = "not configured"
		return result
	}
	if err := ctx.Err(); err != nil {
		result.Status = domain.StepSkipped
		result.Error = err.Error()
		return result
	}

	start := o.now()
	detail, err := activity(ctx)
	result.Duration = o.now().Sub(start)
	result.Detail = detail

	if err != nil {
		result.Status = domain.StepFailed
		result.Error = err.Error()
		logger.Error("step failed", "step", name, "error", err)
		return result
	}

	result.Status = domain.StepOK
	logger.Info("step completed", "step", name, "detail", detail)
	return result
}

func (o *Orchestrator) writeReport(ctx context.Context, logger *slog.Logger, report *domain.RunReport) {
	if o.reports == nil {
		return
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Warn("failed to encode run report", "error", err)
		return
	}
	// Write even when the run was cancelled
	name := domain.RunReportBlobName(report.InstanceID)
	if err := o.reports.Put(context.WithoutCancel(ctx), name, data); err != nil {
		logger.Warn("failed to write run report", "blob", name, "error", err)
	}
}

// isNilStore reports whether reports is nil or wraps a nil pointer
func isNilStore(reports ports.BlobStore) bool {
	if reports == nil {
		return true
	}
	v := reflect.ValueOf(reports)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// SyncActivity adapts a sync command to an Activity
func SyncActivity(cmd *commands.SyncProjectsCommand) Activity {
	return func(ctx context.Context) (string, error) {
		result, err := cmd.Execute(ctx)
		if err != nil {
			return "", err
		}
		return result.Message, nil
	}
}

// ExportActivity adapts the export command to an Activity
func ExportActivity(cmd *commands.ExportWorkItemsCommand) Activity {
	return func(ctx context.Context) (string, error) {
		result, err := cmd.Execute(ctx)
		if err != nil {
			return "", err
		}
		return result.Message, nil
	}
}
