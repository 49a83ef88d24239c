// Package bootstrap turns a loaded configuration into wired adapters and
// commands for the adda binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"adda/internal/adapters/azblob"
	"adda/internal/adapters/azdevops"
	"adda/internal/adapters/aztables"
	"adda/internal/adapters/filesystem"
	"adda/internal/adapters/jira"
	"adda/internal/adapters/memory"
	"adda/internal/adapters/secrets"
	"adda/internal/adapters/sqlite"
	"adda/internal/application"
	"adda/internal/application/commands"
	"adda/internal/config"
	"adda/internal/domain"
	"adda/internal/orchestrator"
	"adda/internal/ports"
)

// ErrJiraDisabled is returned when a Jira operation runs with jira.enabled off
var ErrJiraDisabled = errors.New("jira is not enabled in the configuration")

// App holds the adapters shared by every command of one process. The
// DevOps and Jira clients are created on first use, so commands that only
// read the table never need credentials.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Table   ports.ProjectTable
	Blobs   ports.BlobStore
	Secrets ports.SecretSource

	mu     sync.Mutex
	devops ports.DevOpsClient
	jira   ports.JiraClient
}

// New opens the configured table and blob store
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table, err := OpenTable(ctx, cfg.Table)
	if err != nil {
		return nil, err
	}

	blobs, err := OpenBlobStore(cfg.Blob)
	if err != nil {
		table.Close()
		return nil, err
	}

	source, err := SecretSource(cfg.KeyVaultURL)
	if err != nil {
		table.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Table:   table,
		Blobs:   blobs,
		Secrets: source,
	}, nil
}

// OpenTable builds the table backend named in cfg
func OpenTable(ctx context.Context, cfg config.TableConfig) (ports.ProjectTable, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLitePath)
	case config.BackendAzTables:
		return aztables.Open(ctx, cfg.ConnectionString, cfg.TableName)
	case config.BackendMemory:
		return memory.NewTable(), nil
	default:
		return nil, fmt.Errorf("unknown table backend %q", cfg.Backend)
	}
}

// OpenBlobStore builds the blob backend named in cfg
func OpenBlobStore(cfg config.BlobConfig) (ports.BlobStore, error) {
	switch cfg.Backend {
	case config.BlobFilesystem:
		return filesystem.NewBlobStore(cfg.Root), nil
	case config.BlobAzure:
		if cfg.AccountURL != "" {
			return azblob.NewFromAccountURL(cfg.AccountURL)
		}
		return azblob.NewFromConnectionString(cfg.ConnectionString)
	case config.BlobMemory:
		return memory.NewBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

// SecretSource reads from the vault first when one is configured, then
// from the environment
func SecretSource(vaultURL string) (ports.SecretSource, error) {
	if vaultURL == "" {
		return secrets.NewEnv(), nil
	}
	vault, err := secrets.NewKeyVault(vaultURL)
	if err != nil {
		return nil, err
	}
	return secrets.Chain{vault, secrets.NewEnv()}, nil
}

// DevOps returns the Azure DevOps client, connecting on first use
func (a *App) DevOps(ctx context.Context) (ports.DevOpsClient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.devops != nil {
		return a.devops, nil
	}

	pat, err := a.Secrets.Secret(ctx, secrets.DevOpsPersonalAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read devops token: %w", err)
	}
	client, err := azdevops.NewClient(ctx, a.Config.DevOps.OrganizationURL, pat)
	if err != nil {
		return nil, err
	}
	a.devops = client
	return client, nil
}

// Jira returns the Jira client, reading its credentials on first use
func (a *App) Jira(ctx context.Context) (ports.JiraClient, error) {
	if !a.Config.Jira.Enabled {
		return nil, ErrJiraDisabled
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.jira != nil {
		return a.jira, nil
	}

	username, err := a.Secrets.Secret(ctx, secrets.JiraUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to read jira username: %w", err)
	}
	token, err := a.Secrets.Secret(ctx, secrets.JiraAPIToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read jira token: %w", err)
	}
	a.jira = jira.NewClient(a.Config.Jira.BaseURL, username, token, nil)
	return a.jira, nil
}

// SyncCommand builds the sync command for source
func (a *App) SyncCommand(ctx context.Context, source domain.ProjectSource) (*commands.SyncProjectsCommand, error) {
	sync := application.NewSynchronizer(a.Table, a.Logger)

	switch source {
	case domain.SourceDevOps:
		client, err := a.DevOps(ctx)
		if err != nil {
			return nil, err
		}
		return commands.NewSyncDevOpsProjectsCommand(client, sync, a.Logger), nil
	case domain.SourceJira:
		client, err := a.Jira(ctx)
		if err != nil {
			return nil, err
		}
		return commands.NewSyncJiraProjectsCommand(client, sync, a.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", application.ErrInvalidSource, source)
	}
}

// ExportCommand builds the export command with the configured settings
func (a *App) ExportCommand(ctx context.Context) (*commands.ExportWorkItemsCommand, error) {
	client, err := a.DevOps(ctx)
	if err != nil {
		return nil, err
	}

	cmd := commands.NewExportWorkItemsCommand(a.Table, client, a.Blobs, a.Logger)
	cmd.IterationNode = a.Config.Export.IterationNode
	cmd.Depth = a.Config.Export.Depth
	cmd.BatchSize = a.Config.Export.BatchSize
	cmd.Concurrency = a.Config.Export.Concurrency
	return cmd, nil
}

// ClassificationCommand builds a tree query against the DevOps client
func (a *App) ClassificationCommand(ctx context.Context, group domain.StructureGroup, depth int) (*commands.ClassificationCommand, error) {
	client, err := a.DevOps(ctx)
	if err != nil {
		return nil, err
	}
	if depth == 0 {
		depth = a.Config.Export.Depth
	}
	return commands.NewClassificationCommand(client, group, depth), nil
}

// Orchestrator wires one run. Commands are built inside each activity so a
// missing credential fails that step instead of the whole process.
func (a *App) Orchestrator() *orchestrator.Orchestrator {
	activities := orchestrator.Activities{
		SyncDevOps: a.syncActivity(domain.SourceDevOps),
		Export: func(ctx context.Context) (string, error) {
			cmd, err := a.ExportCommand(ctx)
			if err != nil {
				return "", err
			}
			return orchestrator.ExportActivity(cmd)(ctx)
		},
	}
	if a.Config.Jira.Enabled {
		activities.SyncJira = a.syncActivity(domain.SourceJira)
	}
	return orchestrator.New(activities, a.Blobs, a.Logger)
}

func (a *App) syncActivity(source domain.ProjectSource) orchestrator.Activity {
	return func(ctx context.Context) (string, error) {
		cmd, err := a.SyncCommand(ctx, source)
		if err != nil {
			return "", err
		}
		return orchestrator.SyncActivity(cmd)(ctx)
	}
}

// Scheduler runs the orchestrator on the configured schedule
func (a *App) Scheduler() (*orchestrator.Scheduler, error) {
	orch := a.Orchestrator()
	return orchestrator.NewScheduler(a.Config.Schedule, func(ctx context.Context) {
		if _, err := orch.Run(ctx); err != nil {
			a.Logger.Warn("run interrupted", "error", err)
		}
	}, a.Logger)
}

// LastSync reports when source was last synchronized, when the table keeps track
func (a *App) LastSync(ctx context.Context, source domain.ProjectSource) (time.Time, bool) {
	journal, ok := a.Table.(ports.SyncJournal)
	if !ok {
		return time.Time{}, false
	}
	at, err := journal.LastSync(ctx, source.PartitionKey())
	if err != nil || at.IsZero() {
		return time.Time{}, false
	}
	return at, true
}

// Close releases the table
func (a *App) Close() error {
	return a.Table.Close()
}
