package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"adda/internal/adapters/memory"
	"adda/internal/application"
	"adda/internal/domain"
)

func TestSyncProjectsCommand_DevOps(t *testing.T) {
	ctx := context.Background()
	table := memory.NewTable()
	client := &fakeDevOps{projects: []domain.ProjectInfo{
		{ID: "p1", Name: "Alpha"},
		{ID: "p2", Name: "Bravo"},
	}}
	sync := application.NewSynchronizer(table, quietLogger())

	result, err := NewSyncDevOpsProjectsCommand(client, sync, quietLogger()).Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.Added != 2 {
		t.Errorf("expected 2 added, got %d", result.Stats.Added)
	}
	if table.Len(domain.DevOpsProjectPartitionKey) != 2 {
		t.Errorf("expected 2 rows in the devops partition")
	}
	if table.Len(domain.JiraProjectPartitionKey) != 0 {
		t.Errorf("expected jira partition untouched")
	}
	if !strings.Contains(result.Message, "2 projects were added") {
		t.Errorf("unexpected message: %s", result.Message)
	}
}

func TestSyncProjectsCommand_JiraPartition(t *testing.T) {
	ctx := context.Background()
	table := memory.NewTable()
	client := &fakeDevOps{projects: []domain.ProjectInfo{{ID: "10000", Name: "Service Desk"}}}
	sync := application.NewSynchronizer(table, quietLogger())

	if _, err := NewSyncJiraProjectsCommand(client, sync, quietLogger()).Execute(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, _ := table.Get(ctx, domain.JiraProjectPartitionKey, "10000")
	if e == nil || e.Name != "Service Desk" {
		t.Errorf("expected jira project stored, got %+v", e)
	}
}

func TestSyncProjectsCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		client   *fakeDevOps
		sentinel error
	}{
		{
			name:   "list fails",
			client: &fakeDevOps{listErr: errors.New("401 unauthorized")},
		},
		{
			name:     "empty list",
			client:   &fakeDevOps{},
			sentinel: application.ErrEmptyBatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sync := application.NewSynchronizer(memory.NewTable(), quietLogger())
			_, err := NewSyncDevOpsProjectsCommand(tt.client, sync, quietLogger()).Execute(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestSyncMessage(t *testing.T) {
	tests := []struct {
		stats domain.SyncStats
		want  string
	}{
		{
			stats: domain.SyncStats{Added: 1, Updated: 0, Deleted: 2},
			want:  "1 project was added, 0 projects were updated, 2 projects were deleted",
		},
		{
			stats: domain.SyncStats{Added: 3, Updated: 1, Failed: 1},
			want:  "3 projects were added, 1 project was updated, 0 projects were deleted (1 write failed)",
		},
	}

	for _, tt := range tests {
		if got := SyncMessage(&tt.stats); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
