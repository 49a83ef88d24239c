package domain

import "testing"

func TestParseProjectSource(t *testing.T) {
	tests := []struct {
		in      string
		want    ProjectSource
		wantKey string
		wantErr bool
	}{
		{"devops", SourceDevOps, DevOpsProjectPartitionKey, false},
		{"", SourceDevOps, DevOpsProjectPartitionKey, false},
		{"JIRA", SourceJira, JiraProjectPartitionKey, false},
		{"github", SourceUnknown, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProjectSource(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want || got.PartitionKey() != tt.wantKey {
				t.Errorf("expected %v/%s, got %v/%s", tt.want, tt.wantKey, got, got.PartitionKey())
			}
		})
	}
}

func TestProjectFilter_Matches(t *testing.T) {
	active := &ProjectEntity{Name: "a"}
	selected := &ProjectEntity{Name: "s", Selected: true}
	deleted := &ProjectEntity{Name: "d", Deleted: true}

	tests := []struct {
		name   string
		filter ProjectFilter
		entity *ProjectEntity
		want   bool
	}{
		{"default keeps active", ProjectFilter{}, active, true},
		{"default hides deleted", ProjectFilter{}, deleted, false},
		{"include deleted", ProjectFilter{IncludeDeleted: true}, deleted, true},
		{"selected only drops unselected", ProjectFilter{SelectedOnly: true}, active, false},
		{"selected only keeps selected", ProjectFilter{SelectedOnly: true}, selected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.entity); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestProjectEntity_MarkDeleted(t *testing.T) {
	e := NewProjectEntity(DevOpsProjectPartitionKey, ProjectInfo{ID: "1", Name: "P"})
	e.Selected = true
	e.MarkDeleted()

	if !e.Deleted || e.Selected {
		t.Errorf("expected deleted and unselected, got %+v", e)
	}
}

func TestPluralize(t *testing.T) {
	tests := map[int]string{0: "0 projects", 1: "1 project", 2: "2 projects"}
	for n, want := range tests {
		if got := Pluralize(n, "project", "projects"); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
