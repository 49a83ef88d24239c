package commands

import (
	"context"
	"errors"
	"testing"

	"adda/internal/adapters/memory"
	"adda/internal/application"
	"adda/internal/domain"
)

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		query     string
		wantScore int
		wantMin   int // use this for relative comparisons
	}{
		{
			name:      "exact match",
			target:    "Payments",
			query:     "Payments",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "prefix match",
			target:    "Payments Platform",
			query:     "Payments",
			wantScore: 150,
		},
		{
			name:      "substring match",
			target:    "Core Payments",
			query:     "Payments",
			wantScore: 100,
		},
		{
			name:    "fuzzy across words",
			target:  "Payments Platform",
			query:   "pplat",
			wantMin: 1,
		},
		{
			name:      "no match",
			target:    "Payments",
			query:     "xyz",
			wantScore: 0,
		},
		{
			name:      "empty query",
			target:    "Payments",
			query:     "",
			wantScore: 0,
		},
		{
			name:    "case insensitive",
			target:  "PAYMENTS",
			query:   "payments",
			wantMin: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FuzzyScore(tt.target, tt.query)

			if tt.wantScore > 0 {
				if score != tt.wantScore {
					t.Errorf("expected score %d, got %d", tt.wantScore, score)
				}
			} else if tt.wantMin > 0 {
				if score < tt.wantMin {
					t.Errorf("expected score >= %d, got %d", tt.wantMin, score)
				}
			} else if score != 0 {
				t.Errorf("expected score 0, got %d", score)
			}
		})
	}
}

func TestSearchProjectsCommand(t *testing.T) {
	ctx := context.Background()
	table := memory.NewTable()
	pk := domain.DevOpsProjectPartitionKey
	for _, p := range []domain.ProjectInfo{
		{ID: "a1", Name: "Core Payments"},
		{ID: "b2", Name: "Payments"},
		{ID: "c3", Name: "Warehouse"},
	} {
		_ = table.Add(ctx, domain.NewProjectEntity(pk, p))
	}

	matches, err := NewSearchProjectsCommand(table, domain.SourceDevOps, "pay").Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Name != "Payments" {
		t.Errorf("expected prefix match first, got %s", matches[0].Name)
	}

	short, _ := NewSearchProjectsCommand(table, domain.SourceDevOps, "p").Execute(ctx)
	if short != nil {
		t.Errorf("expected single-char query to return nothing, got %v", short)
	}
}

func TestSearchProjectsCommand_UnknownSource(t *testing.T) {
	table := memory.NewTable()
	_ = table.Add(context.Background(), domain.NewProjectEntity("", domain.ProjectInfo{ID: "x1", Name: "Payments"}))

	matches, err := NewSearchProjectsCommand(table, domain.SourceUnknown, "pay").Execute(context.Background())
	if !errors.Is(err, application.ErrInvalidSource) {
		t.Errorf("expected ErrInvalidSource, got %v", err)
	}
	if matches != nil {
		t.Errorf("expected no matches, got %v", matches)
	}
}
