package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"adda/internal/adapters/memory"
	"adda/internal/domain"
)

func TestApp_HelpRoundTrip(t *testing.T) {
	table := memory.NewTable()
	entity := domain.NewProjectEntity(domain.DevOpsProjectPartitionKey, domain.ProjectInfo{ID: "p1", Name: "Contoso"})
	if err := table.Add(context.Background(), entity); err != nil {
		t.Fatalf("seed: %v", err)
	}

	app := NewApp(table, nil)
	app.Update(app.Init()())

	if !strings.Contains(app.View(), "Contoso") {
		t.Fatalf("expected the project list, got %q", app.View())
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	app.Update(cmd())
	if app.State() != ViewHelp {
		t.Fatalf("expected help view, got %v", app.State())
	}
	if !strings.Contains(app.View(), "adda help") {
		t.Error("expected the help screen")
	}

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, reload := app.Update(cmd())
	if app.State() != ViewProjects {
		t.Fatalf("expected projects view, got %v", app.State())
	}
	app.Update(reload())
	if !strings.Contains(app.View(), "Contoso") {
		t.Error("expected the project list after closing help")
	}
}

func TestApp_EnterWithoutBackendStaysOnList(t *testing.T) {
	table := memory.NewTable()
	entity := domain.NewProjectEntity(domain.DevOpsProjectPartitionKey, domain.ProjectInfo{ID: "p1", Name: "Contoso"})
	if err := table.Add(context.Background(), entity); err != nil {
		t.Fatalf("seed: %v", err)
	}

	app := NewApp(table, nil)
	app.Update(app.Init()())

	if _, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("expected no view switch without a backend")
	}
	if app.State() != ViewProjects {
		t.Errorf("expected projects view, got %v", app.State())
	}
}
