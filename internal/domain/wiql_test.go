package domain

import (
	"strings"
	"testing"
)

func TestDoneTasksQuery(t *testing.T) {
	q := DoneTasksQuery("Contoso", `Contoso\2023`)

	for _, part := range []string{
		"Select [Id] From WorkItems",
		"[Work Item Type] = 'Task'",
		"[State] In ('Closed', 'Done')",
		`[Iteration Path] Under 'Contoso\2023'`,
		"[Team Project] = 'Contoso'",
	} {
		if !strings.Contains(q, part) {
			t.Errorf("expected query to contain %q, got %q", part, q)
		}
	}
}

func TestDoneTasksQuery_QuotesLiterals(t *testing.T) {
	q := DoneTasksQuery("O'Brien", `O'Brien\2023`)

	if !strings.Contains(q, "[Team Project] = 'O''Brien'") {
		t.Errorf("project name not escaped: %q", q)
	}
	if !strings.Contains(q, `Under 'O''Brien\2023'`) {
		t.Errorf("iteration path not escaped: %q", q)
	}
}
