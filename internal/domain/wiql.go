package domain

import (
	"fmt"
	"strings"
)

// DoneTasksQuery selects the closed or done Tasks of a project under an iteration path
func DoneTasksQuery(projectName, iterationPath string) string {
	return "Select [Id] " +
		"From WorkItems " +
		"Where [Work Item Type] = 'Task' " +
		"And [State] In ('Closed', 'Done') " +
		fmt.Sprintf("And [Iteration Path] Under '%s' ", wiqlQuote(iterationPath)) +
		fmt.Sprintf("And [Team Project] = '%s'", wiqlQuote(projectName))
}

// wiqlQuote escapes a string literal for WIQL (single quotes are doubled)
func wiqlQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
