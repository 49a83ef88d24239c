package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"adda/internal/adapters/tui/styles"
	"adda/internal/domain"
)

// RenderHelpLine renders key bindings as "key desc • key desc"
func RenderHelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderMessage styles a status message, or returns "" when there is none
func RenderMessage(message string, isError bool) string {
	if message == "" {
		return ""
	}
	if isError {
		return styles.ErrorMsg.Render(message)
	}
	return styles.Success.Render(message)
}

// RenderSourceTabs draws one tab per project source, active one highlighted
func RenderSourceTabs(active domain.ProjectSource) string {
	var tabs []string
	for _, s := range []domain.ProjectSource{domain.SourceDevOps, domain.SourceJira} {
		label := sourceLabel(s)
		if s == active {
			tabs = append(tabs, styles.TabActive.Background(styles.SourceColor(s.String())).Render(label))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func sourceLabel(s domain.ProjectSource) string {
	switch s {
	case domain.SourceDevOps:
		return "Azure DevOps"
	case domain.SourceJira:
		return "Jira"
	default:
		return s.String()
	}
}

// RenderProjectRow renders one project line: checkbox, name and muted id
func RenderProjectRow(p domain.ProjectEntity, cursor bool) string {
	box := styles.Unchecked.Render(styles.CheckboxOff)
	if p.Selected {
		box = styles.Checked.Render(styles.CheckboxOn)
	}

	text := p.Name
	if p.Deleted {
		text += " (deleted)"
	}

	var name string
	switch {
	case cursor:
		name = styles.RowCursor.Render(text)
	case p.Deleted:
		name = styles.RowDeleted.Render(text)
	default:
		name = styles.Row.Render(text)
	}
	return fmt.Sprintf("%s%s  %s", box, name, styles.RowID.Render(p.RowKey))
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 16)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if n := len([]rune(s)); n < length {
		return s + strings.Repeat(" ", length-n)
	}
	return s
}
