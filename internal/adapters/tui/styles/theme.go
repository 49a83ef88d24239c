package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#0078D4") // Azure blue
	Secondary = lipgloss.Color("#10B981") // Green
	Jira      = lipgloss.Color("#2684FF")
	Muted     = lipgloss.Color("#6B7280")
	Warning   = lipgloss.Color("#F59E0B")
	Error     = lipgloss.Color("#EF4444")
	White     = lipgloss.Color("#FFFFFF")

	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Source tabs
	TabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			Background(Primary).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	// Project rows
	Row = lipgloss.NewStyle()

	RowCursor = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	RowDeleted = lipgloss.NewStyle().
			Foreground(Muted).
			Strikethrough(true)

	Checked   = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	Unchecked = lipgloss.NewStyle().Foreground(Muted)
	RowID     = lipgloss.NewStyle().Foreground(Muted)

	CheckboxOn  = "[x] "
	CheckboxOff = "[ ] "

	SectionLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SearchPrompt = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// SourceColor returns the accent color of a project source tab
func SourceColor(source string) lipgloss.Color {
	if source == "jira" {
		return Jira
	}
	return Primary
}
