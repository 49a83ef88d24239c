package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"adda/internal/adapters/tui/views"
	"adda/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewProjects ViewState = iota
	ViewIterations
	ViewHelp
)

// App is the main TUI application model
type App struct {
	state      ViewState
	projects   *views.ProjectsModel
	iterations *views.IterationsModel
	help       *views.HelpModel
}

// NewApp creates a new TUI application. backend may be nil for a
// read-only picker without sync or iteration trees.
func NewApp(table ports.ProjectTable, backend views.Backend) *App {
	return &App{
		state:      ViewProjects,
		projects:   views.NewProjectsModel(table, backend),
		iterations: views.NewIterationsModel(backend),
		help:       views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.projects.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.projects.SetSize(msg.Width, msg.Height)
		a.iterations.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.SwitchToIterationsMsg:
		a.state = ViewIterations
		return a, a.iterations.SetProject(msg.Project)

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToProjectsMsg:
		a.state = ViewProjects
		return a, a.projects.Reload()
	}

	// Keys go to the active view only; async results reach every view
	if _, ok := msg.(tea.KeyMsg); !ok {
		_, projectsCmd := a.projects.Update(msg)
		_, iterationsCmd := a.iterations.Update(msg)
		return a, tea.Batch(projectsCmd, iterationsCmd)
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewProjects:
		_, cmd = a.projects.Update(msg)
	case ViewIterations:
		_, cmd = a.iterations.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewIterations:
		return a.iterations.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.projects.View()
	}
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}
