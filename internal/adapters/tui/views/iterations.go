package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"adda/internal/adapters/tui/styles"
	"adda/internal/domain"
)

// IterationsKeyMap defines key bindings for the iteration tree view
type IterationsKeyMap struct {
	Areas key.Binding
	Back  key.Binding
}

var IterationsKeys = IterationsKeyMap{
	Areas: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "iterations/areas"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "back"),
	),
}

// IterationsModel shows the classification tree of one Azure DevOps project
type IterationsModel struct {
	status StatusBar

	backend  Backend
	project  domain.ProjectEntity
	group    domain.StructureGroup
	viewport viewport.Model
	loaded   bool
}

// NewIterationsModel creates the view; SetProject picks the project to show
func NewIterationsModel(backend Backend) *IterationsModel {
	return &IterationsModel{
		backend:  backend,
		group:    domain.StructureIterations,
		viewport: viewport.New(80, 20),
		status:   NewStatusBar(),
	}
}

type treeLoadedMsg struct {
	projectID string
	group     domain.StructureGroup
	tree      string
	err       error
}

// SetProject switches the view to p and returns the command loading its tree
func (m *IterationsModel) SetProject(p domain.ProjectEntity) tea.Cmd {
	m.project = p
	m.group = domain.StructureIterations
	m.viewport.SetContent("")
	return m.load()
}

func (m *IterationsModel) load() tea.Cmd {
	m.loaded = false
	tick := m.status.Start("loading " + string(m.group))
	projectID, group := m.project.RowKey, m.group
	fetch := func() tea.Msg {
		ctx := context.Background()
		loaded := treeLoadedMsg{projectID: projectID, group: group}
		cmd, err := m.backend.ClassificationCommand(ctx, group, 0)
		if err != nil {
			loaded.err = err
			return loaded
		}
		loaded.tree, loaded.err = cmd.Tree(ctx, projectID)
		return loaded
	}
	return tea.Batch(fetch, tick)
}

// Init does nothing; loading starts from SetProject
func (m *IterationsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the tree view
func (m *IterationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case treeLoadedMsg:
		if msg.projectID != m.project.RowKey || msg.group != m.group {
			return m, nil
		}
		m.loaded = true
		m.status.Done("", msg.err)
		if msg.err != nil {
			return m, nil
		}
		m.viewport.SetContent(strings.TrimRight(msg.tree, "\n"))
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, IterationsKeys.Back):
			return m, func() tea.Msg {
				return SwitchToProjectsMsg{}
			}
		case key.Matches(msg, IterationsKeys.Areas):
			if m.group == domain.StructureIterations {
				m.group = domain.StructureAreas
			} else {
				m.group = domain.StructureIterations
			}
			return m, m.load()
		}

	case spinner.TickMsg:
		return m, m.status.Tick(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the tree view
func (m *IterationsModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(m.project.Name))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(string(m.group) + " of " + m.project.RowKey))
	b.WriteString("\n\n")

	if m.loaded && !m.status.Err {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	b.WriteString(m.status.View())

	b.WriteString("\n")
	b.WriteString(RenderHelpLine(
		m.viewport.KeyMap.Down,
		m.viewport.KeyMap.Up,
		IterationsKeys.Areas,
		IterationsKeys.Back,
	))

	return styles.App.Render(b.String())
}

// SetSize sizes the viewport to the window minus the header and footer
func (m *IterationsModel) SetSize(width, height int) {
	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = max(height-10, 5)
}
