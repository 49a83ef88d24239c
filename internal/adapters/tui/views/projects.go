package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"adda/internal/adapters/tui/styles"
	"adda/internal/application/commands"
	"adda/internal/domain"
	"adda/internal/ports"
)

// Backend builds the commands that talk to the external systems.
// bootstrap.App implements it.
type Backend interface {
	SyncCommand(ctx context.Context, source domain.ProjectSource) (*commands.SyncProjectsCommand, error)
	ClassificationCommand(ctx context.Context, group domain.StructureGroup, depth int) (*commands.ClassificationCommand, error)
	LastSync(ctx context.Context, source domain.ProjectSource) (time.Time, bool)
}

// ProjectsKeyMap defines key bindings for the project picker
type ProjectsKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Source      key.Binding
	ShowDeleted key.Binding
	Copy        key.Binding
	Search      key.Binding
	Clear       key.Binding
	Iterations  key.Binding
	Sync        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var ProjectsKeys = ProjectsKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "select"),
	),
	Source: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "source"),
	),
	ShowDeleted: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "deleted"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy id"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear"),
	),
	Iterations: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "iterations"),
	),
	Sync: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sync"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// ProjectsModel lists the projects of one source and toggles their selection
type ProjectsModel struct {
	width  int
	height int
	status StatusBar

	table   ports.ProjectTable
	backend Backend

	source      domain.ProjectSource
	showDeleted bool
	rows        []domain.ProjectEntity
	visible     []domain.ProjectEntity
	loaded      bool
	lastSync    time.Time

	cursor int
	offset int

	searching bool
	input     textinput.Model
	query     string
}

// NewProjectsModel creates the picker on the Azure DevOps partition.
// backend may be nil, which disables sync and the iteration view.
func NewProjectsModel(table ports.ProjectTable, backend Backend) *ProjectsModel {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "project name"
	input.CharLimit = 64

	return &ProjectsModel{
		table:   table,
		backend: backend,
		source:  domain.SourceDevOps,
		input:   input,
		status:  NewStatusBar(),
	}
}

type projectsLoadedMsg struct {
	source   domain.ProjectSource
	rows     []domain.ProjectEntity
	lastSync time.Time
}

type errMsg struct {
	err error
}

type successMsg struct {
	message string
}

type syncDoneMsg struct {
	message string
	err     error
}

// Init loads the current source
func (m *ProjectsModel) Init() tea.Cmd {
	return m.load()
}

func (m *ProjectsModel) load() tea.Cmd {
	source := m.source
	filter := domain.ProjectFilter{IncludeDeleted: m.showDeleted}
	return func() tea.Msg {
		ctx := context.Background()
		rows, err := commands.NewListProjectsCommand(m.table, source, filter).Execute(ctx)
		if err != nil {
			return errMsg{err}
		}
		msg := projectsLoadedMsg{source: source, rows: rows}
		if m.backend != nil {
			msg.lastSync, _ = m.backend.LastSync(ctx, source)
		}
		return msg
	}
}

// Update handles messages for the picker
func (m *ProjectsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case projectsLoadedMsg:
		// A late load for a source we already left
		if msg.source != m.source {
			return m, nil
		}
		m.rows = msg.rows
		m.lastSync = msg.lastSync
		m.loaded = true
		m.applyFilter()
		return m, nil

	case errMsg:
		m.status.Fail(msg.err)
		return m, nil

	case successMsg:
		m.status.Succeed(msg.message)
		return m, m.load()

	case syncDoneMsg:
		m.status.Done(msg.message, msg.err)
		if msg.err != nil {
			return m, nil
		}
		return m, m.load()

	case spinner.TickMsg:
		return m, m.status.Tick(msg)

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m *ProjectsModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		m.input.SetValue("")
		m.query = ""
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.query = m.input.Value()
	m.applyFilter()
	return m, cmd
}

func (m *ProjectsModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.status.Busy() {
		m.status.Clear()
	}

	switch {
	case key.Matches(msg, ProjectsKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, ProjectsKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.scroll()
		return m, nil

	case key.Matches(msg, ProjectsKeys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
		m.scroll()
		return m, nil

	case key.Matches(msg, ProjectsKeys.Toggle):
		if p := m.Current(); p != nil {
			return m, m.toggle(*p)
		}
		return m, nil

	case key.Matches(msg, ProjectsKeys.Source):
		if m.source == domain.SourceDevOps {
			m.source = domain.SourceJira
		} else {
			m.source = domain.SourceDevOps
		}
		m.reset()
		return m, m.load()

	case key.Matches(msg, ProjectsKeys.ShowDeleted):
		m.showDeleted = !m.showDeleted
		return m, m.load()

	case key.Matches(msg, ProjectsKeys.Copy):
		if p := m.Current(); p != nil {
			if err := copyToClipboard(p.RowKey); err != nil {
				m.status.Fail(fmt.Errorf("clipboard: %w", err))
			} else {
				m.status.Succeed(fmt.Sprintf("Copied %s", p.RowKey))
			}
		}
		return m, nil

	case key.Matches(msg, ProjectsKeys.Search):
		m.searching = true
		return m, m.input.Focus()

	case key.Matches(msg, ProjectsKeys.Clear):
		m.input.SetValue("")
		m.query = ""
		m.applyFilter()
		return m, nil

	case key.Matches(msg, ProjectsKeys.Iterations):
		if p := m.Current(); p != nil && m.source == domain.SourceDevOps && m.backend != nil {
			project := *p
			return m, func() tea.Msg {
				return SwitchToIterationsMsg{Project: project}
			}
		}
		return m, nil

	case key.Matches(msg, ProjectsKeys.Sync):
		if m.backend == nil || m.status.Busy() {
			return m, nil
		}
		tick := m.status.Start("syncing " + sourceLabel(m.source) + " projects")
		return m, tea.Batch(tick, m.sync())

	case key.Matches(msg, ProjectsKeys.Help):
		return m, func() tea.Msg {
			return SwitchToHelpMsg{}
		}
	}

	return m, nil
}

func (m *ProjectsModel) toggle(p domain.ProjectEntity) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		cmd := commands.NewSetProjectSelectionCommand(m.table, source, p.RowKey, !p.Selected)
		result, err := cmd.Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return successMsg{result.Message}
	}
}

func (m *ProjectsModel) sync() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx := context.Background()
		cmd, err := m.backend.SyncCommand(ctx, source)
		if err != nil {
			return syncDoneMsg{err: err}
		}
		result, err := cmd.Execute(ctx)
		if err != nil {
			return syncDoneMsg{err: err}
		}
		return syncDoneMsg{message: result.Message}
	}
}

func (m *ProjectsModel) reset() {
	m.rows = nil
	m.visible = nil
	m.loaded = false
	m.lastSync = time.Time{}
	m.cursor = 0
	m.offset = 0
}

// applyFilter narrows rows to the fuzzy matches of the query, best first.
// The cursor stays on the same project when it is still visible.
func (m *ProjectsModel) applyFilter() {
	var current string
	if p := m.Current(); p != nil {
		current = p.RowKey
	}

	if len(m.query) < 2 {
		m.visible = m.rows
	} else {
		matches := commands.FuzzySort(m.rows, m.query)
		m.visible = make([]domain.ProjectEntity, len(matches))
		for i, match := range matches {
			m.visible[i] = match.ProjectEntity
		}
	}

	m.cursor = 0
	for i, p := range m.visible {
		if p.RowKey == current {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *ProjectsModel) SetSize(width, height int) {
	m.width, m.height = width, height
}

// pageSize is how many rows fit below the header and above the footer
func (m *ProjectsModel) pageSize() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-12, 3)
}

func (m *ProjectsModel) scroll() {
	size := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+size {
		m.offset = m.cursor - size + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Current returns the project under the cursor, nil when the list is empty
func (m *ProjectsModel) Current() *domain.ProjectEntity {
	if m.cursor >= 0 && m.cursor < len(m.visible) {
		return &m.visible[m.cursor]
	}
	return nil
}

// Source returns the partition being shown
func (m *ProjectsModel) Source() domain.ProjectSource {
	return m.source
}

// View renders the picker
func (m *ProjectsModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("adda"))
	b.WriteString("  ")
	b.WriteString(RenderSourceTabs(m.source))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(m.summary()))
	b.WriteString("\n\n")

	switch {
	case !m.loaded:
		b.WriteString(styles.MutedText.Render("Loading..."))
		b.WriteString("\n")
	case len(m.visible) == 0 && m.query != "":
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("No project matches %q", m.query)))
		b.WriteString("\n")
	case len(m.visible) == 0:
		b.WriteString(styles.MutedText.Render("No projects yet. Press s to sync."))
		b.WriteString("\n")
	default:
		end := min(m.offset+m.pageSize(), len(m.visible))
		for i := m.offset; i < end; i++ {
			b.WriteString(RenderProjectRow(m.visible[i], i == m.cursor))
			b.WriteString("\n")
		}
		if len(m.visible) > m.pageSize() {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(m.visible))))
			b.WriteString("\n")
		}
	}

	if m.searching || m.query != "" {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(m.status.View())

	b.WriteString("\n")
	b.WriteString(RenderHelpLine(
		ProjectsKeys.Down,
		ProjectsKeys.Toggle,
		ProjectsKeys.Source,
		ProjectsKeys.ShowDeleted,
		ProjectsKeys.Copy,
		ProjectsKeys.Search,
		ProjectsKeys.Help,
		ProjectsKeys.Quit,
	))

	return styles.App.Render(b.String())
}

func (m *ProjectsModel) summary() string {
	selected := 0
	for _, p := range m.rows {
		if p.Selected {
			selected++
		}
	}
	s := fmt.Sprintf("%s, %d selected", domain.Pluralize(len(m.rows), "project", "projects"), selected)
	if m.showDeleted {
		s += ", deleted shown"
	}
	if !m.lastSync.IsZero() {
		s += ", synced " + m.lastSync.Local().Format("2006-01-02 15:04")
	}
	return s
}

// Reload reloads the current source from the table
func (m *ProjectsModel) Reload() tea.Cmd {
	return m.load()
}

// Messages for view switching
type SwitchToIterationsMsg struct {
	Project domain.ProjectEntity
}

type SwitchToHelpMsg struct{}

type SwitchToProjectsMsg struct{}
