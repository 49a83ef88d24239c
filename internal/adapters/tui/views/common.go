package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"adda/internal/adapters/tui/styles"
)

// StatusBar tracks the call in flight against Azure DevOps or Jira and the
// outcome of the last one
type StatusBar struct {
	activity string
	spinner  spinner.Model

	Message string
	Err     bool
}

func NewStatusBar() StatusBar {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.MutedText
	return StatusBar{spinner: sp}
}

// Start marks activity as in flight and returns the first spinner tick
func (s *StatusBar) Start(activity string) tea.Cmd {
	s.activity = activity
	s.Clear()
	return s.spinner.Tick
}

// Busy reports whether a call is in flight
func (s *StatusBar) Busy() bool {
	return s.activity != ""
}

// Done ends the call in flight and reports its outcome
func (s *StatusBar) Done(message string, err error) {
	s.activity = ""
	if err != nil {
		s.Fail(err)
		return
	}
	s.Succeed(message)
}

func (s *StatusBar) Succeed(message string) {
	s.Message = message
	s.Err = false
}

func (s *StatusBar) Fail(err error) {
	s.Message = err.Error()
	s.Err = true
}

func (s *StatusBar) Clear() {
	s.Message = ""
	s.Err = false
}

// Tick advances the spinner while busy. Ticks of another view's spinner
// carry a different id and are dropped by spinner.Update.
func (s *StatusBar) Tick(msg spinner.TickMsg) tea.Cmd {
	if !s.Busy() {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the activity and message lines, or "" when idle and quiet
func (s StatusBar) View() string {
	var b strings.Builder
	if s.Busy() {
		b.WriteString("\n")
		b.WriteString(s.spinner.View() + " " + s.activity + "...")
		b.WriteString("\n")
	}
	if msg := RenderMessage(s.Message, s.Err); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
		b.WriteString("\n")
	}
	return b.String()
}
