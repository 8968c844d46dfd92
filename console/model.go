// Package console renders live run progress in the terminal. It follows the
// bubbletea Elm-style loop: the app's observer seam forwards scheduling
// events as messages, Update folds them into the model, and View draws one
// status line per unit of work.
package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/groundworkdev/groundwork/app"
)

var (
	phaseStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// PhaseStartedMsg reports that a phase began admitting systems.
type PhaseStartedMsg struct {
	Phase   app.Phase
	Systems int
}

// SystemStartedMsg reports that a unit of work was admitted.
type SystemStartedMsg struct {
	Phase app.Phase
	Name  string
}

// SystemFinishedMsg reports that a unit of work completed.
type SystemFinishedMsg struct {
	Phase   app.Phase
	Name    string
	Elapsed time.Duration
	Err     error
}

// PhaseFinishedMsg reports that every admitted system of a phase completed.
type PhaseFinishedMsg struct {
	Phase app.Phase
	Err   error
}

// RunFinishedMsg carries the final report and stops the view.
type RunFinishedMsg struct {
	Report *app.Report
}

type row struct {
	phase   app.Phase
	name    string
	done    bool
	elapsed time.Duration
	err     error
}

// Model is the progress view state.
type Model struct {
	spinner spinner.Model
	phase   app.Phase
	rows    []row
	report  *app.Report
}

// NewModel builds an idle progress view.
func NewModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{spinner: sp}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case PhaseStartedMsg:
		m.phase = msg.Phase
	case SystemStartedMsg:
		m.rows = append(m.rows, row{phase: msg.Phase, name: msg.Name})
	case SystemFinishedMsg:
		for i := len(m.rows) - 1; i >= 0; i-- {
			if m.rows[i].phase == msg.Phase && m.rows[i].name == msg.Name && !m.rows[i].done {
				m.rows[i].done = true
				m.rows[i].elapsed = msg.Elapsed
				m.rows[i].err = msg.Err
				break
			}
		}
	case RunFinishedMsg:
		m.report = msg.Report
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	if m.report != nil {
		verdict := okStyle.Render("succeeded")
		if m.report.Status == app.StatusFailed {
			verdict = failStyle.Render("failed")
		}
		fmt.Fprintf(&b, "%s run %s\n", phaseStyle.Render("groundwork"), verdict)
	} else {
		fmt.Fprintf(&b, "%s %s phase\n", m.spinner.View(), phaseStyle.Render(m.phase.String()))
	}
	for _, r := range m.rows {
		switch {
		case !r.done:
			fmt.Fprintf(&b, "  %s %s\n", m.spinner.View(), r.name)
		case r.err != nil:
			fmt.Fprintf(&b, "  %s %s %s\n", failStyle.Render("✗"), r.name, dimStyle.Render(r.err.Error()))
		default:
			fmt.Fprintf(&b, "  %s %s %s\n", okStyle.Render("✓"), r.name, dimStyle.Render(r.elapsed.Round(time.Millisecond).String()))
		}
	}
	return b.String()
}
