package console

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/groundworkdev/groundwork/app"
)

func fold(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestViewTracksSystemLifecycle(t *testing.T) {
	m, _ := fold(t, NewModel(),
		PhaseStartedMsg{Phase: app.PhaseExecute, Systems: 2},
		SystemStartedMsg{Phase: app.PhaseExecute, Name: "scan"},
		SystemStartedMsg{Phase: app.PhaseExecute, Name: "index"},
		SystemFinishedMsg{Phase: app.PhaseExecute, Name: "scan", Elapsed: 5 * time.Millisecond},
		SystemFinishedMsg{Phase: app.PhaseExecute, Name: "index", Err: errors.New("disk full")},
	)

	view := m.View()
	if !strings.Contains(view, "execute") {
		t.Fatalf("view missing phase header:\n%s", view)
	}
	if !strings.Contains(view, "✓ scan") {
		t.Fatalf("view missing finished row:\n%s", view)
	}
	if !strings.Contains(view, "✗ index") || !strings.Contains(view, "disk full") {
		t.Fatalf("view missing failed row:\n%s", view)
	}
}

func TestRunFinishedQuits(t *testing.T) {
	report := &app.Report{Status: app.StatusSucceeded}
	m, cmd := fold(t, NewModel(), RunFinishedMsg{Report: report})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", cmd())
	}
	if !strings.Contains(m.View(), "succeeded") {
		t.Fatalf("final view missing verdict:\n%s", m.View())
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		msg := tea.KeyMsg{Type: tea.KeyCtrlC}
		if key == "q" {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
		}
		_, cmd := fold(t, NewModel(), msg)
		if cmd == nil {
			t.Fatalf("key %q must quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("key %q: expected tea.QuitMsg, got %T", key, cmd())
		}
	}
}

func TestObserverForwardsMessages(t *testing.T) {
	var got []tea.Msg
	obs := Observer(func(msg tea.Msg) { got = append(got, msg) })

	obs.PhaseStarted(app.PhaseAnalyze, 3)
	obs.SystemStarted(app.PhaseAnalyze, "scan")
	obs.SystemFinished(app.PhaseAnalyze, "scan", 2*time.Millisecond, nil)
	obs.PhaseFinished(app.PhaseAnalyze, nil)

	if len(got) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got))
	}
	if msg, ok := got[0].(PhaseStartedMsg); !ok || msg.Systems != 3 {
		t.Fatalf("unexpected first message: %#v", got[0])
	}
	if msg, ok := got[2].(SystemFinishedMsg); !ok || msg.Name != "scan" {
		t.Fatalf("unexpected finish message: %#v", got[2])
	}
}
