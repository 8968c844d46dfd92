package console

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/groundworkdev/groundwork/app"
)

// Observer adapts the app's observer seam onto a message sink, usually
// (*tea.Program).Send. Calls arrive from the scheduler's goroutines; Send is
// safe for that.
func Observer(send func(tea.Msg)) app.Observer {
	return &observer{send: send}
}

type observer struct {
	send func(tea.Msg)
}

func (o *observer) PhaseStarted(phase app.Phase, systems int) {
	o.send(PhaseStartedMsg{Phase: phase, Systems: systems})
}

func (o *observer) SystemStarted(phase app.Phase, name string) {
	o.send(SystemStartedMsg{Phase: phase, Name: name})
}

func (o *observer) SystemFinished(phase app.Phase, name string, elapsed time.Duration, err error) {
	o.send(SystemFinishedMsg{Phase: phase, Name: name, Elapsed: elapsed, Err: err})
}

func (o *observer) PhaseFinished(phase app.Phase, err error) {
	o.send(PhaseFinishedMsg{Phase: phase, Err: err})
}
