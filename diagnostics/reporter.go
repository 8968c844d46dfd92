// Package diagnostics renders typed run failures into user-facing output.
// The core never imports this package; hosts hand it the report that Run
// produced and a stream to write to.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/groundworkdev/groundwork/app"
	"github.com/groundworkdev/groundwork/events"
	"github.com/groundworkdev/groundwork/store"
)

var (
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	advisoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const timeUnit = time.Millisecond

// Reporter converts errors and run reports into formatted output. With
// styling disabled (non-TTY streams) it writes plain text.
type Reporter struct {
	styled bool
}

// NewReporter builds a reporter. Pass styled=false when the target stream is
// not a terminal.
func NewReporter(styled bool) *Reporter {
	return &Reporter{styled: styled}
}

func (r *Reporter) render(style lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return style.Render(text)
}

// ReportRun writes a human-readable summary of a run: verdict, primary
// failure if any, and advisory teardown failures.
func (r *Reporter) ReportRun(w io.Writer, report *app.Report) {
	if report == nil {
		return
	}
	if report.Status == app.StatusSucceeded {
		fmt.Fprintf(w, "%s run %s (%s)\n", r.render(okStyle, "OK"), report.RunID, report.Elapsed.Round(timeUnit))
	} else {
		fmt.Fprintf(w, "%s run %s (%s)\n", r.render(failStyle, "FAILED"), report.RunID, report.Elapsed.Round(timeUnit))
	}
	if report.Err != nil {
		r.ReportError(w, report.Err)
	}
	for _, failure := range report.TeardownFailures {
		fmt.Fprintf(w, "%s %v\n", r.render(advisoryStyle, "teardown:"), failure)
	}
}

// ReportError writes one error with whatever typed context its chain
// carries: the failing phase and system, the event type whose subscriber
// failed, or the store entry that was missing.
func (r *Reporter) ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %v\n", r.render(failStyle, "error:"), err)

	var sysErr *app.SystemError
	if errors.As(err, &sysErr) {
		fmt.Fprintf(w, "  %s\n", r.render(detailStyle, fmt.Sprintf("phase=%s system=%s", sysErr.Phase, sysErr.System)))
	}
	var subErr *events.SubscriberError
	if errors.As(err, &subErr) {
		fmt.Fprintf(w, "  %s\n", r.render(detailStyle, fmt.Sprintf("event=%s", subErr.Event)))
	}
	var nfErr *store.NotFoundError
	if errors.As(err, &nfErr) {
		fmt.Fprintf(w, "  %s\n", r.render(detailStyle, fmt.Sprintf("missing %s entry of type %s", nfErr.Namespace, nfErr.Type)))
	}
}
