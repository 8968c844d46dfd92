package app

import (
	"context"
	"fmt"
	"time"

	"github.com/groundworkdev/groundwork/store"
)

// SystemFunc is a unit of work bound to exactly one phase. It holds no state
// of its own; it reads whatever it needs from the store at invocation time
// and returns nil on success or a failure that the scheduler wraps as a
// SystemError. Units of work communicate exclusively through the store and
// the emitters it carries, never through other shared state.
type SystemFunc func(ctx context.Context, st *store.Store) error

type system struct {
	name string
	fn   SystemFunc
}

// Instrument wraps every unit-of-work invocation. Implementations must call
// run exactly once and return its error; anything else (telemetry, timing)
// is up to the wrapper. The tracing package provides an implementation.
type Instrument func(ctx context.Context, phase Phase, name string, run func(context.Context) error) error

// Observer receives scheduling progress. Calls for concurrent phases arrive
// from multiple goroutines; implementations must be safe for that. The
// console package adapts an Observer onto a terminal progress view.
type Observer interface {
	PhaseStarted(phase Phase, systems int)
	SystemStarted(phase Phase, name string)
	SystemFinished(phase Phase, name string, elapsed time.Duration, err error)
	PhaseFinished(phase Phase, err error)
}

// Extension bundles a set of registrations (systems, states, resources,
// emitters) that are applied to an app before it runs.
type Extension interface {
	Extend(a *App) error
}

// SystemError reports a unit of work that returned a failure.
type SystemError struct {
	Phase  Phase
	System string
	Err    error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("app: %s system %q failed: %v", e.Phase, e.System, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}
