// Package app is the application-lifecycle engine: it partitions a run into
// ordered phases (setup, analyze, execute, teardown), executes registered
// units of work per phase either serially or under a bounded concurrency
// gate, and enforces the abort/always-run failure policy. Units coordinate
// through the shared store and its event emitters rather than through direct
// references to one another.
package app

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/groundworkdev/groundwork/store"
)

// Option customizes App construction.
type Option func(*App)

// WithMaxWorkers bounds how many units of work the analyze, execute, and
// teardown phases may run simultaneously. Values <= 0 are normalized to
// runtime.NumCPU().
func WithMaxWorkers(n int) Option {
	return func(a *App) {
		a.maxWorkers = n
	}
}

// WithInstrument wraps every unit-of-work invocation with the provided
// instrument, e.g. tracing.Instrument.
func WithInstrument(instrument Instrument) Option {
	return func(a *App) {
		if instrument != nil {
			a.instrument = instrument
		}
	}
}

// WithObserver attaches a progress observer, e.g. a console view.
func WithObserver(observer Observer) Option {
	return func(a *App) {
		a.observer = observer
	}
}

// App owns the per-phase system registrations and the shared store for one
// application run. Build it, register systems and store entries, then call
// Run exactly once.
type App struct {
	store      *store.Store
	maxWorkers int
	instrument Instrument
	observer   Observer

	setups    []system
	analyzers []system
	executors []system
	teardowns []system

	started atomic.Bool
}

// New returns an app with an empty store and a concurrency bound of
// runtime.NumCPU().
func New(opts ...Option) *App {
	a := &App{
		store:      store.New(),
		maxWorkers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.maxWorkers <= 0 {
		a.maxWorkers = runtime.NumCPU()
	}
	return a
}

// Store exposes the shared component store, primarily so callers can
// register states, resources, and emitters before the run begins.
func (a *App) Store() *store.Store {
	return a.store
}

// AddSystem registers a named unit of work for the given phase. For the
// setup phase the registration sequence is the execution order; for the
// concurrent phases it is recorded but execution order is unspecified.
// Registration is closed once Run starts.
func (a *App) AddSystem(phase Phase, name string, fn SystemFunc) error {
	if a.started.Load() {
		return fmt.Errorf("app: cannot register %s system %q: run already started", phase, name)
	}
	if name == "" {
		return fmt.Errorf("app: %s system name is required", phase)
	}
	if fn == nil {
		return fmt.Errorf("app: %s system %q requires a function", phase, name)
	}
	entry := system{name: name, fn: fn}
	switch phase {
	case PhaseSetup:
		a.setups = append(a.setups, entry)
	case PhaseAnalyze:
		a.analyzers = append(a.analyzers, entry)
	case PhaseExecute:
		a.executors = append(a.executors, entry)
	case PhaseTeardown:
		a.teardowns = append(a.teardowns, entry)
	default:
		return fmt.Errorf("app: unknown phase %d for system %q", int(phase), name)
	}
	return nil
}

// Setup registers a unit of work for the serial setup phase.
func (a *App) Setup(name string, fn SystemFunc) error {
	return a.AddSystem(PhaseSetup, name, fn)
}

// Analyze registers a unit of work for the analyze phase.
func (a *App) Analyze(name string, fn SystemFunc) error {
	return a.AddSystem(PhaseAnalyze, name, fn)
}

// Execute registers a unit of work for the execute phase.
func (a *App) Execute(name string, fn SystemFunc) error {
	return a.AddSystem(PhaseExecute, name, fn)
}

// Teardown registers a unit of work for the always-run teardown phase.
func (a *App) Teardown(name string, fn SystemFunc) error {
	return a.AddSystem(PhaseTeardown, name, fn)
}

// Extend applies an extension's registrations to the app.
func (a *App) Extend(ext Extension) error {
	if ext == nil {
		return fmt.Errorf("app: extension is required")
	}
	return ext.Extend(a)
}
