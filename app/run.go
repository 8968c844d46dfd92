package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Run drives the session through every phase in fixed order and blocks until
// teardown completes. The first setup, analyze, or execute failure aborts
// the remaining phases, but teardown always runs; its failures are collected
// on the report without overriding the primary outcome.
//
// No unit of work is forcibly cancelled once admitted. Cancelling ctx only
// prevents further units from being admitted; in-flight units run to
// completion so shared state is never left half-mutated by the scheduler.
//
// The returned error equals Report.Err. Run may be called at most once.
func (a *App) Run(ctx context.Context, session Session) (*Report, error) {
	if !a.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("app: run already started")
	}

	report := &Report{
		RunID:  uuid.NewString(),
		Status: StatusRunning,
	}
	startedAt := time.Now()

	primary := a.runSerial(ctx, PhaseSetup, a.phaseSystems(PhaseSetup, session))
	if primary == nil {
		primary = a.runBounded(ctx, PhaseAnalyze, a.phaseSystems(PhaseAnalyze, session))
	}
	if primary == nil {
		primary = a.runBounded(ctx, PhaseExecute, a.phaseSystems(PhaseExecute, session))
	}

	report.TeardownFailures = a.runTeardown(ctx, a.phaseSystems(PhaseTeardown, session))
	report.Elapsed = time.Since(startedAt)
	report.Err = primary

	if primary != nil {
		report.Status = StatusFailed
		report.ExitCode = 1
	} else {
		report.Status = StatusSucceeded
		if coder, ok := session.(ExitCoder); ok {
			report.ExitCode = coder.ExitCode()
		}
	}

	return report, report.Err
}

// phaseSystems returns the units of work for a phase, with the session hook
// scheduled as the leading unit when a session is present.
func (a *App) phaseSystems(phase Phase, session Session) []system {
	var registered []system
	var hook SystemFunc

	switch phase {
	case PhaseSetup:
		registered = a.setups
		if session != nil {
			hook = session.Setup
		}
	case PhaseAnalyze:
		registered = a.analyzers
		if session != nil {
			hook = session.Analyze
		}
	case PhaseExecute:
		registered = a.executors
		if session != nil {
			hook = session.Execute
		}
	case PhaseTeardown:
		registered = a.teardowns
		if session != nil {
			hook = session.Teardown
		}
	}

	if hook == nil {
		return registered
	}
	systems := make([]system, 0, len(registered)+1)
	systems = append(systems, system{name: "session:" + phase.String(), fn: hook})
	return append(systems, registered...)
}

// runSerial executes systems one at a time, in order, on the calling
// goroutine. The first failure aborts the remainder of the phase. A done
// context stops admission of further units, same as the bounded phases.
func (a *App) runSerial(ctx context.Context, phase Phase, systems []system) error {
	if a.observer != nil {
		a.observer.PhaseStarted(phase, len(systems))
	}
	var phaseErr error
	for _, sys := range systems {
		if err := ctx.Err(); err != nil {
			phaseErr = fmt.Errorf("app: %s phase admission: %w", phase, err)
			break
		}
		if err := a.invoke(ctx, phase, sys); err != nil {
			phaseErr = err
			break
		}
	}
	if a.observer != nil {
		a.observer.PhaseFinished(phase, phaseErr)
	}
	return phaseErr
}

// runBounded executes systems concurrently under the admission gate. After
// the first observed failure no further systems are admitted; systems
// already admitted run to completion. The first failure (in completion
// order) becomes the phase error.
func (a *App) runBounded(ctx context.Context, phase Phase, systems []system) error {
	errs := a.admit(ctx, phase, systems, false)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// runTeardown executes the teardown systems with the same bounded
// concurrency, but admits every system regardless of sibling failures and
// collects all errors instead of short-circuiting.
func (a *App) runTeardown(ctx context.Context, systems []system) []error {
	return a.admit(ctx, PhaseTeardown, systems, true)
}

func (a *App) admit(ctx context.Context, phase Phase, systems []system, admitAll bool) []error {
	if a.observer != nil {
		a.observer.PhaseStarted(phase, len(systems))
	}

	sem := semaphore.NewWeighted(int64(a.maxWorkers))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed atomic.Bool
		errs   []error
	)

	record := func(err error) {
		failed.Store(true)
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, sys := range systems {
		if !admitAll && failed.Load() {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			record(fmt.Errorf("app: %s phase admission: %w", phase, err))
			break
		}
		// A slot may free up only because a failing unit finished; don't
		// hand it to more work.
		if !admitAll && failed.Load() {
			sem.Release(1)
			break
		}
		wg.Add(1)
		go func(sys system) {
			defer wg.Done()
			defer sem.Release(1)
			if err := a.invoke(ctx, phase, sys); err != nil {
				record(err)
			}
		}(sys)
	}

	wg.Wait()

	var phaseErr error
	if len(errs) > 0 {
		phaseErr = errs[0]
	}
	if a.observer != nil {
		a.observer.PhaseFinished(phase, phaseErr)
	}
	return errs
}

// invoke runs a single unit of work through the instrument seam and wraps
// any failure with the phase and system name.
func (a *App) invoke(ctx context.Context, phase Phase, sys system) error {
	if a.observer != nil {
		a.observer.SystemStarted(phase, sys.name)
	}
	startedAt := time.Now()

	run := func(ctx context.Context) error {
		return sys.fn(ctx, a.store)
	}

	var err error
	if a.instrument != nil {
		err = a.instrument(ctx, phase, sys.name, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		err = &SystemError{Phase: phase, System: sys.name, Err: err}
	}

	if a.observer != nil {
		a.observer.SystemFinished(phase, sys.name, time.Since(startedAt), err)
	}
	return err
}
