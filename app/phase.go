package app

import (
	"fmt"
	"strings"
)

// Phase is one of the four ordered stages of an application run. Phases
// execute in declaration order exactly once per run; Teardown runs even when
// an earlier phase fails.
type Phase int

const (
	// PhaseSetup runs units of work serially, in registration order, so
	// the store entries later phases depend on are established
	// deterministically.
	PhaseSetup Phase = iota
	// PhaseAnalyze runs units of work under the bounded concurrency gate.
	PhaseAnalyze
	// PhaseExecute runs units of work under the bounded concurrency gate.
	PhaseExecute
	// PhaseTeardown always runs, with the same concurrency policy as
	// Analyze and Execute. Its failures are advisory.
	PhaseTeardown
)

var phaseNames = map[Phase]string{
	PhaseSetup:    "setup",
	PhaseAnalyze:  "analyze",
	PhaseExecute:  "execute",
	PhaseTeardown: "teardown",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase resolves a phase by its lowercase name. Plugin definitions and
// config files reference phases by name.
func ParsePhase(name string) (Phase, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for phase, phaseName := range phaseNames {
		if phaseName == trimmed {
			return phase, nil
		}
	}
	return 0, fmt.Errorf("app: unknown phase %q", name)
}

// Status is the run-level state of an application.
type Status int

const (
	// StatusPending means Run has not been called yet.
	StatusPending Status = iota
	// StatusRunning means a phase is currently executing.
	StatusRunning
	// StatusSucceeded means every phase completed without a setup,
	// analyze, or execute failure.
	StatusSucceeded
	// StatusFailed means a setup, analyze, or execute unit failed.
	// Teardown failures alone never produce this status.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
