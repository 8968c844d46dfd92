package app

import "time"

// Report is the outcome of one application run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string
	// Status is the terminal run status.
	Status Status
	// Err is the primary failure from the setup, analyze, or execute
	// phase. Nil when the run succeeded.
	Err error
	// TeardownFailures collects advisory failures from the teardown
	// phase. They are surfaced to the caller but never flip a succeeded
	// run to failed.
	TeardownFailures []error
	// ExitCode is the suggested process exit code: the session's
	// ExitCoder value on success, 1 on failure.
	ExitCode int
	// Elapsed is the wall-clock duration of the whole run, teardown
	// included.
	Elapsed time.Duration
}
