package app

import (
	"context"

	"github.com/groundworkdev/groundwork/store"
)

// Session is the long-lived context object carried across every phase of a
// run. Each hook is an optional extension point for one phase: the Setup
// hook runs before the registered setup systems on the serial loop, while
// the Analyze, Execute, and Teardown hooks are scheduled alongside that
// phase's registered systems under the concurrency gate. The Execute hook is
// the primary business-logic entry, distinct from ad-hoc registered systems.
//
// The same session pointer is handed to every concurrently scheduled unit,
// so any mutable session field must carry its own synchronization; mutations
// made through one holder are visible to all others.
type Session interface {
	Setup(ctx context.Context, st *store.Store) error
	Analyze(ctx context.Context, st *store.Store) error
	Execute(ctx context.Context, st *store.Store) error
	Teardown(ctx context.Context, st *store.Store) error
}

// ExitCoder is optionally implemented by sessions that want to control the
// process exit code reported on a successful run. Failed runs always report
// a non-zero exit code.
type ExitCoder interface {
	ExitCode() int
}

// BaseSession provides no-op hooks so session types only implement the
// phases they care about.
type BaseSession struct{}

func (BaseSession) Setup(ctx context.Context, st *store.Store) error    { return nil }
func (BaseSession) Analyze(ctx context.Context, st *store.Store) error  { return nil }
func (BaseSession) Execute(ctx context.Context, st *store.Store) error  { return nil }
func (BaseSession) Teardown(ctx context.Context, st *store.Store) error { return nil }
