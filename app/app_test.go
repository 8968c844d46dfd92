package app

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/groundworkdev/groundwork/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func noop(ctx context.Context, st *store.Store) error { return nil }

func TestParsePhase(t *testing.T) {
	for _, name := range []string{"setup", "Analyze", " execute ", "TEARDOWN"} {
		if _, err := ParsePhase(name); err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
	}
	if _, err := ParsePhase("deploy"); err == nil {
		t.Fatalf("expected unknown phase error")
	}
}

func TestAddSystemValidation(t *testing.T) {
	a := New()
	if err := a.AddSystem(PhaseSetup, "", noop); err == nil {
		t.Fatalf("empty name must be rejected")
	}
	if err := a.AddSystem(PhaseSetup, "nil-fn", nil); err == nil {
		t.Fatalf("nil function must be rejected")
	}
	if err := a.AddSystem(Phase(42), "bad-phase", noop); err == nil {
		t.Fatalf("unknown phase must be rejected")
	}
	if err := a.Setup("ok", noop); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func TestRegistrationClosedOnceRunStarts(t *testing.T) {
	a := New()
	if _, err := a.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	err := a.Execute("late", noop)
	if err == nil || !strings.Contains(err.Error(), "already started") {
		t.Fatalf("expected closed-registration error, got %v", err)
	}
	if _, err := a.Run(context.Background(), nil); err == nil {
		t.Fatalf("second run must be rejected")
	}
}

type registrations struct {
	systems []string
}

func (r registrations) Extend(a *App) error {
	for _, name := range r.systems {
		if err := a.Execute(name, noop); err != nil {
			return err
		}
	}
	return nil
}

func TestExtend(t *testing.T) {
	a := New()
	if err := a.Extend(registrations{systems: []string{"one", "two"}}); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if len(a.executors) != 2 {
		t.Fatalf("expected 2 execute systems, got %d", len(a.executors))
	}
	if err := a.Extend(nil); err == nil {
		t.Fatalf("nil extension must be rejected")
	}
}
