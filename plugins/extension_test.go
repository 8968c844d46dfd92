package plugins

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/groundworkdev/groundwork/app"
	"github.com/groundworkdev/groundwork/store"
)

const echoDefinition = `phase: execute
name: greet
command: ["echo", "hello"]
`

func TestExtensionRegistersCommandSystems(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greet.yaml"), []byte(echoDefinition), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	a := app.New()
	if err := a.Extend(Extension{Dir: dir}); err != nil {
		t.Fatalf("extend: %v", err)
	}

	report, err := a.Run(context.Background(), app.BaseSession{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Status != app.StatusSucceeded {
		t.Fatalf("expected success, got %v", report.Status)
	}

	outputs, err := store.State[CommandOutputs](a.Store())
	if err != nil {
		t.Fatalf("outputs state: %v", err)
	}
	if outputs["greet"] != "hello" {
		t.Fatalf("expected recorded output %q, got %q", "hello", outputs["greet"])
	}
}

func TestExtensionFailingCommandFailsRun(t *testing.T) {
	dir := t.TempDir()
	def := "phase: execute\nname: boom\ncommand: [\"false\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "boom.yaml"), []byte(def), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	a := app.New()
	if err := a.Extend(Extension{Dir: dir}); err != nil {
		t.Fatalf("extend: %v", err)
	}

	report, err := a.Run(context.Background(), app.BaseSession{})
	if err == nil {
		t.Fatalf("expected run failure")
	}
	if report.Status != app.StatusFailed {
		t.Fatalf("expected failed status, got %v", report.Status)
	}
}

func TestExtensionEmptyDirIsNoop(t *testing.T) {
	a := app.New()
	if err := a.Extend(Extension{Dir: filepath.Join(t.TempDir(), "missing")}); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if _, err := store.State[CommandOutputs](a.Store()); err == nil {
		t.Fatalf("no definitions must not register the outputs state")
	}
}

func TestExtensionRejectsBadPhase(t *testing.T) {
	dir := t.TempDir()
	def := "phase: deploy\nname: bad\ncommand: [\"true\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(def), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := (Extension{Dir: dir}).Extend(app.New()); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}
