package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDefinition(t *testing.T, dir, name, payload string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(payload), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDefinitionDirSortsAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "b.yaml", "phase: execute\nname: second\ncommand: [true]")
	writeDefinition(t, dir, "a.yml", "phase: setup\nname: first\ncommand: [true]")
	writeDefinition(t, dir, "notes.txt", "not a definition")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	defs, err := LoadDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Definition.Name != "first" || defs[1].Definition.Name != "second" {
		t.Fatalf("expected path order, got %v", []string{defs[0].Definition.Name, defs[1].Definition.Name})
	}
}

func TestLoadDefinitionDirMissingIsEmpty(t *testing.T) {
	defs, err := LoadDefinitionDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir must not error: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected no definitions, got %d", len(defs))
	}
}

func TestLoadDefinitionFileInvalidPayload(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "bad.yaml", "name: only-a-name")
	if _, err := LoadDefinitionFile(filepath.Join(dir, "bad.yaml")); err == nil {
		t.Fatalf("expected validation error")
	}
}
