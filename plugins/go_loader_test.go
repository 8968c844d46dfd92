package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goDefinitionSource = `package main

func SystemDefinitions() ([]map[string]any, error) {
	return []map[string]any{
		{
			"phase":   "teardown",
			"name":    "sweep",
			"command": []string{"true"},
		},
		{
			"phase":   "analyze",
			"name":    "probe",
			"command": []string{"true"},
		},
	}, nil
}
`

func TestLoadGoDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "defs.go"), []byte(goDefinitionSource), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	defs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Definition.Name != "sweep" || defs[1].Definition.Name != "probe" {
		t.Fatalf("definitions must keep file order, got %v",
			[]string{defs[0].Definition.Name, defs[1].Definition.Name})
	}
}

func TestLoadGoDefinitionDirKeepsDeclarationOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("package main\n\nfunc SystemDefinitions() ([]map[string]any, error) {\n\treturn []map[string]any{\n")
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, "\t\t{\"phase\": \"execute\", \"name\": \"unit-%d\", \"command\": []string{\"true\"}},\n", i)
	}
	b.WriteString("\t}, nil\n}\n")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "defs.go"), []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	defs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 12 {
		t.Fatalf("expected 12 definitions, got %d", len(defs))
	}
	// Ten or more definitions per file: order must stay by declaration,
	// never by the lexicographic shape of the #N path suffix.
	for i, def := range defs {
		want := fmt.Sprintf("unit-%d", i+1)
		if def.Definition.Name != want {
			t.Fatalf("definition %d is %q, want %q", i, def.Definition.Name, want)
		}
	}
}

func TestLoadGoDefinitionDirRejectsMissingFunc(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.go"), []byte("package main\n\nvar X = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadGoDefinitionDir(dir); err == nil {
		t.Fatalf("expected error for missing SystemDefinitions")
	}
}

func TestLoadGoDefinitionDirMissingIsEmpty(t *testing.T) {
	defs, err := LoadGoDefinitionDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir must not error: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected no definitions, got %d", len(defs))
	}
}
