package plugins

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/groundworkdev/groundwork/app"
)

func TestParseDefinitionYAML(t *testing.T) {
	payload := []byte(`
phase: Analyze
name: "  lint "
description: run the linter
command: [" golangci-lint ", "run"]
env:
  "  CI ": "true"
`)
	def, err := ParseDefinitionYAML(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := SystemDefinition{
		Phase:       "analyze",
		Name:        "lint",
		Description: "run the linter",
		Command:     []string{"golangci-lint", "run"},
		Env:         map[string]string{"CI": "true"},
	}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
	phase, err := def.TargetPhase()
	if err != nil {
		t.Fatalf("target phase: %v", err)
	}
	if phase != app.PhaseAnalyze {
		t.Fatalf("unexpected phase %s", phase)
	}
}

func TestParseDefinitionYAMLRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty payload": "",
		"missing name":  "phase: setup\ncommand: [true]",
		"bad phase":     "phase: deploy\nname: x\ncommand: [true]",
		"no command":    "phase: setup\nname: x",
	}
	for label, payload := range cases {
		if _, err := ParseDefinitionYAML([]byte(payload)); err == nil {
			t.Fatalf("%s: expected error", label)
		}
	}
}

func TestValidateErrorNamesSystem(t *testing.T) {
	def := SystemDefinition{Phase: "nope", Name: "lint", Command: []string{"true"}}
	err := def.Validate()
	if err == nil || !strings.Contains(err.Error(), "lint") {
		t.Fatalf("expected error naming the system, got %v", err)
	}
}
