// Package plugins loads declarative system definitions from a workspace and
// registers them as units of work. Definitions come from two sources: plain
// YAML files, and Go files evaluated with yaegi whose SystemDefinitions()
// function yields the same schema. Each definition becomes a system that
// executes a command line during its phase.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/groundworkdev/groundwork/app"
	"github.com/groundworkdev/groundwork/store"
)

// CommandOutputs is the state entry collecting the trimmed stdout/stderr of
// every plugin system that ran, keyed by system name.
type CommandOutputs map[string]string

// Extension wires every definition found under Dir into an app. It
// implements app.Extension.
type Extension struct {
	// Dir is scanned for *.yaml and *.go definition files.
	Dir string
}

// Extend loads the definitions and registers one command-backed system per
// definition. The CommandOutputs state is registered so systems can record
// what their commands printed.
func (e Extension) Extend(a *app.App) error {
	yamlDefs, err := LoadDefinitionDir(e.Dir)
	if err != nil {
		return err
	}
	goDefs, err := LoadGoDefinitionDir(e.Dir)
	if err != nil {
		return err
	}
	defs := append(yamlDefs, goDefs...)
	if len(defs) == 0 {
		return nil
	}

	store.SetState(a.Store(), CommandOutputs{})

	var errs []error
	for _, file := range defs {
		def := file.Definition
		phase, err := def.TargetPhase()
		if err != nil {
			errs = append(errs, fmt.Errorf("plugin: %s: %w", file.Path, err))
			continue
		}
		if err := a.AddSystem(phase, def.Name, commandSystem(def)); err != nil {
			errs = append(errs, fmt.Errorf("plugin: %s: %w", file.Path, err))
		}
	}
	return errors.Join(errs...)
}

// commandSystem adapts a definition into a unit of work that runs its
// command and records the output in the CommandOutputs state.
func commandSystem(def SystemDefinition) app.SystemFunc {
	return func(ctx context.Context, st *store.Store) error {
		cmd := exec.CommandContext(ctx, def.Command[0], def.Command[1:]...)
		if def.Dir != "" {
			cmd.Dir = def.Dir
		}
		if len(def.Env) > 0 {
			cmd.Env = os.Environ()
			for key, value := range def.Env {
				cmd.Env = append(cmd.Env, key+"="+value)
			}
		}
		output, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("plugin: run %q: %w: %s", strings.Join(def.Command, " "), err, tail(output))
		}
		return store.MutateState(st, func(outputs *CommandOutputs) error {
			(*outputs)[def.Name] = strings.TrimSpace(string(output))
			return nil
		})
	}
}

// tail keeps error messages readable when a command dumps a lot of output.
func tail(output []byte) string {
	const limit = 400
	trimmed := strings.TrimSpace(string(output))
	if len(trimmed) <= limit {
		return trimmed
	}
	return "..." + trimmed[len(trimmed)-limit:]
}
