package plugins

import (
	"fmt"
	"strings"

	"github.com/groundworkdev/groundwork/app"
)

// SystemDefinition describes a declarative plugin system loaded from YAML or
// an interpreted Go definition file. Each definition registers one unit of
// work that runs a command line during the named phase.
//
// The struct mirrors the on-disk schema under .groundwork/systems/*.yaml and
// is intentionally narrow so the engine can validate plugin metadata before
// wiring it into a run.
type SystemDefinition struct {
	Phase       string            `json:"phase" yaml:"phase"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Command     []string          `json:"command" yaml:"command"`
	Dir         string            `json:"dir,omitempty" yaml:"dir,omitempty"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Normalized returns a trimmed copy of the definition.
func (def SystemDefinition) Normalized() SystemDefinition {
	clone := SystemDefinition{
		Phase:       strings.ToLower(strings.TrimSpace(def.Phase)),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Dir:         strings.TrimSpace(def.Dir),
	}
	if len(def.Command) > 0 {
		clone.Command = make([]string, 0, len(def.Command))
		for _, arg := range def.Command {
			clone.Command = append(clone.Command, strings.TrimSpace(arg))
		}
	}
	if len(def.Env) > 0 {
		clone.Env = make(map[string]string, len(def.Env))
		for key, value := range def.Env {
			trimmed := strings.TrimSpace(key)
			if trimmed == "" {
				continue
			}
			clone.Env[trimmed] = value
		}
	}
	return clone
}

// Validate enforces baseline schema requirements for a definition.
func (def SystemDefinition) Validate() error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("plugin: system name is required")
	}
	if _, err := app.ParsePhase(def.Phase); err != nil {
		return fmt.Errorf("plugin: system %s: %w", def.Name, err)
	}
	if len(def.Command) == 0 || strings.TrimSpace(def.Command[0]) == "" {
		return fmt.Errorf("plugin: system %s: command is required", def.Name)
	}
	return nil
}

// TargetPhase resolves the phase the definition registers into. Validate
// must have accepted the definition first.
func (def SystemDefinition) TargetPhase() (app.Phase, error) {
	return app.ParsePhase(def.Phase)
}
