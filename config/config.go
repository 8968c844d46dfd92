// Package config loads and saves application settings. The codec is picked
// by file extension: YAML, TOML, or JSON. Hosts typically keep their
// settings under a .groundwork/ directory in the workspace root.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Dir is the per-workspace directory where hosts keep settings and logs.
const Dir = ".groundwork"

// Load reads the file at path into v, dispatching on the extension.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	switch codec(path) {
	case "yaml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("config: parse YAML %s: %w", path, err)
		}
	case "toml":
		if err := toml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("config: parse TOML %s: %w", path, err)
		}
	case "json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("config: parse JSON %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported extension %q for %s", filepath.Ext(path), path)
	}
	return nil
}

// Save writes v to the file at path, creating parent directories, using the
// codec the extension names.
func Save(path string, v any) error {
	var (
		data []byte
		err  error
	)
	switch codec(path) {
	case "yaml":
		data, err = yaml.Marshal(v)
	case "toml":
		var buf strings.Builder
		err = toml.NewEncoder(&buf).Encode(v)
		data = []byte(buf.String())
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
	default:
		return fmt.Errorf("config: unsupported extension %q for %s", filepath.Ext(path), path)
	}
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: ensure parent dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func codec(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}
