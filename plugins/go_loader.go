package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

// goDefinitionFuncName is the function a Go definition file must declare:
// func SystemDefinitions() ([]map[string]any, error).
const goDefinitionFuncName = "SystemDefinitions"

// LoadGoDefinitionDir evaluates every .go file under dir with yaegi and
// collects the definitions its SystemDefinitions() function declares.
// os.ReadDir yields entries sorted by file name, and within one file the
// declaration order is kept, so the result needs no further sorting.
func LoadGoDefinitionDir(dir string) ([]DefinitionFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var defs []DefinitionFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		fileDefs, err := loadGoDefinitionFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}
	return defs, nil
}

func loadGoDefinitionFile(path string) ([]DefinitionFile, error) {
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fn, err := i.Eval(goDefinitionFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must declare %s() ([]map[string]any, error): %w", path, goDefinitionFuncName, err)
	}
	raw, err := callDefinitionFunc(fn)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}
	files := make([]DefinitionFile, 0, len(raw))
	for idx, payload := range raw {
		data, err := yaml.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s definition %d: %w", path, idx+1, err)
		}
		parsed, err := ParseDefinitionYAML(data)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s definition %d: %w", path, idx+1, err)
		}
		files = append(files, DefinitionFile{Definition: parsed, Path: fmt.Sprintf("%s#%d", path, idx+1)})
	}
	return files, nil
}

// callDefinitionFunc invokes the interpreted function and coerces its
// result. yaegi hands interpreted values back as reflect values whose static
// types need not match the declared signature, so the returned slice is
// walked element by element instead of type-asserted in one step.
func callDefinitionFunc(fn reflect.Value) ([]map[string]any, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goDefinitionFuncName)
	}
	if t := fn.Type(); t.NumIn() != 0 || t.NumOut() < 1 || t.NumOut() > 2 {
		return nil, fmt.Errorf("%s must be func() ([]map[string]any, error)", goDefinitionFuncName)
	}
	out := fn.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		if err, ok := out[1].Interface().(error); ok {
			return nil, err
		}
		return nil, fmt.Errorf("%s second return value is not an error", goDefinitionFuncName)
	}
	list := out[0]
	if list.Kind() == reflect.Interface {
		list = list.Elem()
	}
	if list.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s must return a slice of map[string]any", goDefinitionFuncName)
	}
	defs := make([]map[string]any, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		m, ok := list.Index(i).Interface().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s definition %d is not map[string]any", goDefinitionFuncName, i+1)
		}
		defs = append(defs, m)
	}
	return defs, nil
}
