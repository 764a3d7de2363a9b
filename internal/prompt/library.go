// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"
)

// libraryFile is the on-disk shape of a prompt library YAML document.
type libraryFile struct {
	// Role is a preamble prepended to every template body.
	Role string `yaml:"role"`

	// Templates maps template name to its definition.
	Templates map[string]templateEntry `yaml:"templates"`
}

type templateEntry struct {
	Text      string   `yaml:"text"`
	Variables []string `yaml:"variables"`
	Fields    []string `yaml:"fields"`
}

// Library holds the named templates loaded from a prompts file. Read-only
// after load.
type Library struct {
	templates map[string]Template
}

// LoadLibrary reads a prompt library YAML file. Each template's declared
// variable list must match the placeholders found in its text, so a typo in
// either is caught at startup rather than mid-run.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompts: %w", err)
	}

	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing prompts %s: %w", path, err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("prompts %s: no templates defined", path)
	}

	lib := &Library{templates: make(map[string]Template, len(file.Templates))}
	for name, entry := range file.Templates {
		text := entry.Text
		if file.Role != "" {
			text = file.Role + "\n\n" + text
		}

		tmpl := New(name, text, entry.Fields)

		declared := append([]string(nil), entry.Variables...)
		sort.Strings(declared)
		if !equalStrings(declared, tmpl.vars) {
			return nil, fmt.Errorf("template %q: declared variables %v do not match placeholders %v",
				name, declared, tmpl.vars)
		}

		lib.templates[name] = tmpl
	}

	return lib, nil
}

// Get looks up a template by name.
func (l *Library) Get(name string) (Template, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("template %q not found in library", name)
	}
	return tmpl, nil
}

// Names returns the sorted template names in the library.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
