// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders parameterized prompt templates for the generative
// backend. Templates use literal {name} substitution only; there is no
// conditional logic, so identical inputs always render identical prompts.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// placeholderPattern matches substitution tokens: {count}, {history}, {song_name}.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// MissingVariableError reports placeholders with no value in the supplied
// variable mapping. It indicates a catalog/template mismatch and is treated
// as fatal for the whole run by the orchestrator.
type MissingVariableError struct {
	Template string
	Missing  []string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template %q: missing variables: %s", e.Template, strings.Join(e.Missing, ", "))
}

// Template is a named prompt template with a declared variable contract and
// the output field set a structured response must match. Immutable once built.
type Template struct {
	// Name identifies the template within its library.
	Name string

	// Text is the template body, with {name} placeholders.
	Text string

	// Fields is the exact set of top-level keys a structured response must
	// carry. Empty means the response is free text.
	Fields []string

	vars []string
}

// New builds a Template, scanning Text for its placeholder set.
func New(name, text string, fields []string) Template {
	return Template{Name: name, Text: text, Fields: fields, vars: scanPlaceholders(text)}
}

// Variables returns the sorted placeholder names the template requires.
func (t Template) Variables() []string {
	out := make([]string, len(t.vars))
	copy(out, t.vars)
	return out
}

// Structured reports whether responses to this template carry a declared
// field set.
func (t Template) Structured() bool {
	return len(t.Fields) > 0
}

// Render substitutes variables into the template text. Every placeholder in
// the text must have a value in vars; unreferenced vars are ignored, which
// lets callers share one variable set across templates that use subsets of it.
func (t Template) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, name := range t.vars {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingVariableError{Template: t.Name, Missing: missing}
	}

	return placeholderPattern.ReplaceAllStringFunc(t.Text, func(m string) string {
		return vars[m[1:len(m)-1]]
	}), nil
}

// scanPlaceholders returns the sorted, deduplicated placeholder names in text.
func scanPlaceholders(text string) []string {
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
