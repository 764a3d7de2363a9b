// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema validates structured backend responses against a declared
// flat field set.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MalformedResponseError reports a backend response that could not be parsed
// as a flat JSON object of string values.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaMismatchError reports a parsed response whose top-level key set does
// not exactly match the declared fields. Both sets are carried (sorted) so
// callers can log precise diagnostics.
type SchemaMismatchError struct {
	Expected []string
	Actual   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: expected fields [%s], got [%s]",
		strings.Join(e.Expected, ", "), strings.Join(e.Actual, ", "))
}

// quoteReplacer maps typographic punctuation the backends tend to emit onto
// plain ASCII, matching what downstream artifact consumers expect.
var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", "'",
	"”", "'",
	"…", "...",
)

// Normalize replaces smart quotes and ellipses in a raw backend response.
func Normalize(raw string) string {
	return quoteReplacer.Replace(raw)
}

// Validate parses raw as a flat JSON object and checks its key set exactly
// matches expected (no missing keys, no extras). Values are returned as
// opaque strings; no semantic checks are applied.
func Validate(raw string, expected []string) (map[string]string, error) {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(Normalize(raw)), &parsed); err != nil {
		return nil, &MalformedResponseError{Reason: "not a JSON object", Err: err}
	}

	fields := make(map[string]string, len(parsed))
	actual := make([]string, 0, len(parsed))
	for key, val := range parsed {
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("field %q is not a string", key), Err: err}
		}
		fields[key] = s
		actual = append(actual, key)
	}
	sort.Strings(actual)

	want := append([]string(nil), expected...)
	sort.Strings(want)

	if !equal(want, actual) {
		return nil, &SchemaMismatchError{Expected: want, Actual: actual}
	}

	return fields, nil
}

func equal(a, b []string) bool {
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
