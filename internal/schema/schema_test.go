// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"errors"
	"testing"
)

var themeFields = []string{"description", "narrative1", "narrative2", "mood"}

func TestValidate_ExactMatch(t *testing.T) {
	raw := `{"description": "a beach at night", "narrative1": "waves", "narrative2": "stars", "mood": "wistful"}`

	fields, err := Validate(raw, themeFields)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(fields) != 4 {
		t.Fatalf("got %d fields, want 4", len(fields))
	}
	if fields["mood"] != "wistful" {
		t.Errorf("mood = %q", fields["mood"])
	}
}

func TestValidate_Mismatches(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing field", `{"description": "x", "narrative1": "y", "narrative2": "z"}`},
		{"extra field", `{"description": "x", "narrative1": "y", "narrative2": "z", "mood": "m", "tempo": "120"}`},
		{"renamed field", `{"description": "x", "narrative1": "y", "narrative2": "z", "vibe": "m"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw, themeFields)
			var sm *SchemaMismatchError
			if !errors.As(err, &sm) {
				t.Fatalf("error = %v, want SchemaMismatchError", err)
			}
			if len(sm.Expected) != 4 {
				t.Errorf("Expected = %v", sm.Expected)
			}
		})
	}
}

func TestValidate_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "here are your songs!"},
		{"json array", `["a", "b"]`},
		{"nested object value", `{"description": {"inner": "x"}}`},
		{"numeric value", `{"description": 42}`},
		{"truncated", `{"description": "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw, themeFields)
			var mr *MalformedResponseError
			if !errors.As(err, &mr) {
				t.Fatalf("error = %v, want MalformedResponseError", err)
			}
		})
	}
}

func TestValidate_NormalizesSmartQuotes(t *testing.T) {
	raw := "{\"song1\": \"Don’t Stop\", \"song2\": \"“Neon” Nights…\"}"

	fields, err := Validate(raw, []string{"song1", "song2"})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if fields["song1"] != "Don't Stop" {
		t.Errorf("song1 = %q", fields["song1"])
	}
	if fields["song2"] != "'Neon' Nights..." {
		t.Errorf("song2 = %q", fields["song2"])
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("‘a’ “b” c…")
	if got != "'a' 'b' c..." {
		t.Errorf("Normalize = %q", got)
	}
}
