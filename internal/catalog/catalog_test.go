// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleDoc = `{
	"cmake": {
		"01_cmake": "setting up c++ projects with cmake",
		"02_targets": "cmake targets and properties"
	},
	"concurrency": {
		"01_jthread": "std::jthread and cooperative cancellation"
	}
}`

func TestParse_OrderAndLookups(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cats := c.Categories()
	if len(cats) != 2 {
		t.Fatalf("got %d categories, want 2", len(cats))
	}
	if cats[0].Name != "cmake" || cats[1].Name != "concurrency" {
		t.Errorf("category order = %q, %q; want cmake, concurrency", cats[0].Name, cats[1].Name)
	}

	topics := cats[0].Topics()
	if len(topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(topics))
	}
	if topics[0].ID != "01_cmake" || topics[1].ID != "02_targets" {
		t.Errorf("topic order = %q, %q; want 01_cmake, 02_targets", topics[0].ID, topics[1].ID)
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	cat, err := c.Category("cmake")
	if err != nil {
		t.Fatalf("Category(cmake): %v", err)
	}
	desc, err := cat.Describe("01_cmake")
	if err != nil {
		t.Fatalf("Describe(01_cmake): %v", err)
	}
	if desc != "setting up c++ projects with cmake" {
		t.Errorf("Describe = %q", desc)
	}
}

func TestParse_UnknownLookups(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = c.Category("rust")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Category(rust) error = %v, want NotFoundError", err)
	}
	if nf.Kind != "category" || nf.Name != "rust" {
		t.Errorf("NotFoundError = %+v", nf)
	}

	cat, _ := c.Category("cmake")
	_, err = cat.Describe("99_missing")
	if !errors.As(err, &nf) {
		t.Fatalf("Describe(99_missing) error = %v, want NotFoundError", err)
	}
	if nf.Kind != "topic" {
		t.Errorf("NotFoundError.Kind = %q, want topic", nf.Kind)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `["cmake"]`},
		{"non-string description", `{"cmake": {"01_cmake": 42}}`},
		{"category not object", `{"cmake": "oops"}`},
		{"duplicate category", `{"cmake": {}, "cmake": {}}`},
		{"duplicate category with topics", `{"cmake": {"a": "x"}, "cmake": {"b": "y"}}`},
		{"duplicate topic", `{"cmake": {"a": "x", "a": "y"}}`},
		{"truncated", `{"cmake": {"a": "x"`},
		{"trailing content", `{"cmake": {"a": "x"}} extra`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.doc)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load(missing) succeeded, want error")
	}
}
