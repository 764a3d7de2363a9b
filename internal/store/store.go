// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists generated artifacts keyed by (producer, category,
// topic). The same key always maps to the same path across runs, and writes
// are atomic: readers never observe a partially written artifact.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key identifies one artifact.
type Key struct {
	// Producer is the generation configuration name.
	Producer string

	// Category is the catalog category name.
	Category string

	// Topic is the topic id within the category.
	Topic string

	// Ext is the artifact file extension, including the dot (".md", ".json").
	Ext string
}

// String renders the key for progress output and reports.
func (k Key) String() string {
	return k.Producer + "/" + k.Category + "/" + k.Topic
}

// Store is a filesystem artifact store rooted at one output directory.
type Store struct {
	root string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Path derives the storage location for a key:
// <root>/<producer>/<category>/<topic><ext>. Producer names may contain
// colons (model names like "gemma3:4b"), which are replaced with underscores.
func (s *Store) Path(k Key) string {
	return filepath.Join(s.root, sanitize(k.Producer), sanitize(k.Category), sanitize(k.Topic)+k.Ext)
}

// Exists reports whether an artifact has already been written for the key.
func (s *Store) Exists(k Key) bool {
	_, err := os.Stat(s.Path(k))
	return err == nil
}

// Read returns the artifact content for the key.
func (s *Store) Read(k Key) ([]byte, error) {
	data, err := os.ReadFile(s.Path(k))
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", k, err)
	}
	return data, nil
}

// Write persists content for the key, overwriting any prior artifact. The
// content lands in a temp file in the destination directory and is renamed
// into place, so concurrent readers see either the old artifact or the new
// one, never a truncated file.
func (s *Store) Write(k Key, content []byte) error {
	dest := s.Path(k)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(content)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing artifact %s: %w", k, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("moving artifact into place: %w", err)
	}
	return nil
}

// sanitize makes a key component safe for use as a path segment.
func sanitize(component string) string {
	component = strings.ReplaceAll(component, ":", "_")
	component = strings.ReplaceAll(component, string(os.PathSeparator), "_")
	return component
}
