// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads and models the topic taxonomy that drives generation.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// NotFoundError reports a lookup of an unknown category or topic.
type NotFoundError struct {
	Kind string // "category" or "topic"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.Name)
}

// Topic is one catalog entry: a stable identifier and the free-text
// description substituted into prompt templates.
type Topic struct {
	ID          string
	Description string
}

// Category groups topics under a name. Topics keep the order they appear in
// the catalog document.
type Category struct {
	Name   string
	topics []Topic
	byID   map[string]string
}

// Topics returns the category's topics in document order.
func (c *Category) Topics() []Topic {
	return c.topics
}

// Describe returns the description for a topic id.
func (c *Category) Describe(topicID string) (string, error) {
	desc, ok := c.byID[topicID]
	if !ok {
		return "", &NotFoundError{Kind: "topic", Name: topicID}
	}
	return desc, nil
}

// Catalog is the read-only topic taxonomy. It is constructed once by Load
// and safe for unsynchronized concurrent reads.
type Catalog struct {
	categories []Category
	byName     map[string]*Category
}

// Categories returns the categories in document order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Category looks up a category by name.
func (c *Catalog) Category(name string) (*Category, error) {
	cat, ok := c.byName[name]
	if !ok {
		return nil, &NotFoundError{Kind: "category", Name: name}
	}
	return cat, nil
}

// Len returns the total number of topics across all categories.
func (c *Catalog) Len() int {
	n := 0
	for _, cat := range c.categories {
		n += len(cat.topics)
	}
	return n
}

// Load reads a catalog document from path. The document is a JSON object of
// objects of strings: category name → { topic id → description }.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse builds a Catalog from a raw JSON document. Category and topic order
// follows the document, which json.Decoder exposes token by token (a plain
// map unmarshal would lose it).
func Parse(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("catalog root: %w", err)
	}

	c := &Catalog{byName: make(map[string]*Category)}
	seen := make(map[string]bool)

	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = true

		cat, err := parseCategory(dec, name)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}

		c.categories = append(c.categories, cat)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("catalog root: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing content after catalog document")
	}

	// Index after the slice stops growing so pointers stay valid.
	for i := range c.categories {
		c.byName[c.categories[i].Name] = &c.categories[i]
	}

	return c, nil
}

func parseCategory(dec *json.Decoder, name string) (Category, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return Category{}, err
	}

	cat := Category{Name: name, byID: make(map[string]string)}

	for dec.More() {
		id, err := nextKey(dec)
		if err != nil {
			return Category{}, err
		}
		if _, dup := cat.byID[id]; dup {
			return Category{}, fmt.Errorf("duplicate topic %q", id)
		}

		var desc string
		if err := dec.Decode(&desc); err != nil {
			return Category{}, fmt.Errorf("topic %q: description must be a string: %w", id, err)
		}

		cat.topics = append(cat.topics, Topic{ID: id, Description: desc})
		cat.byID[id] = desc
	}

	if err := expectDelim(dec, '}'); err != nil {
		return Category{}, err
	}
	return cat, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
