// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate drives the full catalog through generation: for every
// (producer, category, topic) without an artifact it renders the producer's
// template, calls the backend, validates the response, and persists the
// result. Per-entry failures are isolated; only configuration errors abort
// the run.
package orchestrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/content-engine/internal/backend"
	"github.com/pdiddy/content-engine/internal/catalog"
	"github.com/pdiddy/content-engine/internal/history"
	"github.com/pdiddy/content-engine/internal/prompt"
	"github.com/pdiddy/content-engine/internal/schema"
	"github.com/pdiddy/content-engine/internal/store"
	"github.com/pdiddy/content-engine/pkg/types"
)

// backoffBase controls the base duration for exponential backoff between
// generation attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

const defaultMaxRetries = 3

// Producer is a resolved generation configuration: a template bound to a
// backend. Built from types.ProducerConfig by the CLI.
type Producer struct {
	// Name is the producer identifier; it prefixes every artifact key.
	Name string

	// Kind selects article (free text, .md) or record (validated JSON, .json).
	Kind types.ArtifactKind

	// Template is the prompt template rendered per catalog entry.
	Template prompt.Template

	// Backend generates text from rendered prompts.
	Backend backend.Backend

	// IdentifierField names the response field recorded into history after
	// each success. Empty disables history updates for this producer.
	IdentifierField string

	// Count is the value substituted for the {count} placeholder.
	Count int

	// MaxRetries bounds generation attempts per entry (default 3).
	MaxRetries int
}

// ext returns the artifact extension for the producer's kind.
func (p Producer) ext() string {
	if p.Kind == types.ArtifactRecord {
		return ".json"
	}
	return ".md"
}

// Options are per-run settings.
type Options struct {
	// Force regenerates entries whose artifacts already exist.
	Force bool

	// MaxEntries stops dispatching after this many generations (0 = unlimited).
	// Skipped entries do not count against the bound.
	MaxEntries int

	// Concurrency bounds the number of entries processed in parallel
	// (default 1).
	Concurrency int
}

// Failure records a terminally failed entry.
type Failure struct {
	Key    store.Key
	Reason string
}

// Report summarizes a run.
type Report struct {
	Succeeded  int
	Skipped    int
	Failed     int
	Duplicates int // identifiers returned by the backend despite history steering
	Failures   []Failure
}

// Total returns the number of entries processed.
func (r Report) Total() int {
	return r.Succeeded + r.Skipped + r.Failed
}

// HasFailures reports whether any entries failed.
func (r Report) HasFailures() bool {
	return r.Failed > 0
}

// Runner holds the collaborators shared by every entry in a run.
type Runner struct {
	Catalog   *catalog.Catalog
	Producers []Producer
	Store     *store.Store

	// History steers record producers away from previously generated
	// identifiers. Shared across workers; synchronized internally.
	History *history.Tracker

	// Ledger, when non-nil, persists new identifiers between runs.
	Ledger *history.Ledger
}

// entry is one unit of work: a producer applied to one catalog topic.
type entry struct {
	producer Producer
	category string
	topic    catalog.Topic
	key      store.Key
}

// Run walks the catalog for every producer. Entries with existing artifacts
// are skipped unless opts.Force is set, so repeated runs over an evolving
// catalog only generate what is missing. Progress lines are written to w.
//
// The returned error is non-nil only for configuration errors (a template
// placeholder with no variable), which abort the run; per-entry failures are
// aggregated into the Report instead.
func (r *Runner) Run(ctx context.Context, opts Options, w io.Writer) (Report, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		mu     sync.Mutex
		report Report
	)
	progress := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	dispatched := 0
dispatch:
	for _, p := range r.Producers {
		for _, cat := range r.Catalog.Categories() {
			for _, topic := range cat.Topics() {
				if gctx.Err() != nil {
					break dispatch
				}

				e := entry{
					producer: p,
					category: cat.Name,
					topic:    topic,
					key: store.Key{
						Producer: p.Name,
						Category: cat.Name,
						Topic:    topic.ID,
						Ext:      p.ext(),
					},
				}

				if !opts.Force && r.Store.Exists(e.key) {
					progress("skipped %s (already exists)\n", e.key)
					mu.Lock()
					report.Skipped++
					mu.Unlock()
					continue
				}

				if opts.MaxEntries > 0 && dispatched >= opts.MaxEntries {
					break dispatch
				}
				dispatched++

				g.Go(func() error {
					dups, err := r.processEntry(gctx, e, progress)

					mu.Lock()
					defer mu.Unlock()
					report.Duplicates += dups

					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						// Cancelled mid-entry: not a failure, just undone.
						return err
					}

					var mv *prompt.MissingVariableError
					if errors.As(err, &mv) {
						// Catalog/template mismatch: fatal for the whole run.
						report.Failed++
						report.Failures = append(report.Failures, Failure{Key: e.key, Reason: err.Error()})
						return err
					}
					if err != nil {
						report.Failed++
						report.Failures = append(report.Failures, Failure{Key: e.key, Reason: err.Error()})
						fmt.Fprintf(w, "failed  %s: %v\n", e.key, err)
						return nil
					}

					report.Succeeded++
					return nil
				})
			}
		}
	}

	err := g.Wait()

	fmt.Fprintf(w, "\nsucceeded: %d, skipped: %d, failed: %d\n",
		report.Succeeded, report.Skipped, report.Failed)
	if report.Duplicates > 0 {
		fmt.Fprintf(w, "duplicate identifiers: %d\n", report.Duplicates)
	}

	if err != nil {
		return report, fmt.Errorf("run aborted: %w", err)
	}
	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	return report, nil
}

// processEntry runs one entry through render → generate → validate → persist
// with bounded retries. The prompt is re-rendered on each attempt so a fresh
// history snapshot steers the backend away from just-rejected duplicates.
func (r *Runner) processEntry(ctx context.Context, e entry, progress func(string, ...any)) (dups int, err error) {
	p := e.producer

	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	progress("generating %s (%q)\n", e.key, e.topic.Description)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return dups, ctx.Err()
			case <-time.After(backoff):
			}
		}

		rendered, err := p.Template.Render(r.variables(e))
		if err != nil {
			// MissingVariableError: not a per-item problem; bubble up fatal.
			return dups, err
		}

		raw, err := p.Backend.Generate(ctx, rendered)
		if err != nil {
			if ctx.Err() != nil {
				return dups, ctx.Err()
			}
			lastErr = err
			continue
		}

		content, ids, err := r.acceptResponse(p, raw)
		if err != nil {
			lastErr = err
			continue
		}

		for _, id := range ids {
			if !r.History.Add(id) {
				dups++
			}
		}
		if r.Ledger != nil && len(ids) > 0 {
			if err := r.Ledger.Append(ctx, p.Name, ids); err != nil {
				progress("warning: history ledger update failed for %s: %v\n", e.key, err)
			}
		}

		if err := r.Store.Write(e.key, content); err != nil {
			// Store errors are terminal for the entry; retrying the backend
			// will not fix the filesystem.
			return dups, err
		}

		progress("persisted %s\n", e.key)
		return dups, nil
	}

	return dups, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// acceptResponse validates a raw backend response per the producer's kind
// and returns the artifact content plus any new history identifiers.
func (r *Runner) acceptResponse(p Producer, raw string) ([]byte, []string, error) {
	if p.Kind != types.ArtifactRecord {
		return []byte(schema.Normalize(raw)), nil, nil
	}

	fields, err := schema.Validate(raw, p.Template.Fields)
	if err != nil {
		return nil, nil, err
	}

	content, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling record: %w", err)
	}
	content = append(content, '\n')

	return content, identifiers(p, fields), nil
}

// identifiers extracts the history identifiers from a validated record.
// IdentifierField "*" records every field value, for templates whose whole
// response is a batch of names.
func identifiers(p Producer, fields map[string]string) []string {
	var ids []string
	switch p.IdentifierField {
	case "":
	case "*":
		for _, f := range p.Template.Fields {
			if v := fields[f]; v != "" {
				ids = append(ids, v)
			}
		}
	default:
		if v := fields[p.IdentifierField]; v != "" {
			ids = append(ids, v)
		}
	}
	return ids
}

// variables assembles the substitution mapping for one entry. Every template
// draws a subset of this shared set; unreferenced keys are ignored by Render.
func (r *Runner) variables(e entry) map[string]string {
	return map[string]string{
		"category":    e.category,
		"topic":       e.topic.ID,
		"description": e.topic.Description,
		"count":       strconv.Itoa(e.producer.Count),
		"history":     strings.Join(r.History.Snapshot(), ", "),
	}
}
