// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/internal/backend"
	"github.com/pdiddy/content-engine/internal/catalog"
	"github.com/pdiddy/content-engine/internal/history"
	"github.com/pdiddy/content-engine/internal/orchestrate"
	"github.com/pdiddy/content-engine/internal/prompt"
	"github.com/pdiddy/content-engine/internal/secrets"
	"github.com/pdiddy/content-engine/internal/store"
	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultUserAgent = "content-engine/0.1"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate artifacts for every catalog entry without one",
	Long: `Generate walks the catalog for each configured producer, renders the
producer's prompt template per topic, calls the AI backend, validates the
response, and writes the artifact under the output directory.

Entries with existing artifacts are skipped unless --force is set. Transient
backend failures and schema-mismatched responses are retried with backoff;
entries that exhaust their retries are reported at the end without aborting
the rest of the batch.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("catalog", "", "topic catalog JSON file (default features.json)")
	generateCmd.Flags().String("prompts", "", "prompt template library YAML file (default prompts.yaml)")
	generateCmd.Flags().String("output-dir", "", "artifact store root (default output)")
	generateCmd.Flags().String("history-db", "", "history ledger database path (empty disables persistence)")
	generateCmd.Flags().String("provider", "", "AI provider: claude or openai")
	generateCmd.Flags().String("model", "", "AI model identifier")
	generateCmd.Flags().Bool("force", false, "regenerate entries whose artifacts already exist")
	generateCmd.Flags().Int("max-entries", 0, "stop after this many generations (0 = unlimited)")
	generateCmd.Flags().Int("concurrency", 0, "catalog entries processed in parallel (default 1)")
	generateCmd.Flags().Duration("timeout", 0, "per-call HTTP timeout (default 120s)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := generationConfig(cmd)

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	lib, err := prompt.LoadLibrary(cfg.PromptsFile)
	if err != nil {
		return err
	}

	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.Timeout = timeout
	}
	client := &http.Client{Timeout: cfg.Timeout}

	producers, err := buildProducers(cfg, lib, client)
	if err != nil {
		return err
	}

	runner := &orchestrate.Runner{
		Catalog:   cat,
		Producers: producers,
		Store:     store.New(cfg.OutputDir),
		History:   history.NewTracker(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HistoryDB != "" {
		ledger, err := history.OpenLedger(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer ledger.Close()

		prior, err := ledger.Load(ctx)
		if err != nil {
			return err
		}
		runner.History = history.NewTracker(prior...)
		runner.Ledger = ledger
	}

	force, _ := cmd.Flags().GetBool("force")
	maxEntries, _ := cmd.Flags().GetInt("max-entries")

	report, err := runner.Run(ctx, orchestrate.Options{
		Force:       force,
		MaxEntries:  maxEntries,
		Concurrency: cfg.Concurrency,
	}, os.Stdout)
	if err != nil {
		return err
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s: %s\n", f.Key, f.Reason)
	}
	if report.HasFailures() {
		return fmt.Errorf("%d entr(ies) failed generation", report.Failed)
	}
	return nil
}

// generationConfig merges the config file with command-line overrides.
func generationConfig(cmd *cobra.Command) types.GenerationConfig {
	cfg := types.GenerationConfig{
		AIConfig: types.AIConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("timeout"),
				UserAgent: viper.GetString("user_agent"),
			},
			Provider:   types.Provider(viper.GetString("provider")),
			Model:      viper.GetString("model"),
			APIKey:     viper.GetString("api_key"),
			MaxTokens:  viper.GetInt("max_tokens"),
			MaxRetries: viper.GetInt("max_retries"),
		},
		CatalogFile: viper.GetString("catalog_file"),
		PromptsFile: viper.GetString("prompts_file"),
		OutputDir:   viper.GetString("output_dir"),
		HistoryDB:   viper.GetString("history_db"),
		Concurrency: viper.GetInt("concurrency"),
	}
	viper.UnmarshalKey("producers", &cfg.Producers)

	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogFile = v
	}
	if v, _ := cmd.Flags().GetString("prompts"); v != "" {
		cfg.PromptsFile = v
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if v, _ := cmd.Flags().GetString("history-db"); v != "" {
		cfg.HistoryDB = v
	}
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.Provider = types.Provider(v)
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Concurrency = v
	}

	if cfg.CatalogFile == "" {
		cfg.CatalogFile = "features.json"
	}
	if cfg.PromptsFile == "" {
		cfg.PromptsFile = "prompts.yaml"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return cfg
}

// buildProducers resolves each configured producer to a template and a
// backend. With no producers configured, a single article producer named
// after the model is used, matching the simplest catalog-to-articles setup.
func buildProducers(cfg types.GenerationConfig, lib *prompt.Library, client *http.Client) ([]orchestrate.Producer, error) {
	configs := cfg.Producers
	if len(configs) == 0 {
		configs = []types.ProducerConfig{{
			Name:     cfg.Model,
			Kind:     types.ArtifactArticle,
			Template: "article",
		}}
	}

	producers := make([]orchestrate.Producer, 0, len(configs))
	for _, pc := range configs {
		if pc.Name == "" {
			return nil, fmt.Errorf("producer with empty name in configuration")
		}

		ai := pc.Resolve(cfg.AIConfig)
		ai.APIKey = resolveAPIKey(ai)
		if ai.APIKey == "" {
			return nil, fmt.Errorf("producer %q: no API key for provider %q (set api_key or add a .secrets/ file)", pc.Name, ai.Provider)
		}

		tmpl, err := lib.Get(pc.Template)
		if err != nil {
			return nil, fmt.Errorf("producer %q: %w", pc.Name, err)
		}
		if pc.Kind == types.ArtifactRecord && !tmpl.Structured() {
			return nil, fmt.Errorf("producer %q: record producer needs a template with declared fields", pc.Name)
		}

		b, err := backend.New(ai, pc.Kind == types.ArtifactRecord, client)
		if err != nil {
			return nil, fmt.Errorf("producer %q: %w", pc.Name, err)
		}

		producers = append(producers, orchestrate.Producer{
			Name:            pc.Name,
			Kind:            pc.Kind,
			Template:        tmpl,
			Backend:         b,
			IdentifierField: pc.IdentifierField,
			Count:           pc.Count,
			MaxRetries:      ai.MaxRetries,
		})
	}
	return producers, nil
}

// resolveAPIKey falls back from the configured key to the provider's
// .secrets/ file.
func resolveAPIKey(ai types.AIConfig) string {
	switch ai.Provider {
	case types.ProviderClaude:
		return secrets.Resolve(loadedSecrets, secrets.KeyAnthropic, ai.APIKey)
	case types.ProviderOpenAI:
		return secrets.Resolve(loadedSecrets, secrets.KeyOpenAI, ai.APIKey)
	default:
		return ai.APIKey
	}
}
