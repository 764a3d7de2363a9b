// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "content-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Provider identifies the generative API a producer talks to.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
)

// AIConfig holds shared settings for calls to a generative AI API.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend API: claude or openai.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929", "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens caps the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ArtifactKind selects how a producer's responses are handled and stored.
type ArtifactKind string

const (
	// ArtifactArticle stores the raw response text as a Markdown file.
	ArtifactArticle ArtifactKind = "article"

	// ArtifactRecord parses the response as a flat JSON object, validates it
	// against the template's declared fields, and stores it as JSON.
	ArtifactRecord ArtifactKind = "record"
)

// ProducerConfig describes one generation configuration. Each producer owns
// an artifact namespace: the same catalog walked by two producers yields two
// disjoint artifact trees.
type ProducerConfig struct {
	// Name is the producer identifier used in artifact paths. Colons are
	// replaced with underscores on disk, so model names are valid producer
	// names (e.g. "gemma3:4b" → "gemma3_4b").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Kind selects article or record output.
	Kind ArtifactKind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// Template names the prompt template in the template library.
	Template string `json:"template" yaml:"template" mapstructure:"template"`

	// IdentifierField names the response field whose value is recorded in
	// the history ledger after each success (record producers only).
	// "*" records every field value.
	IdentifierField string `json:"identifier_field,omitempty" yaml:"identifier_field,omitempty" mapstructure:"identifier_field"`

	// Count is the item count substituted for the {count} placeholder, for
	// templates that request several items per call.
	Count int `json:"count,omitempty" yaml:"count,omitempty" mapstructure:"count"`

	// AI overrides the run-level AI settings for this producer. Zero-value
	// fields fall back to the run-level values.
	AI AIConfig `json:"ai,omitempty" yaml:"ai,omitempty" mapstructure:"ai"`
}

// GenerationConfig holds settings for a generation run.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// CatalogFile is the path to the topic catalog JSON document.
	CatalogFile string `json:"catalog_file" yaml:"catalog_file" mapstructure:"catalog_file"`

	// PromptsFile is the path to the prompt template library YAML.
	PromptsFile string `json:"prompts_file" yaml:"prompts_file" mapstructure:"prompts_file"`

	// OutputDir is the artifact store root (e.g. "output/").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// HistoryDB is the path to the history ledger database
	// (e.g. "output/history.db"). Empty disables the persistent ledger.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty" mapstructure:"history_db"`

	// Concurrency bounds the number of catalog entries processed in
	// parallel (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// Producers lists the generation configurations to run over the catalog.
	Producers []ProducerConfig `json:"producers" yaml:"producers" mapstructure:"producers"`
}

// Resolve merges producer-level AI overrides over the run-level defaults.
func (p ProducerConfig) Resolve(base AIConfig) AIConfig {
	out := base
	if p.AI.Timeout > 0 {
		out.Timeout = p.AI.Timeout
	}
	if p.AI.UserAgent != "" {
		out.UserAgent = p.AI.UserAgent
	}
	if p.AI.Provider != "" {
		out.Provider = p.AI.Provider
	}
	if p.AI.Model != "" {
		out.Model = p.AI.Model
	}
	if p.AI.APIKey != "" {
		out.APIKey = p.AI.APIKey
	}
	if p.AI.MaxTokens > 0 {
		out.MaxTokens = p.AI.MaxTokens
	}
	if p.AI.MaxRetries > 0 {
		out.MaxRetries = p.AI.MaxRetries
	}
	return out
}
