// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend abstracts the generative text API so the orchestrator and
// tests can supply alternatives. Each implementation turns one rendered
// prompt into one raw response string. Per Strategy pattern.
package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Backend generates text from a rendered prompt. Responses for the same
// prompt may differ between calls; the caller owns validation.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the Backend for an AI configuration. structured requests a
// JSON-object response where the provider supports enforcing one.
func New(cfg types.AIConfig, structured bool, client *http.Client) (Backend, error) {
	switch cfg.Provider {
	case types.ProviderClaude:
		return &ClaudeBackend{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			UserAgent: cfg.UserAgent,
			Client:    client,
		}, nil
	case types.ProviderOpenAI:
		return &OpenAIBackend{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			MaxTokens:  cfg.MaxTokens,
			UserAgent:  cfg.UserAgent,
			JSONObject: structured,
			Client:     client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
}
