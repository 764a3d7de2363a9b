// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func TestNew(t *testing.T) {
	b, err := New(types.AIConfig{Provider: types.ProviderClaude, Model: "m"}, false, nil)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeBackend{}, b)

	b, err = New(types.AIConfig{Provider: types.ProviderOpenAI, Model: "m"}, true, nil)
	require.NoError(t, err)
	require.IsType(t, &OpenAIBackend{}, b)
	assert.True(t, b.(*OpenAIBackend).JSONObject)

	_, err = New(types.AIConfig{Provider: "ollama", Model: "m"}, false, nil)
	assert.Error(t, err)
}

func TestClaudeBackend_Generate(t *testing.T) {
	var gotReq claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "content-engine-test/0.1", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(claudeResponse{Content: []claudeContent{
			{Type: "thinking", Text: "hmm"},
			{Type: "text", Text: "# Article\n\nbody"},
		}})
	}))
	defer ts.Close()

	origURL := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = origURL }()

	b := &ClaudeBackend{APIKey: "test-key", Model: "claude-test", UserAgent: "content-engine-test/0.1", Client: ts.Client()}
	got, err := b.Generate(context.Background(), "write about cmake")
	require.NoError(t, err)

	assert.Equal(t, "# Article\n\nbody", got)
	assert.Equal(t, "claude-test", gotReq.Model)
	assert.Equal(t, 4096, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "write about cmake", gotReq.Messages[0].Content)
}

func TestClaudeBackend_ErrorStatuses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "bad request"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	origURL := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = origURL }()

	b := &ClaudeBackend{APIKey: "k", Model: "m", Client: ts.Client()}
	_, err := b.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "400")
}

func TestClaudeBackend_RetriesOverloaded(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(529)
			return
		}
		json.NewEncoder(w).Encode(claudeResponse{Content: []claudeContent{{Type: "text", Text: "ok"}}})
	}))
	defer ts.Close()

	origURL := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = origURL }()

	b := &ClaudeBackend{APIKey: "k", Model: "m", Client: ts.Client()}
	got, err := b.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAIBackend_Generate(t *testing.T) {
	var gotReq openAIRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(openAIResponse{Choices: []openAIChoice{
			{Message: openAIMessage{Role: "assistant", Content: `{"song1": "Neon Nights"}`}},
		}})
	}))
	defer ts.Close()

	origURL := openAIAPIURL
	openAIAPIURL = ts.URL
	defer func() { openAIAPIURL = origURL }()

	b := &OpenAIBackend{APIKey: "test-key", Model: "gpt-4o-mini", JSONObject: true, Client: ts.Client()}
	got, err := b.Generate(context.Background(), "generate 5 song names")
	require.NoError(t, err)

	assert.Equal(t, `{"song1": "Neon Nights"}`, got)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
}

func TestOpenAIBackend_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(openAIResponse{})
	}))
	defer ts.Close()

	origURL := openAIAPIURL
	openAIAPIURL = ts.URL
	defer func() { openAIAPIURL = origURL }()

	b := &OpenAIBackend{APIKey: "k", Model: "m", Client: ts.Client()}
	_, err := b.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "no choices")
}
