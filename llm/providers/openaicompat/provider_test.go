package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BaSui01/synthdoc/llm"
	"github.com/BaSui01/synthdoc/llm/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// New() constructor
// ---------------------------------------------------------------------------

func TestNew_Defaults(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		logger       *zap.Logger
		wantEndpoint string
		wantName     string
	}{
		{
			name:         "all defaults applied",
			cfg:          Config{ProviderName: "test"},
			wantEndpoint: "/v1/chat/completions",
			wantName:     "test",
		},
		{
			name:         "custom endpoint path preserved",
			cfg:          Config{ProviderName: "custom", EndpointPath: "/api/chat"},
			logger:       zap.NewNop(),
			wantEndpoint: "/api/chat",
			wantName:     "custom",
		},
		{
			name:         "empty name gets generic label",
			cfg:          Config{},
			wantEndpoint: "/v1/chat/completions",
			wantName:     "openai-compatible",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg, tt.logger)
			require.NotNil(t, p)
			assert.Equal(t, tt.wantEndpoint, p.Cfg.EndpointPath)
			assert.Equal(t, tt.wantName, p.Name())
			assert.NotNil(t, p.Client)
			assert.NotNil(t, p.Logger)
		})
	}
}

func TestProvider_ImplementsInterface(t *testing.T) {
	var _ llm.Provider = New(Config{}, nil)
}

// ---------------------------------------------------------------------------
// Completion
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestCompletion_Success(t *testing.T) {
	var captured providers.OpenAICompatRequest
	var authHeader string

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(providers.OpenAICompatResponse{
			ID:    "resp-1",
			Model: "gpt-test",
			Choices: []providers.OpenAICompatChoice{{
				FinishReason: "stop",
				Message:      providers.OpenAICompatMessage{Role: "assistant", Content: "[START DATA SAMPLE]<a/>[END DATA SAMPLE]"},
			}},
			Usage:   &providers.OpenAICompatUsage{PromptTokens: 3, CompletionTokens: 5, TotalTokens: 8},
			Created: 1700000000,
		})
	})

	p := New(Config{ProviderName: "test", APIKey: "sk-test", BaseURL: srv.URL + "/", DefaultModel: "gpt-test"}, nil)
	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", authHeader)
	assert.Equal(t, "gpt-test", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Nil(t, captured.Temperature)

	content, ok := resp.Content()
	require.True(t, ok)
	assert.Equal(t, "[START DATA SAMPLE]<a/>[END DATA SAMPLE]", content)
	assert.Equal(t, "test", resp.Provider)
	assert.Equal(t, 8, resp.Usage.TotalTokens)
	assert.Equal(t, time.Unix(1700000000, 0), resp.CreatedAt)
}

func TestCompletion_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_ = json.NewEncoder(w).Encode(providers.OpenAICompatResponse{
			Choices: []providers.OpenAICompatChoice{{Message: providers.OpenAICompatMessage{Content: "ok"}}},
		})
	})

	zero := 0.0
	p := New(Config{BaseURL: srv.URL, FallbackModel: "m"}, nil)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "x"}},
		Temperature: llm.Temperature(&zero),
	})
	require.NoError(t, err)

	temp, ok := raw["temperature"]
	require.True(t, ok, "temperature 0 must not be omitted")
	assert.Equal(t, float64(0), temp)
	assert.Equal(t, "m", raw["model"])
}

func TestCompletion_HTTPErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantCode      llm.ErrorCode
		wantRetryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, llm.ErrRateLimited, true},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, llm.ErrUnauthorized, false},
		{"upstream 503", http.StatusServiceUnavailable, "unavailable", llm.ErrUpstreamError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			p := New(Config{ProviderName: "test", BaseURL: srv.URL}, nil)
			_, err := p.Completion(context.Background(), &llm.ChatRequest{
				Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}},
			})
			require.Error(t, err)

			var llmErr *llm.Error
			require.ErrorAs(t, err, &llmErr)
			assert.Equal(t, tt.wantCode, llmErr.Code)
			assert.Equal(t, tt.status, llmErr.HTTPStatus)
			assert.Equal(t, tt.wantRetryable, llmErr.Retryable)
			assert.Equal(t, "test", llmErr.Provider)
		})
	}
}

func TestCompletion_EmptyChoices(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	p := New(Config{BaseURL: srv.URL}, nil)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}},
	})

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrEmptyResponse, llmErr.Code)
}

func TestCompletion_NoMessages(t *testing.T) {
	p := New(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{})

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrInvalidRequest, llmErr.Code)
}

func TestCompletion_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := New(Config{BaseURL: url}, nil)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}},
	})

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrUpstreamError, llmErr.Code)
	assert.True(t, llmErr.Retryable)
}
