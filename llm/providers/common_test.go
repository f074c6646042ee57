package providers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/BaSui01/synthdoc/llm"
	"github.com/stretchr/testify/assert"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		msg       string
		wantCode  llm.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, "bad key", llm.ErrUnauthorized, false},
		{http.StatusForbidden, "nope", llm.ErrForbidden, false},
		{http.StatusTooManyRequests, "slow", llm.ErrRateLimited, true},
		{http.StatusBadRequest, "Quota exceeded", llm.ErrQuotaExceeded, false},
		{http.StatusBadRequest, "bad field", llm.ErrInvalidRequest, false},
		{http.StatusGatewayTimeout, "timeout", llm.ErrUpstreamTimeout, true},
		{http.StatusBadGateway, "bad gateway", llm.ErrUpstreamError, true},
		{529, "overloaded", llm.ErrModelOverloaded, true},
		{http.StatusInternalServerError, "boom", llm.ErrUpstreamError, true},
		{http.StatusNotFound, "missing", llm.ErrUpstreamError, false},
	}

	for _, tt := range tests {
		err := MapHTTPError(tt.status, tt.msg, "p")
		assert.Equal(t, tt.wantCode, err.Code, "status %d", tt.status)
		assert.Equal(t, tt.retryable, err.Retryable, "status %d", tt.status)
		assert.Equal(t, tt.status, err.HTTPStatus)
		assert.Equal(t, "p", err.Provider)
	}
}

func TestReadErrorMessage(t *testing.T) {
	assert.Equal(t, "invalid model (type: invalid_request_error)",
		ReadErrorMessage(strings.NewReader(`{"error":{"message":"invalid model","type":"invalid_request_error"}}`)))
	assert.Equal(t, "plain failure", ReadErrorMessage(strings.NewReader("plain failure\n")))
}

func TestChooseModel(t *testing.T) {
	assert.Equal(t, "req", ChooseModel(&llm.ChatRequest{Model: "req"}, "def", "fb"))
	assert.Equal(t, "def", ChooseModel(&llm.ChatRequest{}, "def", "fb"))
	assert.Equal(t, "fb", ChooseModel(nil, "", "fb"))
}

func TestToChatResponse(t *testing.T) {
	resp := ToChatResponse(OpenAICompatResponse{
		ID:    "id-1",
		Model: "m",
		Choices: []OpenAICompatChoice{{
			Index:        0,
			FinishReason: "stop",
			Message:      OpenAICompatMessage{Role: "assistant", Content: "hello"},
		}},
		Usage: &OpenAICompatUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}, "p")

	content, ok := resp.Content()
	assert.True(t, ok)
	assert.Equal(t, "hello", content)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
	assert.Equal(t, "p", resp.Provider)
}
