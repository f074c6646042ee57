package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
}

func (p *stubProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{
		Provider: p.name,
		Model:    req.Model,
		Choices: []ChatChoice{{
			Message: Message{Role: RoleAssistant, Content: "ok"},
		}},
	}, nil
}

func (p *stubProvider) Name() string { return p.name }

func TestProviderRegistry_Resolve(t *testing.T) {
	t.Parallel()

	r := NewProviderRegistry()
	r.Register("a", &stubProvider{name: "a"})
	r.Register("b", &stubProvider{name: "b"})

	_, err := r.Resolve("")
	require.Error(t, err)

	require.NoError(t, r.SetDefault("b"))
	p, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "b", p.Name())

	p, err = r.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name())

	_, err = r.Resolve("missing")
	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrProviderUnavailable, llmErr.Code)
	assert.Contains(t, llmErr.Message, "[a b]")

	assert.Error(t, r.SetDefault("missing"))
	assert.Equal(t, []string{"a", "b"}, r.List())
}

func TestChatResponse_Content(t *testing.T) {
	t.Parallel()

	var nilResp *ChatResponse
	_, ok := nilResp.Content()
	assert.False(t, ok)

	resp, err := (&stubProvider{name: "s"}).Completion(context.Background(), &ChatRequest{Model: "m"})
	require.NoError(t, err)
	content, ok := resp.Content()
	assert.True(t, ok)
	assert.Equal(t, "ok", content)
}

func TestTemperature(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Temperature(nil))
	zero := 0.0
	got := Temperature(&zero)
	require.NotNil(t, got)
	assert.Equal(t, float32(0), *got)
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &Error{Code: ErrRateLimited, Message: "slow down", Provider: "deepseek"}
	assert.Equal(t, "LLM_RATE_LIMITED (deepseek): slow down", err.Error())
	err.Provider = ""
	assert.Equal(t, "LLM_RATE_LIMITED: slow down", err.Error())
}
