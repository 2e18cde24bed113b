package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_InvalidProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "gemini", APIKey: "test"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrConfiguration))
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	for _, p := range []Provider{Anthropic, OpenAI} {
		_, err := NewClient(Config{Provider: p})
		require.Error(t, err, p)
		assert.True(t, errors.Is(err, scribeerr.ErrConfiguration))
		assert.Contains(t, err.Error(), KeyEnv(p))
	}
}

func TestNewClient_SelectsProvider(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, Anthropic, c.Provider())

	c, err = NewClient(Config{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, OpenAI, c.Provider())
	assert.NoError(t, c.Close())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, Anthropic, cfg.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20240620", DefaultModel(Anthropic))
	assert.Equal(t, "gpt-4o", DefaultModel(OpenAI))
}

func TestEstimateCost(t *testing.T) {
	cost := EstimateCost("gpt-4o-mini", 1000, 500)
	// gpt-4o-mini: $0.15/1M in, $0.60/1M out
	expected := 0.00015 + 0.0003
	assert.InDelta(t, expected, cost, expected*0.1)

	assert.Equal(t, EstimateCost("gpt-4o", 1000, 1000), EstimateCost("gpt-4o-2024-08-06", 1000, 1000))
	assert.Zero(t, EstimateCost("unknown-model", 1000, 500))
}

func TestClaudeGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-5-sonnet-20240620", req.Model)
		assert.Equal(t, DefaultSystem, req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "write a commit", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"type": "message",
			"model": "claude-3-5-sonnet-20240620",
			"content": [{"type": "text", "text": "  feat: add login  "}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Provider: Anthropic, APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := Text(context.Background(), c, "write a commit", "")
	require.NoError(t, err)
	assert.Equal(t, "feat: add login", resp.Content)
	assert.Equal(t, 12, resp.TokensIn)
	assert.Equal(t, 5, resp.TokensOut)
	assert.Positive(t, resp.Cost)
}

func TestClaudeGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	calls := 0
	c, err := NewClient(Config{Provider: Anthropic, APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	c = &countingClient{Client: c, calls: &calls}

	_, err = Text(context.Background(), c, "p", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrGeneration))
	assert.Contains(t, err.Error(), "slow down")
	assert.Equal(t, 1, calls, "generation must not retry")
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req openaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be terse", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{
			"model": "gpt-4o-2024-08-06",
			"choices": [{"message": {"role": "assistant", "content": "Add login"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 2}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Provider: OpenAI, APIKey: "secret", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	resp, err := Text(context.Background(), c, "title please", "be terse")
	require.NoError(t, err)
	assert.Equal(t, "Add login", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestOpenAIGenerate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Provider: OpenAI, APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = Text(context.Background(), c, "p", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrGeneration))
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClaudeGenerate_MaxTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"type": "message",
			"model": "claude-3-5-sonnet-20240620",
			"content": [{"type": "text", "text": "feat: add half a"}],
			"stop_reason": "max_tokens",
			"usage": {"input_tokens": 12, "output_tokens": 4096}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Provider: Anthropic, APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := Text(context.Background(), c, "write a commit", "")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, scribeerr.ErrGeneration))
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestOpenAIGenerate_Length(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"model": "gpt-4o",
			"choices": [{"message": {"role": "assistant", "content": "## Summary\nThis PR"}, "finish_reason": "length"}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 4096}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Provider: OpenAI, APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := Text(context.Background(), c, "describe", "")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, scribeerr.ErrGeneration))
	assert.Contains(t, err.Error(), "length")
}

func TestText_EmptyContent(t *testing.T) {
	c := &mockClient{generateFn: func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{Content: "   \n"}, nil
	}}
	_, err := Text(context.Background(), c, "p", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scribeerr.ErrGeneration))
}

type mockClient struct {
	generateFn func(ctx context.Context, req *Request) (*Response, error)
}

func (m *mockClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	return m.generateFn(ctx, req)
}
func (m *mockClient) Provider() Provider { return "mock" }
func (m *mockClient) Close() error       { return nil }

type countingClient struct {
	Client
	calls *int
}

func (c *countingClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	*c.calls++
	return c.Client.Generate(ctx, req)
}
