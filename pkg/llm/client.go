// Package llm provides a single interface over the text-generation providers
// gitscribe supports: Anthropic and OpenAI.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/cockroachdb/errors"
)

// Provider represents an LLM provider.
type Provider string

const (
	Anthropic Provider = "anthropic"
	OpenAI    Provider = "openai"
)

// DefaultSystem is the system instruction used when the caller passes none.
const DefaultSystem = "You are a helpful assistant."

// DefaultModel returns the model used for p when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case OpenAI:
		return "gpt-4o"
	default:
		return "claude-3-5-sonnet-20240620"
	}
}

// KeyEnv returns the environment variable holding the API key for p.
func KeyEnv(p Provider) string {
	switch p {
	case OpenAI:
		return "OPENAI_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

// ParseProvider normalizes a provider name. The empty string selects Anthropic.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Anthropic, nil
	case Anthropic, OpenAI:
		return p, nil
	default:
		return "", scribeerr.Configuration(
			errors.Newf("unsupported model provider %q", s),
			`set MODEL_PROVIDER to "anthropic" or "openai"`)
	}
}

// Config holds configuration for an LLM client.
type Config struct {
	Provider    Provider      `yaml:"provider" json:"provider" env:"MODEL_PROVIDER"`
	Model       string        `yaml:"model" json:"model" env:"GITSCRIBE_MODEL"`
	APIKey      string        `yaml:"-" json:"-"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64       `yaml:"temperature" json:"temperature"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  Anthropic,
		Timeout:   90 * time.Second,
		MaxTokens: 4096,
	}
}

// Client is the unified interface for LLM interactions.
type Client interface {
	// Generate sends a prompt and returns the LLM response.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Provider returns the name of the provider.
	Provider() Provider

	// Close releases any resources held by the client.
	Close() error
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"` // "user", "assistant"
	Content string `json:"content"`
}

// Request holds the parameters for an LLM generation request.
type Request struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Response holds the result of an LLM generation.
type Response struct {
	Content      string  `json:"content"`
	FinishReason string  `json:"finish_reason,omitempty"`
	TokensIn     int     `json:"tokens_in"`
	TokensOut    int     `json:"tokens_out"`
	Cost         float64 `json:"cost"`
	Model        string  `json:"model"`
	LatencyMs    int64   `json:"latency_ms"`
}

// NewClient creates a client for the configured provider. A missing API key
// is a configuration error so callers can fail before doing any work.
func NewClient(cfg Config) (Client, error) {
	p, err := ParseProvider(string(cfg.Provider))
	if err != nil {
		return nil, err
	}
	cfg.Provider = p
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(p)
	}
	if cfg.APIKey == "" {
		env := KeyEnv(p)
		return nil, scribeerr.Configuration(
			errors.Newf("%s is not set", env),
			fmt.Sprintf("export %s or add it to a .env file", env))
	}

	switch p {
	case OpenAI:
		return newOpenAIClient(cfg), nil
	default:
		return newClaudeClient(cfg), nil
	}
}

// Text sends a single user prompt with a system instruction and returns the
// generated text. It is the only call the gitscribe pipelines make.
func Text(ctx context.Context, c Client, prompt, system string) (*Response, error) {
	if system == "" {
		system = DefaultSystem
	}
	resp, err := c.Generate(ctx, &Request{
		System:   system,
		Messages: []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, scribeerr.Generation(errors.Wrapf(err, "%s generation", c.Provider()))
	}
	if cutOff(resp.FinishReason) {
		return nil, scribeerr.Generation(errors.Newf(
			"%s stopped at the token limit (%s), the text is incomplete", c.Provider(), resp.FinishReason))
	}
	resp.Content = strings.TrimSpace(resp.Content)
	if resp.Content == "" {
		return nil, scribeerr.Generation(errors.Newf("%s returned empty text", c.Provider()))
	}
	return resp, nil
}

// cutOff reports whether a finish reason means the output hit the token
// limit: "max_tokens" from Anthropic, "length" from OpenAI.
func cutOff(reason string) bool {
	switch reason {
	case "max_tokens", "length":
		return true
	default:
		return false
	}
}
