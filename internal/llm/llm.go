package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// ErrExhausted is returned when every provider ran out of attempts.
var ErrExhausted = errors.New("llm: all providers exhausted")

// DefaultRequestTimeout bounds a single provider call.
const DefaultRequestTimeout = 60 * time.Second

// Options controls one completion request.
type Options struct {
	Temperature float32       // Sampling temperature, 0 means provider default
	MaxTokens   int32         // Output token budget, 0 means provider default
	JSON        bool          // Ask for a JSON object response
	Schema      *genai.Schema // Optional structured output schema (Gemini only)
}

// Provider is one LLM backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Response is the raw text of a successful completion.
type Response struct {
	Text     string
	Provider string
	Attempts int // Total attempts across providers, including the successful one
}

// Completer is implemented by Client and by fakes in tests.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (Response, error)
}

// Client sends prompts to a primary provider and falls back to a secondary
// one when the primary exhausts its retry budget.
type Client struct {
	providers []Provider
	policy    RetryPolicy
	timeout   time.Duration
	log       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPolicy overrides the default retry policy.
func WithPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient builds a client. A nil secondary disables fallback.
func NewClient(primary, secondary Provider, opts ...ClientOption) (*Client, error) {
	if primary == nil {
		return nil, fmt.Errorf("llm: primary provider is required")
	}
	c := &Client{
		providers: []Provider{primary},
		policy:    DefaultRetryPolicy(),
		timeout:   DefaultRequestTimeout,
		log:       slog.Default(),
	}
	if secondary != nil {
		c.providers = append(c.providers, secondary)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Providers returns the provider names in fallback order.
func (c *Client) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Complete runs the retry policy against each provider in turn.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (Response, error) {
	var lastErr error
	total := 0
	for _, p := range c.providers {
		text, attempts, err := c.policy.Run(ctx, func(ctx context.Context) (string, error) {
			reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			return p.Generate(reqCtx, prompt, opts)
		}, func(attempt int, err error, wait time.Duration) {
			c.log.Warn("LLM attempt failed",
				"provider", p.Name(),
				"attempt", attempt,
				"rate_limited", IsRateLimit(err),
				"retry_in", wait.String(),
				"error", err.Error())
		})
		total += attempts
		if err == nil {
			return Response{Text: text, Provider: p.Name(), Attempts: total}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.log.Warn("LLM provider exhausted", "provider", p.Name(), "attempts", attempts)
	}
	return Response{Attempts: total}, fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}
