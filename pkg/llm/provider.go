package llm

import "context"

// Message is one chat turn sent to the generation service.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Options tune a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

type Option func(*Options)

func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// LLMProvider is the outbound generation boundary. Routing and retrieval
// results stay valid when a provider call fails, so callers can always
// fall back to canned text.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, opts ...Option) (string, error)
	Generate(ctx context.Context, prompt string, opts ...Option) (string, error)
}
