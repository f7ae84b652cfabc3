package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Stream is a pull-based sequence of completion fragments. Recv blocks until
// the next fragment arrives and returns io.EOF on normal end-of-stream.
// Fragment boundaries carry no meaning; callers must not assume they align
// with words or sentences.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the full response.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method).
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// ChatStream opens an incrementally-streamed completion. The returned
	// Stream must be closed by the caller. Cancelling ctx aborts the
	// upstream request.
	ChatStream(ctx context.Context, history []Message, options ...Option) (Stream, error)
}
