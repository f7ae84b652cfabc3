package deepseek

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"ai-chat-be/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL = "https://api.deepseek.com/v1"
	defaultModel   = "deepseek-chat"

	// Client-side bound for single-shot completions. Streams are exempt:
	// they are bounded by the caller's context instead.
	completionTimeout = 15 * time.Second
)

// DeepSeekProvider wraps the DeepSeek chat completions API, which is
// OpenAI-compatible.
type DeepSeekProvider struct {
	client *openai.Client
	model  string
}

// Ensure DeepSeekProvider implements Provider
var _ llm.Provider = &DeepSeekProvider{}

func NewDeepSeekProvider(apiKey, baseURL, model string) *DeepSeekProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &DeepSeekProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *DeepSeekProvider) buildRequest(history []llm.Message, opts ...llm.Option) openai.ChatCompletionRequest {
	options := &llm.Options{
		Temperature: 0.7,
		MaxTokens:   2000,
	}
	for _, opt := range opts {
		opt(options)
	}

	model := p.model
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]openai.ChatCompletionMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = openai.ChatMessageRoleAssistant
		}
		messages[i] = openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
	}
}

func (p *DeepSeekProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(history, opts...))
	if err != nil {
		return "", categorize(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices in response", llm.ErrUpstreamUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *DeepSeekProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: openai.ChatMessageRoleUser, Content: prompt}}, opts...)
}

func (p *DeepSeekProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, p.buildRequest(history, opts...))
	if err != nil {
		return nil, categorize(err)
	}
	return &deepseekStream{inner: stream}, nil
}

// deepseekStream adapts the go-openai stream to llm.Stream. A fragment that
// fails to parse aborts the whole stream; there is no partial-fragment
// recovery.
type deepseekStream struct {
	inner *openai.ChatCompletionStream
}

func (s *deepseekStream) Recv() (string, error) {
	resp, err := s.inner.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", categorize(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *deepseekStream) Close() error {
	return s.inner.Close()
}

// categorize maps transport and API errors onto the llm error taxonomy,
// keeping the original error text for logs.
func categorize(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", llm.ErrUpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", llm.ErrUpstreamTimeout, err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == 401 || status == 403:
		return fmt.Errorf("%w: %v", llm.ErrAuthFailure, err)
	case status == 429:
		return fmt.Errorf("%w: %v", llm.ErrRateLimited, err)
	case status >= 500:
		return fmt.Errorf("%w: %v", llm.ErrUpstreamUnavailable, err)
	case status >= 400:
		return fmt.Errorf("%w: %v", llm.ErrInvalidRequest, err)
	}

	return fmt.Errorf("%w: %v", llm.ErrUpstreamUnavailable, err)
}
