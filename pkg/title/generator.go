// Package title derives a short human-readable topic for a new chat session
// from its first message. Title generation is cosmetic: any failure falls
// back to a default label and never blocks session creation.
package title

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-chat-be/pkg/llm"
)

const (
	// DefaultTitle is used whenever the provider cannot produce one.
	DefaultTitle = "New Chat"

	maxTitleWords = 5

	systemPrompt = "You generate short, concise chat titles."
)

type Generator struct {
	provider llm.Provider
	timeout  time.Duration
}

func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{
		provider: provider,
		timeout:  8 * time.Second,
	}
}

// FromMessage produces a label of at most five words for the session that
// starts with firstMessage. It never returns an error.
func (g *Generator) FromMessage(ctx context.Context, firstMessage string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Suggest a title of at most %d words for a chat that starts with: %q", maxTitleWords, firstMessage)

	raw, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0.5), llm.WithMaxTokens(30))
	if err != nil {
		return DefaultTitle
	}

	cleaned := clean(raw)
	if cleaned == "" {
		return DefaultTitle
	}
	return cleaned
}

// clean strips quotes and a trailing dot, and caps the title at maxTitleWords.
func clean(raw string) string {
	s := strings.NewReplacer(`"`, "", "'", "").Replace(raw)
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")

	words := strings.Fields(s)
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	return strings.Join(words, " ")
}
