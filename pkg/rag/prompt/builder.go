package prompt

import (
	"strings"
)

// AugmentedBuilder builds the generation prompt: a fixed instruction, the
// retrieved context block, then the new message, always in that order.
type AugmentedBuilder struct {
	contextBlock string
	message      string
}

// NewAugmentedBuilder creates a builder for one chat exchange. contextBlock
// must never be empty; retrieval substitutes an explicit marker when the
// index has nothing.
func NewAugmentedBuilder(contextBlock, message string) *AugmentedBuilder {
	return &AugmentedBuilder{
		contextBlock: contextBlock,
		message:      message,
	}
}

// Build assembles the final prompt string.
func (b *AugmentedBuilder) Build() string {
	var prompt strings.Builder

	b.writeInstruction(&prompt)
	b.writeContext(&prompt)
	b.writeMessage(&prompt)

	return prompt.String()
}

func (b *AugmentedBuilder) writeInstruction(prompt *strings.Builder) {
	prompt.WriteString("<instructions>\n")
	prompt.WriteString("You are a helpful assistant. Prior conversation context is provided below.\n")
	prompt.WriteString("Use the prior context if it is relevant to the new message; ignore it otherwise.\n")
	prompt.WriteString("</instructions>\n\n")
}

func (b *AugmentedBuilder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("<prior_context>\n")
	prompt.WriteString(b.contextBlock)
	prompt.WriteString("\n</prior_context>\n\n")
}

func (b *AugmentedBuilder) writeMessage(prompt *strings.Builder) {
	prompt.WriteString("<message>\n")
	prompt.WriteString(b.message)
	prompt.WriteString("\n</message>\n")
}
