// Package rag retrieves semantically similar prior conversation turns and
// folds them into the generation prompt.
package rag

import (
	"context"
	"strings"

	"ai-chat-be/pkg/embedding"

	"github.com/google/uuid"
)

const (
	// NoContextMarker keeps the prompt template well-formed when the index
	// has nothing relevant; the template never receives an empty block.
	NoContextMarker = "No prior context available."

	// ContextDelimiter separates retrieved snippets, most similar first.
	ContextDelimiter = "\n---\n"

	// DefaultTopK is the number of prior turns retrieved per message.
	DefaultTopK = 3
)

// ScoredText is one retrieved snippet with its cosine similarity.
type ScoredText struct {
	Text       string
	Similarity float64
}

// Searcher is the read side of the vector index.
type Searcher interface {
	SearchSimilar(ctx context.Context, vector []float32, limit int, userId uuid.UUID) ([]ScoredText, error)
}

// Retriever embeds a query and assembles the context block for the prompt.
type Retriever struct {
	generator *embedding.Generator
	searcher  Searcher
	topK      int
}

func NewRetriever(generator *embedding.Generator, searcher Searcher, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		generator: generator,
		searcher:  searcher,
		topK:      topK,
	}
}

// ContextFor returns the context block for a cleaned user query, scoped to
// the calling user. An empty index yields the no-context marker, not an
// error.
func (r *Retriever) ContextFor(ctx context.Context, userId uuid.UUID, query string) (string, error) {
	vector, err := r.generator.Generate(ctx, query)
	if err != nil {
		return NoContextMarker, err
	}

	results, err := r.searcher.SearchSimilar(ctx, vector, r.topK, userId)
	if err != nil {
		return NoContextMarker, err
	}

	return ComposeContextBlock(results), nil
}

// ComposeContextBlock joins retrieved snippets most-similar-first. Results
// are assumed to already be ordered by the index.
func ComposeContextBlock(results []ScoredText) string {
	if len(results) == 0 {
		return NoContextMarker
	}

	parts := make([]string, 0, len(results))
	for _, res := range results {
		text := strings.TrimSpace(res.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return NoContextMarker
	}
	return strings.Join(parts, ContextDelimiter)
}
