package contract

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredTurnEmbedding wraps TurnEmbedding with its similarity score
type ScoredTurnEmbedding struct {
	Embedding  *entity.TurnEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type TurnEmbeddingRepository interface {
	// EnsureReady creates the pgvector extension and the embeddings table
	// if they do not exist yet. Safe to call concurrently.
	EnsureReady(ctx context.Context) error
	Upsert(ctx context.Context, embedding *entity.TurnEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TurnEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns the closest stored texts for the user,
	// most similar first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID) ([]*ScoredTurnEmbedding, error)
}
