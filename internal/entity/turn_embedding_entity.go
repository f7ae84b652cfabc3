package entity

import (
	"time"

	"github.com/google/uuid"
)

type TurnEmbedding struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ChatSessionId  uuid.UUID
	SourceText     string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
