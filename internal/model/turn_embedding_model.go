package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// TurnEmbedding is one vector point. Its Id is derived from the source
// turn's Id (1:1), so re-indexing the same turn overwrites the point.
type TurnEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserId         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChatSessionId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceText     string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(384)"` // all-minilm uses 384 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (TurnEmbedding) TableName() string {
	return "turn_embeddings"
}
