package mapper

import (
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type TurnEmbeddingMapper struct{}

func NewTurnEmbeddingMapper() *TurnEmbeddingMapper {
	return &TurnEmbeddingMapper{}
}

func (m *TurnEmbeddingMapper) ToEntity(e *model.TurnEmbedding) *entity.TurnEmbedding {
	if e == nil {
		return nil
	}
	return &entity.TurnEmbedding{
		Id:             e.Id,
		UserId:         e.UserId,
		ChatSessionId:  e.ChatSessionId,
		SourceText:     e.SourceText,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *TurnEmbeddingMapper) ToModel(e *entity.TurnEmbedding) *model.TurnEmbedding {
	if e == nil {
		return nil
	}
	return &model.TurnEmbedding{
		Id:             e.Id,
		UserId:         e.UserId,
		ChatSessionId:  e.ChatSessionId,
		SourceText:     e.SourceText,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
	}
}
