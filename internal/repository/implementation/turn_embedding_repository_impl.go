package implementation

import (
	"context"
	"errors"
	"strings"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TurnEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TurnEmbeddingMapper
}

func NewTurnEmbeddingRepository(db *gorm.DB) contract.TurnEmbeddingRepository {
	return &TurnEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewTurnEmbeddingMapper(),
	}
}

func (r *TurnEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TurnEmbeddingRepositoryImpl) EnsureReady(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		// Concurrent callers can race on the extension creation; a duplicate
		// object error means another caller won.
		if !strings.Contains(err.Error(), "duplicate") && !strings.Contains(err.Error(), "already exists") {
			return err
		}
	}
	return r.db.WithContext(ctx).AutoMigrate(&model.TurnEmbedding{})
}

// Upsert overwrites the stored vector and source text when the turn was
// already indexed, so re-delivered index messages stay idempotent.
func (r *TurnEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.TurnEmbedding) error {
	m := r.mapper.ToModel(embedding)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_text", "embedding_value",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *TurnEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TurnEmbedding{}).Error
}

func (r *TurnEmbeddingRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chat_session_id = ?", sessionId).Delete(&model.TurnEmbedding{}).Error
}

func (r *TurnEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TurnEmbedding, error) {
	var m model.TurnEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TurnEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TurnEmbedding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchSimilarWithScore ranks by pgvector cosine distance.
// Cosine distance is 1 - cosine_similarity, so similarity is recovered as
// 1 - (embedding_value <=> query_vector).
func (r *TurnEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID) ([]*contract.ScoredTurnEmbedding, error) {
	if limit <= 0 {
		limit = 3
	}

	type result struct {
		model.TurnEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("turn_embeddings").
		Select("turn_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("user_id = ?", userId).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredTurnEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredTurnEmbedding{
			Embedding:  r.mapper.ToEntity(&res.TurnEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
