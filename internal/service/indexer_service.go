package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/embedding"
	"ai-chat-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IIndexerService consumes recorded turns and writes them into the vector
// index. Indexing runs behind the chat flow: a turn that never gets indexed
// is a retrieval gap, not a chat failure.
type IIndexerService interface {
	Consume(ctx context.Context) error
}

type indexerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	generator  *embedding.Generator
	logger     logger.ILogger
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	generator *embedding.Generator,
	sysLogger logger.ILogger,
) IIndexerService {
	return &indexerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		generator:  generator,
		logger:     sysLogger,
	}
}

func (is *indexerService) Consume(ctx context.Context) error {
	// The index table must exist before the first upsert.
	uow := is.uowFactory.NewUnitOfWork(ctx)
	if err := uow.TurnEmbeddingRepository().EnsureReady(ctx); err != nil {
		return err
	}

	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		is.logger.Error("indexer", "failed to unmarshal index message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retry would loop forever
		return
	}

	uow := is.uowFactory.NewUnitOfWork(ctx)

	turn, err := uow.ChatTurnRepository().FindOne(ctx, specification.ByID{ID: payload.TurnId})
	if err != nil {
		is.logger.Error("indexer", "failed to load turn", map[string]interface{}{
			"turn_id": payload.TurnId.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}
	if turn == nil {
		// Turn deleted before indexing caught up.
		msg.Ack()
		return
	}

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: turn.ChatSessionId})
	if err != nil {
		is.logger.Error("indexer", "failed to load session for turn", map[string]interface{}{
			"turn_id": turn.Id.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}
	if session == nil {
		msg.Ack()
		return
	}

	sourceText := composeSourceText(turn)

	vector, err := is.generator.Generate(ctx, sourceText)
	if err != nil {
		is.logger.Error("indexer", "failed to embed turn", map[string]interface{}{
			"turn_id": turn.Id.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	// The index entry shares the turn's id, so re-indexing the same turn
	// overwrites instead of duplicating.
	embeddingEntity := &entity.TurnEmbedding{
		Id:             turn.Id,
		UserId:         session.UserId,
		ChatSessionId:  session.Id,
		SourceText:     sourceText,
		EmbeddingValue: vector,
		CreatedAt:      time.Now(),
	}

	if err := uow.TurnEmbeddingRepository().Upsert(ctx, embeddingEntity); err != nil {
		is.logger.Error("indexer", "failed to upsert turn embedding", map[string]interface{}{
			"turn_id": turn.Id.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	is.logger.Debug("indexer", "turn indexed", map[string]interface{}{"turn_id": turn.Id.String()})
	msg.Ack()
}

// maxEmbedRunes keeps the embedded text within the model's small context
// window. Long answers lose their tail, which is acceptable for retrieval.
const maxEmbedRunes = 2000

// composeSourceText is what gets embedded and later retrieved as context.
// Both sides of the exchange are cleaned so formatting noise does not skew
// the vector.
func composeSourceText(turn *entity.ChatTurn) string {
	text := fmt.Sprintf("Q: %s\nA: %s", utils.CleanText(turn.Question), utils.CleanText(turn.Answer))
	return utils.ClampRunes(text, maxEmbedRunes)
}
