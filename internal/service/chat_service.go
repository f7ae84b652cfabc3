package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"
	pktNats "ai-chat-be/pkg/nats"
	"ai-chat-be/pkg/rag"
	"ai-chat-be/pkg/rag/prompt"
	"ai-chat-be/pkg/title"
	"ai-chat-be/pkg/utils"

	"github.com/google/uuid"
)

const systemPrompt = "You are a helpful assistant. Answer the user's message directly and concisely."

// IChatService defines the chat service interface
type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ListSessionsResponse, error)
	GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionDetailResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error

	// PrepareStream validates the message and resolves (or creates) the
	// target session. It runs before the transport commits to an event
	// stream, so its failures surface as plain HTTP errors.
	PrepareStream(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest) (*StreamExchange, error)

	// StreamChat runs a prepared exchange, emitting answer fragments through
	// emit as they arrive. When the model fails mid-answer the partial turn
	// is still persisted (marked truncated) and both the turn and the
	// failure are returned so the transport can report each.
	StreamChat(ctx context.Context, userId uuid.UUID, exchange *StreamExchange, emit func(chunk string) error) (*dto.TurnResponse, error)
}

// StreamExchange carries a stream request that already passed validation and
// session resolution.
type StreamExchange struct {
	session    *entity.ChatSession
	rawMessage string
	cleaned    string
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	llmProvider      llm.Provider
	retriever        *rag.Retriever
	titleGenerator   *title.Generator
	sessionState     *memory.SessionStateRepository
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.Provider,
	retriever *rag.Retriever,
	titleGenerator *title.Generator,
	sessionState *memory.SessionStateRepository,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		llmProvider:      llmProvider,
		retriever:        retriever,
		titleGenerator:   titleGenerator,
		sessionState:     sessionState,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
	}
}

// CreateSession starts a fresh session. The user has at most one active
// session, so any currently active ones are closed in the same transaction.
func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session, err := cs.openSession(ctx, uow, userId, title.DefaultTitle)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NewSessionCreated(userId, session.Id, session.Topic)); err != nil {
			cs.logger.Warn("chat", "failed to publish SESSION_CREATED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.CreateSessionResponse{Id: session.Id, Topic: session.Topic}, nil
}

// openSession deactivates the user's active sessions and creates the new one.
// Callers own the transaction.
func (cs *chatService) openSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, topic string) (*entity.ChatSession, error) {
	if err := uow.ChatSessionRepository().DeactivateAllByUserId(ctx, userId); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Topic:     topic,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: &now,
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ListSessionsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.ChatSessionRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.SessionSummaryResponse, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, dto.SessionSummaryResponse{
			Id:        s.Id,
			Topic:     s.Topic,
			IsActive:  s.IsActive,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return &dto.ListSessionsResponse{
		Sessions: summaries,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (cs *chatService) GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionDetailResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := cs.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	turnResponses := make([]dto.TurnResponse, 0, len(turns))
	for _, t := range turns {
		turnResponses = append(turnResponses, dto.TurnResponse{
			Id:        t.Id,
			SessionId: t.ChatSessionId,
			Question:  t.Question,
			Answer:    t.Answer,
			Truncated: t.Truncated,
			CreatedAt: t.CreatedAt,
		})
	}

	return &dto.SessionDetailResponse{
		Id:        session.Id,
		Topic:     session.Topic,
		IsActive:  session.IsActive,
		CreatedAt: session.CreatedAt,
		EndedAt:   session.EndedAt,
		Turns:     turnResponses,
	}, nil
}

// DeleteSession removes the session, its turns and its index entries in one
// transaction.
func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TurnEmbeddingRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatTurnRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	cs.sessionState.Delete(sessionId)
	return nil
}

func (cs *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

func (cs *chatService) PrepareStream(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest) (*StreamExchange, error) {
	cleaned := utils.CleanText(req.Message)
	if cleaned == "" {
		return nil, ErrValidation
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, isNew, err := cs.resolveSession(ctx, uow, userId, req.SessionId, cleaned)
	if err != nil {
		return nil, err
	}

	if isNew {
		cs.logger.Info("chat", "session created implicitly from stream request", map[string]interface{}{
			"session_id": session.Id.String(),
			"topic":      session.Topic,
		})
	}

	return &StreamExchange{
		session:    session,
		rawMessage: req.Message,
		cleaned:    cleaned,
	}, nil
}

func (cs *chatService) StreamChat(ctx context.Context, userId uuid.UUID, exchange *StreamExchange, emit func(chunk string) error) (*dto.TurnResponse, error) {
	session := exchange.session
	cleaned := exchange.cleaned

	// Retrieval failures degrade to an unaugmented prompt, they never abort
	// the exchange.
	contextBlock, err := cs.retriever.ContextFor(ctx, userId, cleaned)
	if err != nil {
		cs.logger.Warn("chat", "context retrieval failed, continuing without context", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		contextBlock = rag.NoContextMarker
	}

	// Indexing runs asynchronously, so the turn right before this one may
	// not be searchable yet. The cached last exchange bridges that gap.
	if prior, ok := cs.sessionState.Get(session.Id); ok && prior.LastQuestion != "" {
		recent := "Q: " + prior.LastQuestion + "\nA: " + prior.LastAnswer
		if contextBlock == rag.NoContextMarker {
			contextBlock = recent
		} else {
			contextBlock = recent + rag.ContextDelimiter + contextBlock
		}
	}

	augmented := prompt.NewAugmentedBuilder(contextBlock, cleaned).Build()

	stream, err := cs.llmProvider.ChatStream(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: augmented},
	})
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var answer string
	var streamErr error
	for {
		chunk, recvErr := stream.Recv()
		if recvErr != nil {
			if !errors.Is(recvErr, io.EOF) {
				streamErr = recvErr
			}
			break
		}
		answer += chunk
		if emitErr := emit(chunk); emitErr != nil {
			// Client went away. Stop generating but keep what we have.
			streamErr = emitErr
			break
		}
	}

	if answer == "" && streamErr != nil {
		return nil, streamErr
	}

	// Persistence must complete even when the client already went away and
	// ctx got cancelled with it.
	persistCtx := context.WithoutCancel(ctx)

	turn, err := cs.persistTurn(persistCtx, session, exchange.rawMessage, answer, streamErr != nil)
	if err != nil {
		return nil, err
	}

	cs.sessionState.Save(&memory.SessionState{
		SessionId:    session.Id,
		LastQuestion: cleaned,
		LastAnswer:   answer,
		UpdatedAt:    time.Now(),
	})

	cs.publishTurnRecorded(persistCtx, userId, session.Id, turn.Id, turn.Truncated)

	return turn, streamErr
}

// resolveSession returns the target session for a stream request. A given id
// must belong to the caller; otherwise the active session is reused or a new
// one is opened with a generated title.
func (cs *chatService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId *uuid.UUID, firstMessage string) (*entity.ChatSession, bool, error) {
	if sessionId != nil {
		session, err := cs.findOwnedSession(ctx, uow, userId, *sessionId)
		if err != nil {
			return nil, false, err
		}
		return session, false, nil
	}

	active, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, false, err
	}
	if active != nil {
		return active, false, nil
	}

	// Title generation precedes the transaction; it is slow and fallible
	// and must not hold a DB transaction open.
	topic := cs.titleGenerator.FromMessage(ctx, firstMessage)

	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}
	defer uow.Rollback()

	session, err := cs.openSession(ctx, uow, userId, topic)
	if err != nil {
		return nil, false, err
	}

	if err := uow.Commit(); err != nil {
		return nil, false, err
	}

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NewSessionCreated(userId, session.Id, session.Topic)); err != nil {
			cs.logger.Warn("chat", "failed to publish SESSION_CREATED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return session, true, nil
}

func (cs *chatService) persistTurn(ctx context.Context, session *entity.ChatSession, question, answer string, truncated bool) (*dto.TurnResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	turn := &entity.ChatTurn{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Question:      question,
		Answer:        answer,
		Truncated:     truncated,
		CreatedAt:     now,
	}
	if err := uow.ChatTurnRepository().Create(ctx, turn); err != nil {
		return nil, err
	}

	session.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.TurnResponse{
		Id:        turn.Id,
		SessionId: turn.ChatSessionId,
		Question:  turn.Question,
		Answer:    turn.Answer,
		Truncated: turn.Truncated,
		CreatedAt: turn.CreatedAt,
	}, nil
}

func (cs *chatService) publishTurnRecorded(ctx context.Context, userId, sessionId, turnId uuid.UUID, truncated bool) {
	payload, err := json.Marshal(dto.IndexTurnMessage{TurnId: turnId})
	if err == nil {
		if err := cs.publisherService.Publish(ctx, payload); err != nil {
			cs.logger.Warn("chat", "failed to enqueue turn for indexing", map[string]interface{}{
				"turn_id": turnId.String(),
				"error":   err.Error(),
			})
		}
	}

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NewTurnRecorded(userId, sessionId, turnId, truncated)); err != nil {
			cs.logger.Warn("chat", "failed to publish TURN_RECORDED event", map[string]interface{}{"error": err.Error()})
		}
	}
}
