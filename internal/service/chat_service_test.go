package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/embedding"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/rag"
	"ai-chat-be/pkg/title"

	"github.com/google/uuid"
)

// In-memory repository fakes. They honor the specification types the
// services actually use.

type fakeStore struct {
	mu         sync.Mutex
	users      []*entity.User
	sessions   []*entity.ChatSession
	turns      []*entity.ChatTurn
	embeddings []*entity.TurnEmbedding
}

type fakeUowFactory struct {
	store *fakeStore
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}
func (u *fakeUow) ChatTurnRepository() contract.ChatTurnRepository {
	return &fakeTurnRepo{store: u.store}
}
func (u *fakeUow) TurnEmbeddingRepository() contract.TurnEmbeddingRepository {
	return &fakeEmbeddingRepo{store: u.store}
}

type sessionMatcher struct {
	id     *uuid.UUID
	userId *uuid.UUID
	active bool
}

func matchSessionSpecs(specs []specification.Specification) sessionMatcher {
	var m sessionMatcher
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			m.id = &id
		case specification.UserOwnedBy:
			uid := s.UserID
			m.userId = &uid
		case specification.ActiveOnly:
			m.active = true
		}
	}
	return m
}

func (m sessionMatcher) matches(s *entity.ChatSession) bool {
	if m.id != nil && s.Id != *m.id {
		return false
	}
	if m.userId != nil && s.UserId != *m.userId {
		return false
	}
	if m.active && !s.IsActive {
		return false
	}
	return true
}

type fakeSessionRepo struct {
	store *fakeStore
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions = append(r.store.sessions, &cp)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, s := range r.store.sessions {
		if s.Id == session.Id {
			cp := *session
			r.store.sessions[i] = &cp
			return nil
		}
	}
	return errors.New("session missing")
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.sessions[:0]
	for _, s := range r.store.sessions {
		if s.Id != id {
			kept = append(kept, s)
		}
	}
	r.store.sessions = kept
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := matchSessionSpecs(specs)
	for _, s := range r.store.sessions {
		if m.matches(s) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := matchSessionSpecs(specs)
	var out []*entity.ChatSession
	for _, s := range r.store.sessions {
		if m.matches(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	for _, spec := range specs {
		if ob, ok := spec.(specification.OrderBy); ok && ob.Field == "updated_at" && ob.Desc {
			sort.SliceStable(out, func(i, j int) bool {
				return sessionUpdatedAt(out[i]).After(sessionUpdatedAt(out[j]))
			})
		}
	}
	return out, nil
}

func sessionUpdatedAt(s *entity.ChatSession) time.Time {
	if s.UpdatedAt != nil {
		return *s.UpdatedAt
	}
	return s.CreatedAt
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeSessionRepo) DeactivateAllByUserId(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if s.UserId == userId && s.IsActive {
			s.IsActive = false
		}
	}
	return nil
}

type fakeTurnRepo struct {
	store *fakeStore
}

func (r *fakeTurnRepo) Create(ctx context.Context, turn *entity.ChatTurn) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *turn
	r.store.turns = append(r.store.turns, &cp)
	return nil
}

func (r *fakeTurnRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.turns[:0]
	for _, t := range r.store.turns {
		if t.Id != id {
			kept = append(kept, t)
		}
	}
	r.store.turns = kept
	return nil
}

func (r *fakeTurnRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.turns[:0]
	for _, t := range r.store.turns {
		if t.ChatSessionId != sessionId {
			kept = append(kept, t)
		}
	}
	r.store.turns = kept
	return nil
}

func (r *fakeTurnRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatTurn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			for _, t := range r.store.turns {
				if t.Id == byId.ID {
					cp := *t
					return &cp, nil
				}
			}
		}
	}
	return nil, nil
}

func (r *fakeTurnRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var sessionId *uuid.UUID
	for _, spec := range specs {
		if bySession, ok := spec.(specification.ByChatSessionID); ok {
			id := bySession.ChatSessionID
			sessionId = &id
		}
	}
	var out []*entity.ChatTurn
	for _, t := range r.store.turns {
		if sessionId == nil || t.ChatSessionId == *sessionId {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTurnRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeEmbeddingRepo struct {
	store *fakeStore
}

func (r *fakeEmbeddingRepo) EnsureReady(ctx context.Context) error { return nil }

func (r *fakeEmbeddingRepo) Upsert(ctx context.Context, embedding *entity.TurnEmbedding) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, e := range r.store.embeddings {
		if e.Id == embedding.Id {
			cp := *embedding
			r.store.embeddings[i] = &cp
			return nil
		}
	}
	cp := *embedding
	r.store.embeddings = append(r.store.embeddings, &cp)
	return nil
}

func (r *fakeEmbeddingRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeEmbeddingRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.embeddings[:0]
	for _, e := range r.store.embeddings {
		if e.ChatSessionId != sessionId {
			kept = append(kept, e)
		}
	}
	r.store.embeddings = kept
	return nil
}

func (r *fakeEmbeddingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TurnEmbedding, error) {
	return nil, nil
}

func (r *fakeEmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.embeddings)), nil
}

func (r *fakeEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID) ([]*contract.ScoredTurnEmbedding, error) {
	return nil, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *user
	r.store.users = append(r.store.users, &cp)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		if byEmail, ok := spec.(specification.ByEmail); ok {
			for _, u := range r.store.users {
				if u.Email == byEmail.Email {
					cp := *u
					return &cp, nil
				}
			}
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

// AI fakes

type fakeLLMStream struct {
	chunks []string
	err    error // delivered after the chunks instead of io.EOF
	pos    int
}

func (s *fakeLLMStream) Recv() (string, error) {
	if s.pos >= len(s.chunks) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *fakeLLMStream) Close() error { return nil }

type fakeLLMProvider struct {
	mu           sync.Mutex
	chatResponse string
	streamChunks []string
	streamErr    error
	streamCalls  [][]llm.Message
}

func (p *fakeLLMProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.chatResponse, nil
}

func (p *fakeLLMProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.chatResponse, nil
}

func (p *fakeLLMProvider) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (llm.Stream, error) {
	p.mu.Lock()
	p.streamCalls = append(p.streamCalls, history)
	p.mu.Unlock()
	return &fakeLLMStream{chunks: p.streamChunks, err: p.streamErr}, nil
}

func (p *fakeLLMProvider) lastUserPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.streamCalls) == 0 {
		return ""
	}
	history := p.streamCalls[len(p.streamCalls)-1]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}

type fakeEmbeddingProvider struct{}

func (p *fakeEmbeddingProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (p *fakeEmbeddingProvider) Dimension() int { return 3 }

type fakeSearcher struct {
	results []rag.ScoredText
}

func (s *fakeSearcher) SearchSimilar(ctx context.Context, vector []float32, limit int, userId uuid.UUID) ([]rag.ScoredText, error) {
	return s.results, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func newTestChatService(store *fakeStore, provider *fakeLLMProvider, publisher *fakePublisher) IChatService {
	factory := &fakeUowFactory{store: store}
	generator := embedding.NewGenerator(&fakeEmbeddingProvider{})
	retriever := rag.NewRetriever(generator, &fakeSearcher{}, 3)
	return NewChatService(
		factory,
		provider,
		retriever,
		title.NewGenerator(provider),
		memory.NewSessionStateRepository(),
		publisher,
		nil,
		noopLogger{},
	)
}

// runStream drives both phases the way the transport does.
func runStream(svc IChatService, userId uuid.UUID, req *dto.StreamChatRequest, emit func(chunk string) error) (*dto.TurnResponse, error) {
	exchange, err := svc.PrepareStream(context.Background(), userId, req)
	if err != nil {
		return nil, err
	}
	return svc.StreamChat(context.Background(), userId, exchange, emit)
}

func TestStreamChatCreatesSessionImplicitly(t *testing.T) {
	store := &fakeStore{}
	provider := &fakeLLMProvider{
		chatResponse: "Capital Cities",
		streamChunks: []string{"Paris ", "is the ", "capital."},
	}
	publisher := &fakePublisher{}
	svc := newTestChatService(store, provider, publisher)

	userId := uuid.New()
	var emitted []string
	turn, err := runStream(svc, userId, &dto.StreamChatRequest{
		Message: "What is the capital of France?",
	}, func(chunk string) error {
		emitted = append(emitted, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	if len(store.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(store.sessions))
	}
	session := store.sessions[0]
	if !session.IsActive {
		t.Error("expected new session to be active")
	}
	if session.Topic != "Capital Cities" {
		t.Errorf("expected generated topic, got %q", session.Topic)
	}

	if len(store.turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(store.turns))
	}
	if got, want := strings.Join(emitted, ""), "Paris is the capital."; got != want {
		t.Errorf("emitted chunks = %q, want %q", got, want)
	}
	if store.turns[0].Answer != "Paris is the capital." {
		t.Errorf("persisted answer %q does not match streamed text", store.turns[0].Answer)
	}
	if store.turns[0].Truncated {
		t.Error("turn should not be marked truncated")
	}
	if turn.Truncated {
		t.Error("returned turn should not be marked truncated")
	}

	if len(publisher.payloads) != 1 {
		t.Errorf("expected 1 index message, got %d", len(publisher.payloads))
	}
}

func TestStreamChatReusesActiveSession(t *testing.T) {
	store := &fakeStore{}
	userId := uuid.New()
	existing := &entity.ChatSession{Id: uuid.New(), UserId: userId, Topic: "Existing", IsActive: true}
	store.sessions = append(store.sessions, existing)

	provider := &fakeLLMProvider{chatResponse: "Ignored Title", streamChunks: []string{"Hello"}}
	svc := newTestChatService(store, provider, &fakePublisher{})

	turn, err := runStream(svc, userId, &dto.StreamChatRequest{
		Message: "Hi again",
	}, func(string) error { return nil })
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	if len(store.sessions) != 1 {
		t.Fatalf("expected no new session, got %d sessions", len(store.sessions))
	}
	if store.sessions[0].Topic != "Existing" {
		t.Errorf("active session topic changed to %q", store.sessions[0].Topic)
	}
	if store.turns[0].ChatSessionId != existing.Id {
		t.Error("turn was not attached to the active session")
	}
	if turn == nil {
		t.Fatal("expected a turn response")
	}
}

func TestStreamChatRejectsForeignSession(t *testing.T) {
	store := &fakeStore{}
	otherUser := uuid.New()
	foreign := &entity.ChatSession{Id: uuid.New(), UserId: otherUser, Topic: "Private", IsActive: true}
	store.sessions = append(store.sessions, foreign)

	provider := &fakeLLMProvider{streamChunks: []string{"nope"}}
	svc := newTestChatService(store, provider, &fakePublisher{})

	_, err := runStream(svc, uuid.New(), &dto.StreamChatRequest{
		Message:   "Give me their secrets",
		SessionId: &foreign.Id,
	}, func(string) error { return nil })

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(store.turns) != 0 {
		t.Error("no turn should be persisted for a rejected request")
	}
}

func TestStreamChatPersistsPartialAnswerOnFailure(t *testing.T) {
	store := &fakeStore{}
	upstreamErr := errors.New("connection reset")
	provider := &fakeLLMProvider{
		chatResponse: "Some Title",
		streamChunks: []string{"The answer ", "is "},
		streamErr:    upstreamErr,
	}
	publisher := &fakePublisher{}
	svc := newTestChatService(store, provider, publisher)

	turn, err := runStream(svc, uuid.New(), &dto.StreamChatRequest{
		Message: "Tell me everything",
	}, func(string) error { return nil })

	if !errors.Is(err, upstreamErr) {
		t.Fatalf("expected the upstream error back, got %v", err)
	}
	if turn == nil {
		t.Fatal("expected partial turn to be returned")
	}
	if !turn.Truncated {
		t.Error("partial turn must be marked truncated")
	}
	if turn.Answer != "The answer is " {
		t.Errorf("partial answer = %q", turn.Answer)
	}
	if len(store.turns) != 1 {
		t.Fatalf("expected the partial turn to be persisted, got %d turns", len(store.turns))
	}
	if len(publisher.payloads) != 1 {
		t.Error("partial turns should still be queued for indexing")
	}
}

func TestStreamChatRejectsEmptyMessage(t *testing.T) {
	store := &fakeStore{}
	provider := &fakeLLMProvider{streamChunks: []string{"x"}}
	svc := newTestChatService(store, provider, &fakePublisher{})

	_, err := runStream(svc, uuid.New(), &dto.StreamChatRequest{
		Message: "  <p>\t</p>  ",
	}, func(string) error { return nil })

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestStreamChatCarriesRecentTurnIntoFollowUp(t *testing.T) {
	store := &fakeStore{}
	provider := &fakeLLMProvider{
		chatResponse: "Capital Cities",
		streamChunks: []string{"Paris is the capital."},
	}
	svc := newTestChatService(store, provider, &fakePublisher{})

	userId := uuid.New()
	if _, err := runStream(svc, userId, &dto.StreamChatRequest{
		Message: "What is the capital of France?",
	}, func(string) error { return nil }); err != nil {
		t.Fatalf("first exchange failed: %v", err)
	}

	// The index has not caught up (the searcher returns nothing), so the
	// follow-up prompt must still carry the previous exchange.
	if _, err := runStream(svc, userId, &dto.StreamChatRequest{
		Message: "And Germany?",
	}, func(string) error { return nil }); err != nil {
		t.Fatalf("follow-up exchange failed: %v", err)
	}

	prompt := provider.lastUserPrompt()
	if !strings.Contains(prompt, "Q: What is the capital of France?") {
		t.Errorf("follow-up prompt is missing the previous question:\n%s", prompt)
	}
	if !strings.Contains(prompt, "A: Paris is the capital.") {
		t.Errorf("follow-up prompt is missing the previous answer:\n%s", prompt)
	}
	if !strings.Contains(prompt, "And Germany?") {
		t.Errorf("follow-up prompt is missing the new question:\n%s", prompt)
	}
}

func TestListSessionsOrdersByLastUpdated(t *testing.T) {
	store := &fakeStore{}
	userId := uuid.New()
	now := time.Now()
	earlier := now.Add(-2 * time.Hour)
	later := now.Add(-1 * time.Hour)
	older := &entity.ChatSession{Id: uuid.New(), UserId: userId, Topic: "Older", CreatedAt: earlier, UpdatedAt: &earlier}
	newer := &entity.ChatSession{Id: uuid.New(), UserId: userId, Topic: "Newer", IsActive: true, CreatedAt: later, UpdatedAt: &later}
	store.sessions = append(store.sessions, older, newer)

	provider := &fakeLLMProvider{chatResponse: "Ignored", streamChunks: []string{"Hi"}}
	svc := newTestChatService(store, provider, &fakePublisher{})

	// A turn on the older session must bring it to the top of the list.
	if _, err := runStream(svc, userId, &dto.StreamChatRequest{
		Message:   "Picking up where we left off",
		SessionId: &older.Id,
	}, func(string) error { return nil }); err != nil {
		t.Fatalf("stream on older session failed: %v", err)
	}

	res, err := svc.GetAllSessions(context.Background(), userId, 10, 0)
	if err != nil {
		t.Fatalf("GetAllSessions returned error: %v", err)
	}
	if len(res.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(res.Sessions))
	}
	if res.Sessions[0].Id != older.Id {
		t.Errorf("expected the freshly answered session first, got %q", res.Sessions[0].Topic)
	}
}

func TestCreateSessionDeactivatesPrevious(t *testing.T) {
	store := &fakeStore{}
	userId := uuid.New()
	old := &entity.ChatSession{Id: uuid.New(), UserId: userId, Topic: "Old", IsActive: true}
	store.sessions = append(store.sessions, old)

	svc := newTestChatService(store, &fakeLLMProvider{}, &fakePublisher{})

	res, err := svc.CreateSession(context.Background(), userId)
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if res.Topic != title.DefaultTitle {
		t.Errorf("expected default topic, got %q", res.Topic)
	}

	var activeCount int
	for _, s := range store.sessions {
		if s.IsActive {
			activeCount++
			if s.Id != res.Id {
				t.Error("a session other than the new one is still active")
			}
		}
	}
	if activeCount != 1 {
		t.Errorf("expected exactly 1 active session, got %d", activeCount)
	}
}

func TestDeleteSessionRemovesTurnsAndEmbeddings(t *testing.T) {
	store := &fakeStore{}
	userId := uuid.New()
	session := &entity.ChatSession{Id: uuid.New(), UserId: userId, Topic: "Doomed", IsActive: true}
	store.sessions = append(store.sessions, session)
	turnId := uuid.New()
	store.turns = append(store.turns, &entity.ChatTurn{Id: turnId, ChatSessionId: session.Id})
	store.embeddings = append(store.embeddings, &entity.TurnEmbedding{Id: turnId, UserId: userId, ChatSessionId: session.Id})

	svc := newTestChatService(store, &fakeLLMProvider{}, &fakePublisher{})

	if err := svc.DeleteSession(context.Background(), userId, session.Id); err != nil {
		t.Fatalf("DeleteSession returned error: %v", err)
	}

	if len(store.sessions) != 0 || len(store.turns) != 0 || len(store.embeddings) != 0 {
		t.Errorf("expected everything removed, got %d sessions, %d turns, %d embeddings",
			len(store.sessions), len(store.turns), len(store.embeddings))
	}

	// Deleting again must report not found.
	if err := svc.DeleteSession(context.Background(), userId, session.Id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
