package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionState keeps the most recent exchange per session. The indexer is
// asynchronous, so this is what makes an immediate follow-up see the turn
// it follows before the vector index has caught up.
type SessionState struct {
	SessionId    uuid.UUID
	LastQuestion string
	LastAnswer   string
	UpdatedAt    time.Time
}

type SessionStateRepository struct {
	cache *cache.Cache
}

func NewSessionStateRepository() *SessionStateRepository {
	// Entries expire after an hour of inactivity, purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionStateRepository{
		cache: c,
	}
}

func (r *SessionStateRepository) Save(state *SessionState) {
	r.cache.Set(state.SessionId.String(), state, cache.DefaultExpiration)
}

func (r *SessionStateRepository) Get(sessionId uuid.UUID) (*SessionState, bool) {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.(*SessionState), true
	}
	return nil, false
}

func (r *SessionStateRepository) Delete(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}
