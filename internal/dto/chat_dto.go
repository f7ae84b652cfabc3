package dto

import (
	"time"

	"github.com/google/uuid"
)

type StreamChatRequest struct {
	Message   string     `json:"message" validate:"required"`
	SessionId *uuid.UUID `json:"sessionId" validate:"omitempty"`
}

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Topic string    `json:"topic"`
}

type SessionSummaryResponse struct {
	Id        uuid.UUID  `json:"id"`
	Topic     string     `json:"topic"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

type TurnResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"sessionId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Truncated bool      `json:"truncated"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionDetailResponse struct {
	Id        uuid.UUID      `json:"id"`
	Topic     string         `json:"topic"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	EndedAt   *time.Time     `json:"endedAt,omitempty"`
	Turns     []TurnResponse `json:"turns"`
}

type ListSessionsResponse struct {
	Sessions []SessionSummaryResponse `json:"sessions"`
	Total    int64                    `json:"total"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

// IndexTurnMessage is the payload published to the turn-indexing pipeline
// after an exchange is persisted.
type IndexTurnMessage struct {
	TurnId uuid.UUID `json:"turn_id"`
}
