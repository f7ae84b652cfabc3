package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Question      string
	Answer        string
	Truncated     bool
	CreatedAt     time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
