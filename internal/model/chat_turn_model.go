package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatTurn is one question/answer pair. Turns are immutable once written;
// Truncated marks answers cut short by a mid-stream provider failure.
type ChatTurn struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Question      string         `gorm:"type:text;not null"`
	Answer        string         `gorm:"type:text;not null"`
	Truncated     bool           `gorm:"not null;default:false"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
