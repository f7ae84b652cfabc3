package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Topic     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
	EndedAt   *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
