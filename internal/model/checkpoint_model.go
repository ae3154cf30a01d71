package model

import (
	"time"

	"github.com/google/uuid"
)

type Checkpoint struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	Content    string    `gorm:"type:text"`
	Trigger    string    `gorm:"type:varchar(32);not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Checkpoint) TableName() string {
	return "document_checkpoints"
}
