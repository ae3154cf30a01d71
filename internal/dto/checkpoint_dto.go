package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCheckpointRequest struct {
	Content string `json:"content"`
	Trigger string `json:"trigger" validate:"required,oneof=significant-change focus-switch manual"`
}

type CreateCheckpointResponse struct {
	Id uuid.UUID `json:"id"`
}

type CheckpointResponse struct {
	Id         uuid.UUID `json:"id"`
	DocumentId uuid.UUID `json:"document_id"`
	Content    string    `json:"content"`
	Trigger    string    `json:"trigger"`
	CreatedAt  time.Time `json:"created_at"`
}
