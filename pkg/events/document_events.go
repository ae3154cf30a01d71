package events

import (
	"time"

	"github.com/google/uuid"
)

// DocumentSavedEvent is emitted after a document revision is persisted.
type DocumentSavedEvent struct {
	DocumentId uuid.UUID
	Title      string
	OccurredAt time.Time
}

func (e DocumentSavedEvent) EventType() string {
	return "DOCUMENT_SAVED"
}

func (e DocumentSavedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"document_id": e.DocumentId,
		"title":       e.Title,
	}
}

func (e DocumentSavedEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// CheckpointCreatedEvent is emitted after a history snapshot is recorded.
type CheckpointCreatedEvent struct {
	CheckpointId uuid.UUID
	DocumentId   uuid.UUID
	Trigger      string
	OccurredAt   time.Time
}

func (e CheckpointCreatedEvent) EventType() string {
	return "CHECKPOINT_CREATED"
}

func (e CheckpointCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"checkpoint_id": e.CheckpointId,
		"document_id":   e.DocumentId,
		"trigger":       e.Trigger,
	}
}

func (e CheckpointCreatedEvent) Timestamp() time.Time {
	return e.OccurredAt
}
