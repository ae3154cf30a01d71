package entity

import (
	"time"

	"github.com/google/uuid"
)

// CheckpointTrigger records why a history snapshot was taken.
type CheckpointTrigger string

const (
	TriggerSignificantChange CheckpointTrigger = "significant-change"
	TriggerFocusSwitch       CheckpointTrigger = "focus-switch"
	TriggerManual            CheckpointTrigger = "manual"
)

// Checkpoint is an immutable point-in-time snapshot of a document's content.
// The store owns retention: snapshots beyond the configured cap are pruned
// oldest-first on creation.
type Checkpoint struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Content    string
	Trigger    CheckpointTrigger
	CreatedAt  time.Time
}
