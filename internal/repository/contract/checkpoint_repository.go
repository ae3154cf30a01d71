package contract

import (
	"context"

	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/repository/specification"

	"github.com/google/uuid"
)

type CheckpointRepository interface {
	Create(ctx context.Context, checkpoint *entity.Checkpoint) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Checkpoint, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// PruneOldest removes the oldest snapshots of a document until only keep
	// remain. Retention is enforced on every create, never as a batch job.
	PruneOldest(ctx context.Context, documentId uuid.UUID, keep int) error
}
