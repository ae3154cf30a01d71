package unitofwork

import (
	"context"

	"ai-notetaking-session/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	CheckpointRepository() contract.CheckpointRepository
}
