package remote

import (
	"context"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"

	"github.com/google/uuid"
)

// Store is the durable document store the editing session talks to. Every
// call can fail with a network error, a terminal (4xx-class) error or a
// retryable (5xx-class) error; see errors.go for the taxonomy.
type Store interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	SaveDocument(ctx context.Context, id uuid.UUID, req *dto.SaveDocumentRequest) (*entity.Document, error)
	CreateDocument(ctx context.Context, req *dto.CreateDocumentRequest) (*entity.Document, error)
	ListDocuments(ctx context.Context) ([]*dto.DocumentSummary, error)
	CreateCheckpoint(ctx context.Context, documentId uuid.UUID, req *dto.CreateCheckpointRequest) (uuid.UUID, error)
}
