package service

import (
	"context"
	"time"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/repository/cache"
	"ai-notetaking-session/internal/repository/specification"
	"ai-notetaking-session/internal/repository/unitofwork"
	"ai-notetaking-session/pkg/events"
	"ai-notetaking-session/pkg/lexical"
	pktNats "ai-notetaking-session/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context) ([]*dto.DocumentSummary, error)
	Save(ctx context.Context, id uuid.UUID, req *dto.SaveDocumentRequest) (*dto.DocumentResponse, error)
	CreateCheckpoint(ctx context.Context, documentId uuid.UUID, req *dto.CreateCheckpointRequest) (*dto.CreateCheckpointResponse, error)
	ListCheckpoints(ctx context.Context, documentId uuid.UUID) ([]*dto.CheckpointResponse, error)
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	documentCache  *cache.DocumentCache
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
	maxCheckpoints int
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	documentCache *cache.DocumentCache,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	maxCheckpoints int,
) IDocumentService {
	if maxCheckpoints <= 0 {
		maxCheckpoints = 20
	}
	return &documentService{
		uowFactory:     uowFactory,
		documentCache:  documentCache,
		eventPublisher: eventPublisher,
		log:            log,
		maxCheckpoints: maxCheckpoints,
	}
}

func (s *documentService) Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document := entity.Document{
		Id:          uuid.New(),
		Title:       req.Title,
		Content:     req.Content,
		DerivedText: lexical.ProjectText(req.Content),
		Tags:        req.Tags,
		NotebookId:  req.NotebookId,
		FolderId:    req.FolderId,
		CreatedAt:   time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	s.documentCache.Set(ctx, &document)
	return toDocumentResponse(&document), nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	if cached := s.documentCache.Get(ctx, id); cached != nil {
		return toDocumentResponse(cached), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	s.documentCache.Set(ctx, document)
	return toDocumentResponse(document), nil
}

func (s *documentService) List(ctx context.Context) ([]*dto.DocumentSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	summaries := make([]*dto.DocumentSummary, len(documents))
	for i, d := range documents {
		summaries[i] = &dto.DocumentSummary{
			Id:        d.Id,
			Title:     d.Title,
			UpdatedAt: d.UpdatedAt,
		}
	}
	return summaries, nil
}

func (s *documentService) Save(ctx context.Context, id uuid.UUID, req *dto.SaveDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	now := time.Now()
	document.Title = req.Title
	document.Content = req.Content
	document.DerivedText = req.DerivedText
	if document.DerivedText == "" {
		document.DerivedText = lexical.ProjectText(req.Content)
	}
	document.Tags = req.Tags
	document.NotebookId = req.NotebookId
	document.FolderId = req.FolderId
	document.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return nil, err
	}

	s.documentCache.Set(ctx, document)

	// Event is auxiliary: failure to publish never fails the save.
	evt := events.DocumentSavedEvent{
		DocumentId: document.Id,
		Title:      document.Title,
		OccurredAt: now,
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("document", "failed to publish DOCUMENT_SAVED event", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
	}

	return toDocumentResponse(document), nil
}

func (s *documentService) CreateCheckpoint(ctx context.Context, documentId uuid.UUID, req *dto.CreateCheckpointRequest) (*dto.CreateCheckpointResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	content := req.Content
	if content == "" {
		content = document.DerivedText
	}

	checkpoint := entity.Checkpoint{
		Id:         uuid.New(),
		DocumentId: documentId,
		Content:    content,
		Trigger:    entity.CheckpointTrigger(req.Trigger),
		CreatedAt:  time.Now(),
	}

	if err := uow.CheckpointRepository().Create(ctx, &checkpoint); err != nil {
		return nil, err
	}

	// Retention cap is enforced server side on every create so no client can
	// grow a document's history without bound.
	if err := uow.CheckpointRepository().PruneOldest(ctx, documentId, s.maxCheckpoints); err != nil {
		s.log.Warn("document", "checkpoint retention pruning failed", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
	}

	evt := events.CheckpointCreatedEvent{
		CheckpointId: checkpoint.Id,
		DocumentId:   documentId,
		Trigger:      req.Trigger,
		OccurredAt:   checkpoint.CreatedAt,
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("document", "failed to publish CHECKPOINT_CREATED event", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
	}

	return &dto.CreateCheckpointResponse{Id: checkpoint.Id}, nil
}

func (s *documentService) ListCheckpoints(ctx context.Context, documentId uuid.UUID) ([]*dto.CheckpointResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	checkpoints, err := uow.CheckpointRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: documentId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.CheckpointResponse, len(checkpoints))
	for i, c := range checkpoints {
		responses[i] = &dto.CheckpointResponse{
			Id:         c.Id,
			DocumentId: c.DocumentId,
			Content:    c.Content,
			Trigger:    string(c.Trigger),
			CreatedAt:  c.CreatedAt,
		}
	}
	return responses, nil
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:          d.Id,
		Title:       d.Title,
		Content:     d.Content,
		DerivedText: d.DerivedText,
		Tags:        d.Tags,
		NotebookId:  d.NotebookId,
		FolderId:    d.FolderId,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
