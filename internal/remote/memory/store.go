package memory

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/remote"
	"ai-notetaking-session/pkg/lexical"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store is an in-memory remote.Store used by tests and offline development.
// It mimics the devstore's semantics: server-assigned ids and timestamps,
// derived-text fallback, and oldest-first checkpoint pruning beyond the cap.
type Store struct {
	mu             sync.Mutex
	docs           *cache.Cache
	checkpoints    map[uuid.UUID][]*entity.Checkpoint
	maxCheckpoints int
}

func NewStore(maxCheckpointsPerDocument int) *Store {
	return &Store{
		docs:           cache.New(cache.NoExpiration, 0),
		checkpoints:    make(map[uuid.UUID][]*entity.Checkpoint),
		maxCheckpoints: maxCheckpointsPerDocument,
	}
}

// Put seeds a document, preserving its id. Test helper.
func (s *Store) Put(doc *entity.Document) {
	s.docs.Set(doc.Id.String(), doc.Clone(), cache.NoExpiration)
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	raw, found := s.docs.Get(id.String())
	if !found {
		return nil, &remote.StatusError{Status: http.StatusNotFound, Message: "document not found"}
	}
	return raw.(*entity.Document).Clone(), nil
}

func (s *Store) SaveDocument(ctx context.Context, id uuid.UUID, req *dto.SaveDocumentRequest) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found := s.docs.Get(id.String())
	if !found {
		return nil, &remote.StatusError{Status: http.StatusNotFound, Message: "document not found"}
	}

	doc := raw.(*entity.Document).Clone()
	now := time.Now()
	doc.Title = req.Title
	doc.Content = req.Content
	doc.DerivedText = req.DerivedText
	if doc.DerivedText == "" {
		doc.DerivedText = lexical.ProjectText(req.Content)
	}
	doc.Tags = req.Tags
	doc.NotebookId = req.NotebookId
	doc.FolderId = req.FolderId
	doc.UpdatedAt = &now

	s.docs.Set(id.String(), doc, cache.NoExpiration)
	return doc.Clone(), nil
}

func (s *Store) CreateDocument(ctx context.Context, req *dto.CreateDocumentRequest) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &entity.Document{
		Id:          uuid.New(),
		Title:       req.Title,
		Content:     req.Content,
		DerivedText: lexical.ProjectText(req.Content),
		Tags:        req.Tags,
		NotebookId:  req.NotebookId,
		FolderId:    req.FolderId,
		CreatedAt:   time.Now(),
	}
	s.docs.Set(doc.Id.String(), doc, cache.NoExpiration)
	return doc.Clone(), nil
}

func (s *Store) ListDocuments(ctx context.Context) ([]*dto.DocumentSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]*dto.DocumentSummary, 0)
	for _, item := range s.docs.Items() {
		doc := item.Object.(*entity.Document)
		summaries = append(summaries, &dto.DocumentSummary{
			Id:        doc.Id,
			Title:     doc.Title,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Title < summaries[j].Title })
	return summaries, nil
}

func (s *Store) CreateCheckpoint(ctx context.Context, documentId uuid.UUID, req *dto.CreateCheckpointRequest) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.docs.Get(documentId.String()); !found {
		return uuid.Nil, &remote.StatusError{Status: http.StatusNotFound, Message: "document not found"}
	}

	cp := &entity.Checkpoint{
		Id:         uuid.New(),
		DocumentId: documentId,
		Content:    req.Content,
		Trigger:    entity.CheckpointTrigger(req.Trigger),
		CreatedAt:  time.Now(),
	}

	list := append(s.checkpoints[documentId], cp)
	// Retention cap: drop oldest beyond the maximum.
	if s.maxCheckpoints > 0 && len(list) > s.maxCheckpoints {
		list = list[len(list)-s.maxCheckpoints:]
	}
	s.checkpoints[documentId] = list

	return cp.Id, nil
}

// Checkpoints returns the retained snapshots for a document, oldest first.
func (s *Store) Checkpoints(documentId uuid.UUID) []*entity.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.Checkpoint(nil), s.checkpoints[documentId]...)
}
