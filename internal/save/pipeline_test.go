package save

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/remote"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStore lets tests gate save completion and inject failures.
type scriptedStore struct {
	mu       sync.Mutex
	requests []*dto.SaveDocumentRequest
	failures []int // status codes consumed one per call, 0 = success
	gate     chan struct{}
	started  chan struct{}
}

func (s *scriptedStore) SaveDocument(ctx context.Context, id uuid.UUID, req *dto.SaveDocumentRequest) (*entity.Document, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	var status int
	if len(s.failures) > 0 {
		status = s.failures[0]
		s.failures = s.failures[1:]
	}
	started := s.started
	gate := s.gate
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	if status != 0 {
		return nil, &remote.StatusError{Status: status, Message: "scripted failure"}
	}
	now := time.Now()
	return &entity.Document{
		Id:          id,
		Title:       req.Title,
		Content:     req.Content,
		DerivedText: req.DerivedText,
		UpdatedAt:   &now,
	}, nil
}

func (s *scriptedStore) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *scriptedStore) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	return nil, &remote.StatusError{Status: 404, Message: "not in script"}
}

func (s *scriptedStore) CreateDocument(ctx context.Context, req *dto.CreateDocumentRequest) (*entity.Document, error) {
	return nil, &remote.StatusError{Status: 404, Message: "not in script"}
}

func (s *scriptedStore) ListDocuments(ctx context.Context) ([]*dto.DocumentSummary, error) {
	return nil, nil
}

func (s *scriptedStore) CreateCheckpoint(ctx context.Context, documentId uuid.UUID, req *dto.CreateCheckpointRequest) (uuid.UUID, error) {
	return uuid.New(), nil
}

func newTestPipeline(store remote.Store) *Pipeline {
	return NewPipeline(store, logger.NewNop(), nil, 3, time.Millisecond)
}

func payloadFor(id uuid.UUID, content string) *Payload {
	return &Payload{DocumentId: id, Title: "t", Content: content, DerivedText: content}
}

func (p *Pipeline) pendingFor(id uuid.UUID) *Payload {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.slots[id]; ok {
		return s.pending
	}
	return nil
}

func TestSaveCoalescesMidFlightRequests(t *testing.T) {
	store := &scriptedStore{gate: make(chan struct{}), started: make(chan struct{}, 8)}
	p := newTestPipeline(store)
	id := uuid.New()
	ctx := context.Background()

	results := make(chan string, 3)
	go func() {
		res, err := p.Save(ctx, payloadFor(id, "v1"))
		require.NoError(t, err)
		results <- res.Sent.Content
	}()
	<-store.started // v1 is in flight and parked on the gate

	go func() {
		res, err := p.Save(ctx, payloadFor(id, "v2"))
		require.NoError(t, err)
		results <- res.Sent.Content
	}()
	go func() {
		res, err := p.Save(ctx, payloadFor(id, "v3"))
		require.NoError(t, err)
		results <- res.Sent.Content
	}()

	// Only the newest of the two queued payloads may survive.
	require.Eventually(t, func() bool {
		pending := p.pendingFor(id)
		return pending != nil && (pending.Content == "v2" || pending.Content == "v3")
	}, time.Second, time.Millisecond)

	store.gate <- struct{}{} // release v1
	<-store.started          // exactly one trailing save starts
	store.gate <- struct{}{} // release it

	for i := 0; i < 3; i++ {
		select {
		case <-results:
		case <-time.After(2 * time.Second):
			t.Fatal("caller never observed settlement")
		}
	}

	assert.Equal(t, 2, store.requestCount(), "storm of 3 requests collapses to first + newest")
	store.mu.Lock()
	assert.Equal(t, "v1", store.requests[0].Content)
	last := store.requests[1].Content
	store.mu.Unlock()
	assert.Contains(t, []string{"v2", "v3"}, last)
}

func TestSaveSkipsTrailingSaveForIdenticalPayload(t *testing.T) {
	store := &scriptedStore{gate: make(chan struct{}), started: make(chan struct{}, 8)}
	p := newTestPipeline(store)
	id := uuid.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := p.Save(ctx, payloadFor(id, "same"))
		assert.NoError(t, err)
	}()
	<-store.started

	go func() {
		defer wg.Done()
		_, err := p.Save(ctx, payloadFor(id, "same"))
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return p.pendingFor(id) != nil }, time.Second, time.Millisecond)

	store.gate <- struct{}{}
	wg.Wait()

	assert.Equal(t, 1, store.requestCount(), "identical payload never re-sent")
}

func TestSaveRetriesTransientFailureOnce(t *testing.T) {
	store := &scriptedStore{failures: []int{503}}
	p := newTestPipeline(store)
	id := uuid.New()

	res, err := p.Save(context.Background(), payloadFor(id, "durable"))
	require.NoError(t, err)
	require.NotNil(t, res.Saved)
	assert.Equal(t, "durable", res.Saved.Content, "retry persists exactly the requested payload")
	assert.Equal(t, 2, store.requestCount())
}

func TestSaveTerminalFailureDoesNotRetry(t *testing.T) {
	store := &scriptedStore{failures: []int{422, 422, 422}}
	p := newTestPipeline(store)
	id := uuid.New()

	_, err := p.Save(context.Background(), payloadFor(id, "rejected"))
	require.Error(t, err)
	assert.False(t, remote.IsRetryable(err))
	assert.Equal(t, 1, store.requestCount())
	assert.False(t, p.InFlight(id))
}

func TestSaveGivesUpAfterAttemptCap(t *testing.T) {
	store := &scriptedStore{failures: []int{500, 500, 500, 500}}
	p := newTestPipeline(store)
	id := uuid.New()

	_, err := p.Save(context.Background(), payloadFor(id, "unlucky"))
	require.Error(t, err)
	assert.Equal(t, 3, store.requestCount(), "capped at maxAttempts")
}
