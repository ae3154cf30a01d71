package checkpoint

import (
	"context"
	"errors"
	"testing"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/remote/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, threshold float64) (*Manager, *memory.Store, uuid.UUID) {
	t.Helper()
	store := memory.NewStore(50)
	doc, err := store.CreateDocument(context.Background(), &dto.CreateDocumentRequest{Title: "history"})
	require.NoError(t, err)
	return NewManager(store, logger.NewNop(), threshold), store, doc.Id
}

func TestManualCheckpointAlwaysCreated(t *testing.T) {
	m, store, docId := newTestManager(t, 5)
	ctx := context.Background()

	first := m.Checkpoint(ctx, docId, "same text", entity.TriggerManual)
	second := m.Checkpoint(ctx, docId, "same text", entity.TriggerManual)

	assert.NotEqual(t, uuid.Nil, first)
	assert.NotEqual(t, uuid.Nil, second, "manual trigger ignores change magnitude")
	assert.Len(t, store.Checkpoints(docId), 2)
}

func TestFocusSwitchSkipsUnmodifiedDocument(t *testing.T) {
	m, store, docId := newTestManager(t, 5)

	m.Seed(docId, "loaded content")
	got := m.Checkpoint(context.Background(), docId, "loaded content", entity.TriggerFocusSwitch)

	assert.Equal(t, uuid.Nil, got)
	assert.Empty(t, store.Checkpoints(docId))
}

func TestSeedDoesNotOverwriteKnownBaseline(t *testing.T) {
	m, store, docId := newTestManager(t, 5)
	ctx := context.Background()

	require.NotEqual(t, uuid.Nil, m.Checkpoint(ctx, docId, "first revision", entity.TriggerManual))

	// Reloading the document must not clobber the recorded checkpoint content.
	m.Seed(docId, "first revision edited meanwhile........")
	got := m.Checkpoint(ctx, docId, "first revision", entity.TriggerFocusSwitch)

	assert.Equal(t, uuid.Nil, got, "content identical to last checkpoint never snapshots")
	assert.Len(t, store.Checkpoints(docId), 1)
}

func TestSignificantChangeMeasuredAgainstPreviousCheckpoint(t *testing.T) {
	m, store, docId := newTestManager(t, 10)
	ctx := context.Background()

	require.NotEqual(t, uuid.Nil, m.Checkpoint(ctx, docId, "0123456789", entity.TriggerManual))

	// Each save adds one char: 10% of the checkpointed 10 chars is at the
	// threshold only once the drift accumulates past it.
	assert.Equal(t, uuid.Nil, m.Checkpoint(ctx, docId, "0123456789", entity.TriggerSignificantChange))
	got := m.Checkpoint(ctx, docId, "0123456789ab", entity.TriggerSignificantChange)
	assert.NotEqual(t, uuid.Nil, got, "accumulated 20 percent drift beats the threshold")
	assert.Len(t, store.Checkpoints(docId), 2)

	// The new checkpoint resets the drift baseline.
	assert.Equal(t, uuid.Nil, m.Checkpoint(ctx, docId, "0123456789abc", entity.TriggerSignificantChange))
}

type failingStore struct {
	*memory.Store
}

func (f *failingStore) CreateCheckpoint(ctx context.Context, documentId uuid.UUID, req *dto.CreateCheckpointRequest) (uuid.UUID, error) {
	return uuid.Nil, errors.New("history service down")
}

func TestCheckpointFailureIsSwallowed(t *testing.T) {
	inner := memory.NewStore(50)
	doc, err := inner.CreateDocument(context.Background(), &dto.CreateDocumentRequest{Title: "x"})
	require.NoError(t, err)

	m := NewManager(&failingStore{Store: inner}, logger.NewNop(), 5)

	got := m.Checkpoint(context.Background(), doc.Id, "anything", entity.TriggerManual)
	assert.Equal(t, uuid.Nil, got, "failure reported as skip, never as error")
}
