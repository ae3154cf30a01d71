package memory

import (
	"context"
	"fmt"
	"testing"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/remote"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointCapEvictsOldest(t *testing.T) {
	s := NewStore(3)
	ctx := context.Background()

	doc, err := s.CreateDocument(ctx, &dto.CreateDocumentRequest{Title: "capped"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := s.CreateCheckpoint(ctx, doc.Id, &dto.CreateCheckpointRequest{
			Content: fmt.Sprintf("revision %d", i),
			Trigger: string(entity.TriggerManual),
		})
		require.NoError(t, err)
	}

	got := s.Checkpoints(doc.Id)
	require.Len(t, got, 3, "cap must never be exceeded")
	assert.Equal(t, "revision 2", got[0].Content)
	assert.Equal(t, "revision 4", got[2].Content)
}

func TestSaveUnknownDocumentIsTerminal(t *testing.T) {
	s := NewStore(10)

	_, err := s.SaveDocument(context.Background(), uuid.New(), &dto.SaveDocumentRequest{Title: "ghost"})
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err))
	assert.False(t, remote.IsRetryable(err))
}

func TestSaveAssignsServerFieldsAndDerivedText(t *testing.T) {
	s := NewStore(10)
	ctx := context.Background()

	doc, err := s.CreateDocument(ctx, &dto.CreateDocumentRequest{Title: "draft"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, doc.Id, "id is store-assigned")
	assert.Nil(t, doc.UpdatedAt)

	saved, err := s.SaveDocument(ctx, doc.Id, &dto.SaveDocumentRequest{
		Title:   "draft",
		Content: `{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"text","text":"hello"}]}]}}`,
	})
	require.NoError(t, err)
	require.NotNil(t, saved.UpdatedAt)
	assert.Equal(t, "hello", saved.DerivedText, "derived text falls back to the lexical projection")
}
