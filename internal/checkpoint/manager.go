package checkpoint

import (
	"context"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/remote"
	"ai-notetaking-session/pkg/change"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Manager requests best-effort history snapshots and suppresses redundant
// ones. Significance is judged against the previous checkpoint's content, not
// the save baseline, so a run of small saves that individually stay under the
// threshold still earns a checkpoint once the drift accumulates.
//
// Checkpointing never blocks or fails the save or navigation it piggybacks
// on: failures are logged and swallowed.
type Manager struct {
	store            remote.Store
	log              logger.ILogger
	thresholdPercent float64

	// documentId -> content of the latest checkpoint this process requested.
	baselines *cache.Cache
}

func NewManager(store remote.Store, log logger.ILogger, thresholdPercent float64) *Manager {
	return &Manager{
		store:            store,
		log:              log,
		thresholdPercent: thresholdPercent,
		baselines:        cache.New(cache.NoExpiration, 0),
	}
}

// Seed records the checkpoint baseline for a freshly loaded document, unless
// one is already known. Without a seed, an unmodified document would look
// fully changed on its first focus switch and produce a spurious snapshot.
func (m *Manager) Seed(documentId uuid.UUID, text string) {
	if _, found := m.baselines.Get(documentId.String()); found {
		return
	}
	m.baselines.Set(documentId.String(), text, cache.NoExpiration)
}

// Checkpoint requests a snapshot of text for the document. It returns the new
// checkpoint id, or uuid.Nil when the request was skipped by policy or failed.
//
// Policy per trigger: manual always snapshots; significant-change and
// focus-switch snapshot only when text drifted significantly from the
// previous checkpoint's content.
func (m *Manager) Checkpoint(ctx context.Context, documentId uuid.UUID, text string, trigger entity.CheckpointTrigger) uuid.UUID {
	if trigger != entity.TriggerManual && !m.drifted(documentId, text) {
		return uuid.Nil
	}

	id, err := m.store.CreateCheckpoint(ctx, documentId, &dto.CreateCheckpointRequest{
		Content: text,
		Trigger: string(trigger),
	})
	if err != nil {
		m.log.Warn("checkpoint", "failed to create checkpoint", map[string]interface{}{
			"document_id": documentId.String(),
			"trigger":     string(trigger),
			"error":       err.Error(),
		})
		return uuid.Nil
	}

	m.baselines.Set(documentId.String(), text, cache.NoExpiration)
	m.log.Debug("checkpoint", "checkpoint created", map[string]interface{}{
		"document_id":   documentId.String(),
		"checkpoint_id": id.String(),
		"trigger":       string(trigger),
	})
	return id
}

func (m *Manager) drifted(documentId uuid.UUID, text string) bool {
	baseline := ""
	if raw, found := m.baselines.Get(documentId.String()); found {
		baseline = raw.(string)
	}
	return change.HasSignificantChange(baseline, text, m.thresholdPercent)
}
