package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-notetaking-session/internal/checkpoint"
	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/notify"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/remote"
	"ai-notetaking-session/internal/save"
	"ai-notetaking-session/pkg/change"
	"ai-notetaking-session/pkg/debounce"

	"github.com/google/uuid"
)

// State of the coordinator's document lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateActive
	StateSwitching
)

var (
	// ErrNoActiveDocument is returned by entry points that require one.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrStaleLoad marks a load superseded by a newer selection; its reply
	// was discarded without touching session state.
	ErrStaleLoad = errors.New("load superseded by a newer selection")
)

// EditingSurface is the rich-text editor collaborator. It receives wholesale
// content replacement on document load, never mid-edit.
type EditingSurface interface {
	SetContent(content string)
}

// Config holds the administrator-tunable policy values, read at startup and
// immutable for the session's lifetime.
type Config struct {
	AutoSaveDelay                     time.Duration
	SignificantChangeThresholdPercent float64
	FlushOnSwitchEnabled              bool
}

// Coordinator owns the editing session: which document is active, when its
// edits are flushed, and how navigation sequences flush, checkpoint and load.
//
// All session state is mutated under one mutex; remote calls run outside it
// so edits keep flowing while a save is in flight. Stale load replies are
// discarded by sequence token, not arrival order.
type Coordinator struct {
	cfg         Config
	store       remote.Store
	saver       *save.Pipeline
	checkpoints *checkpoint.Manager
	notifier    *notify.Notifier
	surface     EditingSurface
	scheduler   *debounce.Scheduler
	log         logger.ILogger

	mu      sync.Mutex
	state   State
	active  *entity.Document
	loadSeq uint64
}

func NewCoordinator(
	cfg Config,
	store remote.Store,
	saver *save.Pipeline,
	checkpoints *checkpoint.Manager,
	notifier *notify.Notifier,
	surface EditingSurface,
	clock debounce.Clock,
	log logger.ILogger,
) *Coordinator {
	c := &Coordinator{
		cfg:         cfg,
		store:       store,
		saver:       saver,
		checkpoints: checkpoints,
		notifier:    notifier,
		surface:     surface,
		log:         log,
		state:       StateIdle,
	}
	c.scheduler = debounce.NewScheduler(cfg.AutoSaveDelay, clock, c.autoSave)
	return c
}

// CurrentState returns the coordinator's lifecycle state.
func (c *Coordinator) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveDocument returns a snapshot of the active document, if any.
func (c *Coordinator) ActiveDocument() (*entity.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil, false
	}
	return c.active.Clone(), true
}

// EditContent records a local mutation of the active document and arms the
// deferred save. Synchronous and local-only: baselines are untouched and no
// remote call happens here. Content identical to the baseline never arms a
// save, and disarms one left over from earlier edits.
func (c *Coordinator) EditContent(content, derivedText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive || c.active == nil {
		return ErrNoActiveDocument
	}

	c.active.Content = content
	c.active.DerivedText = derivedText

	if !change.HasSignificantChange(c.active.BaselineDerivedText, derivedText, 0) {
		c.scheduler.Cancel(c.active.Id)
		return nil
	}

	c.scheduler.NotifyEdit(c.active.Id)
	return nil
}

// ManualSave cancels the pending auto-save and persists the active document
// immediately, awaiting completion.
func (c *Coordinator) ManualSave(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateActive || c.active == nil {
		c.mu.Unlock()
		return ErrNoActiveDocument
	}
	c.scheduler.Cancel(c.active.Id)
	payload := payloadFromDocument(c.active)
	c.mu.Unlock()

	if err := c.persist(ctx, payload); err != nil {
		return err
	}
	c.notifier.Publish(notify.LevelSuccess, "Saved.")
	return nil
}

// ManualCheckpoint snapshots the active document's current content
// unconditionally.
func (c *Coordinator) ManualCheckpoint(ctx context.Context) (uuid.UUID, error) {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return uuid.Nil, ErrNoActiveDocument
	}
	id := c.active.Id
	text := c.active.DerivedText
	c.mu.Unlock()

	return c.checkpoints.Checkpoint(ctx, id, text, entity.TriggerManual), nil
}

// SelectDocument switches focus to another document. The outgoing document is
// flushed first when it carries unsaved edits: the switch never proceeds
// with an un-persisted edit still pending, unless the flush fails terminally,
// in which case the switch goes ahead behind a sticky warning. The new
// document's load is tagged with a fresh sequence token so an out-of-order
// reply can never hijack the session.
func (c *Coordinator) SelectDocument(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	if c.active != nil && c.active.Id == id && c.state == StateActive {
		c.mu.Unlock()
		return nil
	}
	outgoing := c.active.Clone()
	if outgoing != nil {
		c.state = StateSwitching
	}
	c.mu.Unlock()

	c.retire(ctx, outgoing)
	return c.load(ctx, id)
}

// CreateDocument asks the store for a fresh document (store-assigned id) and
// switches focus to it, flushing the outgoing document exactly like a switch.
func (c *Coordinator) CreateDocument(ctx context.Context, title string) (uuid.UUID, error) {
	c.mu.Lock()
	outgoing := c.active.Clone()
	if outgoing != nil {
		c.state = StateSwitching
	}
	c.mu.Unlock()

	c.retire(ctx, outgoing)

	doc, err := c.store.CreateDocument(ctx, &dto.CreateDocumentRequest{Title: title})
	if err != nil {
		c.restore(outgoing)
		c.notifier.Publish(notify.LevelError, "Failed to create document.")
		return uuid.Nil, err
	}

	if err := c.load(ctx, doc.Id); err != nil {
		return uuid.Nil, err
	}
	return doc.Id, nil
}

// retire resolves the outgoing document before focus moves on: cancel its
// timer, flush unsaved edits, then request a focus-switch checkpoint without
// awaiting it.
func (c *Coordinator) retire(ctx context.Context, outgoing *entity.Document) {
	if outgoing == nil {
		return
	}

	c.scheduler.Cancel(outgoing.Id)

	dirty := change.HasSignificantChange(outgoing.BaselineDerivedText, outgoing.DerivedText, 0)
	if c.cfg.FlushOnSwitchEnabled && dirty {
		if err := c.persist(ctx, payloadFromDocument(outgoing)); err != nil {
			// Terminal failure (or exhausted retries): navigation intent
			// wins, but the user gets a persistent warning instead of a
			// transient status line.
			c.notifier.Sticky(notify.LevelWarning,
				fmt.Sprintf("Switched away from %q with unsaved changes.", outgoing.Title))
			c.log.Warn("session", "flush before switch failed", map[string]interface{}{
				"document_id": outgoing.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	// Best-effort history snapshot; never blocks navigation.
	text := outgoing.DerivedText
	go c.checkpoints.Checkpoint(context.Background(), outgoing.Id, text, entity.TriggerFocusSwitch)
}

func (c *Coordinator) load(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.state = StateLoading
	prev := c.active
	c.mu.Unlock()

	doc, err := c.store.GetDocument(ctx, id)

	c.mu.Lock()
	if seq != c.loadSeq {
		// A newer selection superseded this load; its reply must not touch
		// session state, whatever it carried.
		c.mu.Unlock()
		return ErrStaleLoad
	}

	if err != nil {
		c.restoreLocked(prev)
		c.mu.Unlock()
		c.notifier.Publish(notify.LevelError, "Failed to open document.")
		return err
	}
	if doc == nil || doc.Id != id {
		c.restoreLocked(prev)
		c.mu.Unlock()
		c.notifier.Publish(notify.LevelError, "Store returned the wrong document; keeping the current one.")
		return &remote.ProtocolError{Reason: fmt.Sprintf("requested document %s, got %v", id, doc)}
	}

	// Just loaded from the durable store: current equals baseline by
	// definition.
	doc.BaselineContent = doc.Content
	doc.BaselineDerivedText = doc.DerivedText
	c.active = doc
	c.state = StateActive
	c.mu.Unlock()

	c.checkpoints.Seed(id, doc.DerivedText)
	if c.surface != nil {
		c.surface.SetContent(doc.Content)
	}
	c.log.Info("session", "document activated", map[string]interface{}{
		"document_id": id.String(),
	})
	return nil
}

// autoSave is the scheduler's fire callback: persist the document's state as
// of fire time, carrying every edit accumulated during the delay window.
func (c *Coordinator) autoSave(documentId uuid.UUID) {
	c.mu.Lock()
	if c.state != StateActive || c.active == nil || c.active.Id != documentId {
		c.mu.Unlock()
		return
	}
	if !change.HasSignificantChange(c.active.BaselineDerivedText, c.active.DerivedText, 0) {
		c.mu.Unlock()
		return
	}
	payload := payloadFromDocument(c.active)
	c.mu.Unlock()

	if err := c.persist(context.Background(), payload); err != nil {
		c.notifier.Publish(notify.LevelError, "Failed to save; your changes are kept locally. Please retry.")
	}
}

// persist runs the payload through the save pipeline and reconciles the
// outcome into session state.
func (c *Coordinator) persist(ctx context.Context, payload *save.Payload) error {
	res, err := c.saver.Save(ctx, payload)
	if err != nil {
		return err
	}
	c.reconcile(res)

	// Opportunistic history snapshot after a successful save; the manager
	// decides whether the accumulated drift warrants one.
	go c.checkpoints.Checkpoint(context.Background(), res.Sent.DocumentId, res.Sent.DerivedText, entity.TriggerSignificantChange)
	return nil
}

// reconcile merges a save result into session state. Only server-authoritative
// fields are adopted; the active document's content always wins over the
// server echo so keystrokes made during the flight survive. Baselines advance
// to what was actually sent; if newer edits arrived mid-flight the document
// simply stays dirty.
func (c *Coordinator) reconcile(res *save.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.Id != res.Sent.DocumentId {
		return
	}
	c.active.UpdatedAt = res.Saved.UpdatedAt
	c.active.BaselineContent = res.Sent.Content
	c.active.BaselineDerivedText = res.Sent.DerivedText
}

func (c *Coordinator) restore(prev *entity.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restoreLocked(prev)
}

// restoreLocked puts the session back into its prior valid state after a
// failed or rejected load. Callers hold c.mu.
func (c *Coordinator) restoreLocked(prev *entity.Document) {
	c.active = prev
	if prev != nil {
		c.state = StateActive
	} else {
		c.state = StateIdle
	}
}

func payloadFromDocument(doc *entity.Document) *save.Payload {
	return &save.Payload{
		DocumentId:  doc.Id,
		Title:       doc.Title,
		Content:     doc.Content,
		DerivedText: doc.DerivedText,
		Tags:        append([]string(nil), doc.Tags...),
		NotebookId:  doc.NotebookId,
		FolderId:    doc.FolderId,
	}
}
