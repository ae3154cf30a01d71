package save

import (
	"context"
	"sync"
	"time"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/notify"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/remote"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

// Payload is one candidate persistence of a document, captured at the moment
// the save was requested.
type Payload struct {
	DocumentId  uuid.UUID
	Title       string
	Content     string
	DerivedText string
	Tags        []string
	NotebookId  *uuid.UUID
	FolderId    *uuid.UUID
}

// Equal reports content-equivalence: two equal payloads produce the same
// stored state, so the trailing coalesced save can be skipped.
func (p *Payload) Equal(o *Payload) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.DocumentId == o.DocumentId &&
		p.Title == o.Title &&
		p.Content == o.Content &&
		p.DerivedText == o.DerivedText
}

func (p *Payload) request() *dto.SaveDocumentRequest {
	return &dto.SaveDocumentRequest{
		Title:       p.Title,
		Content:     p.Content,
		DerivedText: p.DerivedText,
		Tags:        p.Tags,
		NotebookId:  p.NotebookId,
		FolderId:    p.FolderId,
	}
}

// Result pairs the store's canonical reply with the payload that was actually
// sent. The caller reconciles server-authoritative fields from Saved while
// using Sent to advance baselines, so edits made during the flight are never
// clobbered.
type Result struct {
	Saved *entity.Document
	Sent  *Payload
}

// Pipeline serializes persistence per document: at most one request in
// flight, and requests arriving mid-flight coalesce into a single trailing
// save carrying the newest payload. Transient failures are retried with
// capped exponential backoff; terminal failures surface immediately.
type Pipeline struct {
	store          remote.Store
	log            logger.ILogger
	notifier       *notify.Notifier
	maxAttempts    uint
	initialBackoff time.Duration

	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

type slot struct {
	pending *Payload
	flight  *flight
}

// flight is one serialized round of persistence, including any trailing
// coalesced save. Its result fields are written once, before done closes.
type flight struct {
	done   chan struct{}
	result *Result
	err    error
}

func NewPipeline(store remote.Store, log logger.ILogger, notifier *notify.Notifier, maxAttempts uint, initialBackoff time.Duration) *Pipeline {
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	if initialBackoff <= 0 {
		initialBackoff = 500 * time.Millisecond
	}
	return &Pipeline{
		store:          store,
		log:            log,
		notifier:       notifier,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		slots:          make(map[uuid.UUID]*slot),
	}
}

// Save persists the payload, or coalesces it behind the document's in-flight
// request. Callers always observe the settlement of the request that covers
// their payload (their own, or a newer one that superseded it).
func (p *Pipeline) Save(ctx context.Context, payload *Payload) (*Result, error) {
	p.mu.Lock()
	s, ok := p.slots[payload.DocumentId]
	if !ok {
		s = &slot{}
		p.slots[payload.DocumentId] = s
	}

	if s.flight != nil {
		// Coalesce: only the newest pending payload survives.
		s.pending = payload
		f := s.flight
		p.mu.Unlock()

		select {
		case <-f.done:
			return f.result, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	s.flight = f
	p.mu.Unlock()

	current := payload
	for {
		saved, sendErr := p.send(ctx, current)

		p.mu.Lock()
		if sendErr == nil && s.pending != nil && !s.pending.Equal(current) {
			// Exactly one trailing save with the latest coalesced payload.
			current = s.pending
			s.pending = nil
			p.mu.Unlock()
			continue
		}

		s.pending = nil
		s.flight = nil
		if sendErr == nil {
			f.result = &Result{Saved: saved, Sent: current}
		} else {
			f.err = sendErr
		}
		close(f.done)
		p.mu.Unlock()
		return f.result, f.err
	}
}

// InFlight reports whether a save for the document is currently running.
func (p *Pipeline) InFlight(documentId uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.slots[documentId]
	return ok && s.flight != nil
}

func (p *Pipeline) send(ctx context.Context, payload *Payload) (*entity.Document, error) {
	attempt := 0
	operation := func() (*entity.Document, error) {
		attempt++
		doc, err := p.store.SaveDocument(ctx, payload.DocumentId, payload.request())
		if err == nil {
			return doc, nil
		}
		if !remote.IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		p.log.Warn("save", "retryable save failure", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"attempt":     attempt,
			"error":       err.Error(),
		})
		p.notifier.Publish(notify.LevelWarning, "Retrying save…")
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialBackoff

	doc, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(p.maxAttempts),
	)
	if err != nil {
		p.log.Error("save", "save failed", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"attempts":    attempt,
			"error":       err.Error(),
		})
		return nil, err
	}

	p.log.Debug("save", "document saved", map[string]interface{}{
		"document_id": payload.DocumentId.String(),
		"attempts":    attempt,
	})
	return doc, nil
}
