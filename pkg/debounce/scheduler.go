package debounce

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FireFunc receives the id of the document whose quiet period elapsed. The
// callee is expected to read the document's current state at fire time, so a
// burst of edits collapses into one save carrying the newest content.
type FireFunc func(documentId uuid.UUID)

// Scheduler debounces edit notifications per document id. Every NotifyEdit
// cancels the document's pending delay and arms a fresh one, so a continuous
// stream of edits defers the save until input pauses for the full delay.
type Scheduler struct {
	delay time.Duration
	clock Clock
	fire  FireFunc

	mu      sync.Mutex
	pending map[uuid.UUID]*CancellableDelay
}

func NewScheduler(delay time.Duration, clock Clock, fire FireFunc) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		delay:   delay,
		clock:   clock,
		fire:    fire,
		pending: make(map[uuid.UUID]*CancellableDelay),
	}
}

// NotifyEdit arms (or re-arms) the deferred save for the given document.
func (s *Scheduler) NotifyEdit(documentId uuid.UUID) {
	s.mu.Lock()
	d, ok := s.pending[documentId]
	if !ok {
		d = NewCancellableDelay(s.clock)
		s.pending[documentId] = d
	}
	s.mu.Unlock()

	d.Arm(s.delay, func() {
		s.consume(documentId)
		s.fire(documentId)
	})
}

// Cancel drops any pending deferred save for the document. It reports whether
// one was pending. A manual save or a flush-before-switch calls this so the
// old timer can never fire after its work has been subsumed.
func (s *Scheduler) Cancel(documentId uuid.UUID) bool {
	s.mu.Lock()
	d, ok := s.pending[documentId]
	delete(s.pending, documentId)
	s.mu.Unlock()
	if !ok {
		return false
	}
	return d.Cancel()
}

// Pending reports whether a deferred save is armed for the document.
func (s *Scheduler) Pending(documentId uuid.UUID) bool {
	s.mu.Lock()
	d, ok := s.pending[documentId]
	s.mu.Unlock()
	return ok && d.Armed()
}

func (s *Scheduler) consume(documentId uuid.UUID) {
	s.mu.Lock()
	delete(s.pending, documentId)
	s.mu.Unlock()
}
