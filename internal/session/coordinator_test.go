package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-notetaking-session/internal/checkpoint"
	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/notify"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/remote"
	"ai-notetaking-session/internal/remote/memory"
	"ai-notetaking-session/internal/save"
	"ai-notetaking-session/pkg/debounce"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore wraps the in-memory store with call recording, per-document
// gates and failure injection.
type testStore struct {
	*memory.Store

	mu         sync.Mutex
	calls      []string
	saveGate   chan struct{}
	getGates   map[uuid.UUID]chan struct{}
	failSaves  map[uuid.UUID]int
	misdeliver map[uuid.UUID]*entity.Document
	saveCount  int

	getStarted  chan uuid.UUID
	saveStarted chan uuid.UUID
}

func newTestStore() *testStore {
	return &testStore{
		Store:     memory.NewStore(50),
		getGates:  make(map[uuid.UUID]chan struct{}),
		failSaves: make(map[uuid.UUID]int),
	}
}

func (s *testStore) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *testStore) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *testStore) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}

func (s *testStore) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	s.record("load " + id.String())
	s.mu.Lock()
	gate := s.getGates[id]
	started := s.getStarted
	wrong := s.misdeliver[id]
	s.mu.Unlock()

	if started != nil {
		started <- id
	}
	if gate != nil {
		<-gate
	}
	if wrong != nil {
		return wrong, nil
	}
	return s.Store.GetDocument(ctx, id)
}

func (s *testStore) SaveDocument(ctx context.Context, id uuid.UUID, req *dto.SaveDocumentRequest) (*entity.Document, error) {
	s.record("save " + id.String())
	s.mu.Lock()
	s.saveCount++
	gate := s.saveGate
	started := s.saveStarted
	status := s.failSaves[id]
	s.mu.Unlock()

	if started != nil {
		started <- id
	}
	if gate != nil {
		<-gate
	}
	if status != 0 {
		return nil, &remote.StatusError{Status: status, Message: "injected failure"}
	}
	return s.Store.SaveDocument(ctx, id, req)
}

type recordingSurface struct {
	mu       sync.Mutex
	contents []string
}

func (r *recordingSurface) SetContent(content string) {
	r.mu.Lock()
	r.contents = append(r.contents, content)
	r.mu.Unlock()
}

func (r *recordingSurface) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.contents) == 0 {
		return ""
	}
	return r.contents[len(r.contents)-1]
}

type fixture struct {
	store   *testStore
	clock   *debounce.VirtualClock
	surface *recordingSurface
	coord   *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore()
	clock := debounce.NewVirtualClock()
	surface := &recordingSurface{}
	log := logger.NewNop()

	cfg := Config{
		AutoSaveDelay:                     500 * time.Millisecond,
		SignificantChangeThresholdPercent: 5,
		FlushOnSwitchEnabled:              true,
	}
	saver := save.NewPipeline(store, log, nil, 3, time.Millisecond)
	checkpoints := checkpoint.NewManager(store, log, cfg.SignificantChangeThresholdPercent)
	coord := NewCoordinator(cfg, store, saver, checkpoints, nil, surface, clock, log)

	return &fixture{store: store, clock: clock, surface: surface, coord: coord}
}

func (f *fixture) seedAndOpen(t *testing.T, title, text string) uuid.UUID {
	t.Helper()
	doc := &entity.Document{Id: uuid.New(), Title: title, Content: text, DerivedText: text, CreatedAt: time.Now()}
	f.store.Put(doc)
	require.NoError(t, f.coord.SelectDocument(context.Background(), doc.Id))
	return doc.Id
}

func TestDebounceCollapseProducesOneSaveWithLatestContent(t *testing.T) {
	f := newFixture(t)
	id := f.seedAndOpen(t, "draft", "start")

	edits := []string{"start a", "start ab", "start abc", "start abcd"}
	for _, text := range edits {
		require.NoError(t, f.coord.EditContent(text, text))
		f.clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 0, f.store.saves(), "no save while edits keep arriving")

	f.clock.Advance(500 * time.Millisecond)

	assert.Equal(t, 1, f.store.saves())
	stored, err := f.store.Store.GetDocument(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "start abcd", stored.Content, "the single save carries the latest edit")
}

func TestNoOpEditNeverTriggersSave(t *testing.T) {
	f := newFixture(t)
	f.seedAndOpen(t, "untouched", "same content")

	require.NoError(t, f.coord.EditContent("same content", "same content"))
	f.clock.Advance(time.Minute)
	assert.Equal(t, 0, f.store.saves())
}

func TestRevertToBaselineDisarmsPendingSave(t *testing.T) {
	f := newFixture(t)
	f.seedAndOpen(t, "undone", "original")

	require.NoError(t, f.coord.EditContent("original edited", "original edited"))
	require.NoError(t, f.coord.EditContent("original", "original"))

	f.clock.Advance(time.Minute)
	assert.Equal(t, 0, f.store.saves(), "an undo back to baseline must not fire the stale timer")
}

func TestSwitchFlushesOutgoingBeforeLoadingIncoming(t *testing.T) {
	f := newFixture(t)
	a := f.seedAndOpen(t, "outgoing", "alpha")
	b := &entity.Document{Id: uuid.New(), Title: "incoming", Content: "beta", DerivedText: "beta"}
	f.store.Put(b)

	require.NoError(t, f.coord.EditContent("alpha edited", "alpha edited"))
	require.NoError(t, f.coord.SelectDocument(context.Background(), b.Id))

	calls := f.store.callLog()
	// load a (open), save a (flush), load b, strictly in that order.
	require.Len(t, calls, 3)
	assert.Equal(t, "load "+a.String(), calls[0])
	assert.Equal(t, "save "+a.String(), calls[1])
	assert.Equal(t, "load "+b.Id.String(), calls[2])

	active, ok := f.coord.ActiveDocument()
	require.True(t, ok)
	assert.Equal(t, b.Id, active.Id)
	assert.Equal(t, "beta", f.surface.last())

	stored, err := f.store.Store.GetDocument(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "alpha edited", stored.Content, "the flush persisted the last edit")
}

func TestSwitchWithoutChangesSkipsFlush(t *testing.T) {
	f := newFixture(t)
	f.seedAndOpen(t, "clean", "alpha")
	b := &entity.Document{Id: uuid.New(), Title: "other", Content: "beta", DerivedText: "beta"}
	f.store.Put(b)

	require.NoError(t, f.coord.SelectDocument(context.Background(), b.Id))
	assert.Equal(t, 0, f.store.saves())
}

func TestStaleLoadResponseIsDiscarded(t *testing.T) {
	f := newFixture(t)
	a := &entity.Document{Id: uuid.New(), Title: "a", Content: "content a", DerivedText: "content a"}
	b := &entity.Document{Id: uuid.New(), Title: "b", Content: "content b", DerivedText: "content b"}
	f.store.Put(a)
	f.store.Put(b)

	gateA := make(chan struct{})
	gateB := make(chan struct{})
	f.store.getGates[a.Id] = gateA
	f.store.getGates[b.Id] = gateB
	f.store.getStarted = make(chan uuid.UUID, 4)

	errA := make(chan error, 1)
	errB := make(chan error, 1)

	go func() { errA <- f.coord.SelectDocument(context.Background(), a.Id) }()
	require.Equal(t, a.Id, <-f.store.getStarted, "a's load issued first")

	go func() { errB <- f.coord.SelectDocument(context.Background(), b.Id) }()
	require.Equal(t, b.Id, <-f.store.getStarted)

	// b's reply lands first; a's arrives late and must be discarded.
	close(gateB)
	require.NoError(t, <-errB)
	close(gateA)
	assert.ErrorIs(t, <-errA, ErrStaleLoad)

	active, ok := f.coord.ActiveDocument()
	require.True(t, ok)
	assert.Equal(t, b.Id, active.Id, "the session never reverts to the superseded document")
	assert.Equal(t, "content b", f.surface.last())
}

func TestEditsDuringInFlightSaveArePreserved(t *testing.T) {
	f := newFixture(t)
	id := f.seedAndOpen(t, "busy", "v1")

	f.store.saveGate = make(chan struct{})
	f.store.saveStarted = make(chan uuid.UUID, 2)

	require.NoError(t, f.coord.EditContent("v2", "v2"))
	go f.clock.Advance(500 * time.Millisecond) // auto-save fires and parks on the gate
	require.Equal(t, id, <-f.store.saveStarted)

	// A keystroke lands while the save is in flight.
	require.NoError(t, f.coord.EditContent("v2 plus", "v2 plus"))
	f.store.saveGate <- struct{}{}

	require.Eventually(t, func() bool {
		doc, ok := f.coord.ActiveDocument()
		return ok && doc.BaselineDerivedText == "v2"
	}, time.Second, time.Millisecond, "baseline advances to the sent payload")

	doc, _ := f.coord.ActiveDocument()
	assert.Equal(t, "v2 plus", doc.Content, "the server echo never clobbers newer local edits")
	assert.NotNil(t, doc.UpdatedAt, "server-authoritative fields are merged")
}

func TestManualSaveShortCircuitsTimer(t *testing.T) {
	f := newFixture(t)
	f.seedAndOpen(t, "manual", "text")

	require.NoError(t, f.coord.EditContent("text!", "text!"))
	require.NoError(t, f.coord.ManualSave(context.Background()))
	assert.Equal(t, 1, f.store.saves())

	// The consumed timer must not fire a duplicate save afterwards.
	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, f.store.saves())
}

func TestTerminalFlushFailureStillSwitches(t *testing.T) {
	_ = newFixture(t)

	notifier := notify.NewNotifier(logger.NewNop())
	defer notifier.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	statuses, err := notifier.Subscribe(ctx)
	require.NoError(t, err)

	store := newTestStore()
	log := logger.NewNop()
	cfg := Config{AutoSaveDelay: 500 * time.Millisecond, SignificantChangeThresholdPercent: 5, FlushOnSwitchEnabled: true}
	saver := save.NewPipeline(store, log, nil, 3, time.Millisecond)
	coord := NewCoordinator(cfg, store, saver, checkpoint.NewManager(store, log, 5), notifier, nil, debounce.NewVirtualClock(), log)

	a := &entity.Document{Id: uuid.New(), Title: "doomed", Content: "x", DerivedText: "x"}
	b := &entity.Document{Id: uuid.New(), Title: "next", Content: "y", DerivedText: "y"}
	store.Put(a)
	store.Put(b)
	require.NoError(t, coord.SelectDocument(context.Background(), a.Id))
	require.NoError(t, coord.EditContent("x edited", "x edited"))

	store.failSaves[a.Id] = 409 // conflict: terminal, no retry

	require.NoError(t, coord.SelectDocument(context.Background(), b.Id), "navigation is not blocked by an unsaveable document")
	active, ok := coord.ActiveDocument()
	require.True(t, ok)
	assert.Equal(t, b.Id, active.Id)

	select {
	case status := <-statuses:
		assert.Equal(t, notify.LevelWarning, status.Level)
		assert.True(t, status.Sticky, "unsaved-changes warning must not auto-dismiss")
	case <-time.After(time.Second):
		t.Fatal("expected a sticky warning about unsaved changes")
	}
}

func TestWrongDocumentReplyIsRejected(t *testing.T) {
	f := newFixture(t)
	a := f.seedAndOpen(t, "trusted", "alpha")

	// The store replies with a record whose id does not match the request.
	requested := uuid.New()
	f.store.mu.Lock()
	f.store.misdeliver = map[uuid.UUID]*entity.Document{
		requested: {Id: uuid.New(), Title: "impostor", Content: "evil", DerivedText: "evil"},
	}
	f.store.mu.Unlock()

	err := f.coord.SelectDocument(context.Background(), requested)
	require.Error(t, err)

	active, ok := f.coord.ActiveDocument()
	require.True(t, ok, "session stays in its prior valid state")
	assert.Equal(t, a, active.Id)
	assert.Equal(t, StateActive, f.coord.CurrentState())
}

func TestCreateDocumentFlushesAndActivates(t *testing.T) {
	f := newFixture(t)
	a := f.seedAndOpen(t, "old", "alpha")
	require.NoError(t, f.coord.EditContent("alpha!!", "alpha!!"))

	newId, err := f.coord.CreateDocument(context.Background(), "fresh note")
	require.NoError(t, err)

	active, ok := f.coord.ActiveDocument()
	require.True(t, ok)
	assert.Equal(t, newId, active.Id)
	assert.Equal(t, "fresh note", active.Title)

	stored, err := f.store.Store.GetDocument(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "alpha!!", stored.Content, "outgoing document was flushed before the create")
}

func TestSignificantDriftCheckpointsAfterSave(t *testing.T) {
	f := newFixture(t)
	id := f.seedAndOpen(t, "history", "0123456789")

	require.NoError(t, f.coord.EditContent("0123456789 plus a lot more text", "0123456789 plus a lot more text"))
	require.NoError(t, f.coord.ManualSave(context.Background()))

	require.Eventually(t, func() bool {
		return len(f.store.Checkpoints(id)) == 1
	}, time.Second, time.Millisecond, "a save with significant drift earns a checkpoint")

	got := f.store.Checkpoints(id)[0]
	assert.Equal(t, entity.TriggerSignificantChange, got.Trigger)
}
