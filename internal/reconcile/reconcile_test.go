package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// fakeClock drives AfterFunc timers manually so debounce behavior is
// deterministic under test.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2023, 6, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and fires due timers in schedule order.
// Callbacks run outside the clock lock so they may schedule new timers.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	for {
		fn := c.popDue()
		if fn == nil {
			return
		}
		fn()
	}
}

func (c *fakeClock) popDue() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var next *fakeTimer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.at.After(c.now) {
			continue
		}
		if next == nil || t.at.Before(next.at) {
			next = t
		}
	}
	if next == nil {
		return nil
	}
	next.fired = true
	return next.fn
}

// saveRecorder is a SaveFunc that records every persisted patch.
type saveRecorder struct {
	mu    sync.Mutex
	calls []savedPatch
	err   error
	hook  func() // runs inside Save, before returning
}

type savedPatch struct {
	cardID string
	patch  model.FieldValues
}

func (s *saveRecorder) save(_ context.Context, cardID string, patch model.FieldValues) error {
	s.mu.Lock()
	s.calls = append(s.calls, savedPatch{cardID: cardID, patch: patch})
	hook := s.hook
	s.hook = nil
	err := s.err
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (s *saveRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *saveRecorder) last() savedPatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

const debounce = 500 * time.Millisecond

func newTestReconciler(clock *fakeClock, rec *saveRecorder, cfg Config) *Reconciler {
	cfg.Debounce = debounce
	cfg.Clock = clock
	cfg.Save = rec.save
	return New(cfg)
}

func TestEditBurstCoalescesToOneSave(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	r := newTestReconciler(clock, rec, Config{})
	defer r.Close()

	for _, v := range []string{"W", "Wi", "Win", "Wing", "Wing Commander"} {
		r.Edit("crd-1", "elm-title", v)
		clock.Advance(50 * time.Millisecond)
	}
	if got := rec.count(); got != 0 {
		t.Fatalf("saved %d times during burst, want 0", got)
	}

	clock.Advance(debounce)
	if got := rec.count(); got != 1 {
		t.Fatalf("saved %d times after quiet window, want exactly 1", got)
	}
	saved := rec.last()
	if saved.cardID != "crd-1" || saved.patch["elm-title"] != "Wing Commander" {
		t.Errorf("saved = %+v, want final draft value", saved)
	}
	if r.State("crd-1") != StateIdle {
		t.Errorf("state = %v after save, want idle", r.State("crd-1"))
	}
}

func TestDebounceRestartsOnEveryEdit(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	r := newTestReconciler(clock, rec, Config{})
	defer r.Close()

	r.Edit("crd-1", "elm-title", "a")
	clock.Advance(debounce - 10*time.Millisecond)
	r.Edit("crd-1", "elm-title", "ab")
	clock.Advance(debounce - 10*time.Millisecond)
	if rec.count() != 0 {
		t.Fatal("save fired before the window elapsed quietly")
	}
	clock.Advance(10 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("saved %d times, want 1", rec.count())
	}
}

func TestEditsMergeAcrossFields(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	r := newTestReconciler(clock, rec, Config{})
	defer r.Close()

	r.Edit("crd-1", "elm-title", "Doom")
	r.Edit("crd-1", "elm-hours", 9.5)
	r.Edit("crd-1", "elm-title", "Doom II")
	clock.Advance(debounce)

	saved := rec.last()
	if saved.patch["elm-title"] != "Doom II" || saved.patch["elm-hours"] != 9.5 {
		t.Errorf("patch = %v, want both fields with latest values", saved.patch)
	}
}

func TestEditDuringSaveTriggersFollowUp(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	r := newTestReconciler(clock, rec, Config{})
	defer r.Close()

	r.Edit("crd-1", "elm-title", "first")
	rec.hook = func() {
		// Arrives while the save is in flight.
		r.Edit("crd-1", "elm-title", "second")
		if r.State("crd-1") != StateSaving {
			t.Error("state during save should be saving")
		}
	}
	clock.Advance(debounce)

	if rec.count() != 1 {
		t.Fatalf("saved %d times, want 1 so far", rec.count())
	}
	if r.State("crd-1") != StateDirty {
		t.Errorf("state = %v after mid-save edit, want dirty", r.State("crd-1"))
	}

	clock.Advance(debounce)
	if rec.count() != 2 {
		t.Fatalf("saved %d times, want follow-up save", rec.count())
	}
	if rec.last().patch["elm-title"] != "second" {
		t.Errorf("follow-up patch = %v, want newer draft", rec.last().patch)
	}
	if r.State("crd-1") != StateIdle {
		t.Errorf("state = %v after follow-up, want idle", r.State("crd-1"))
	}
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{err: errors.New("connection refused")}
	var reported []savedPatch
	r := newTestReconciler(clock, rec, Config{
		OnError: func(cardID string, patch model.FieldValues, err error) {
			reported = append(reported, savedPatch{cardID: cardID, patch: patch})
		},
	})
	defer r.Close()

	r.Edit("crd-1", "elm-title", "keep me")
	clock.Advance(debounce)

	if len(reported) != 1 {
		t.Fatalf("OnError called %d times, want 1", len(reported))
	}
	if r.State("crd-1") != StateDirty {
		t.Errorf("state = %v after failure, want dirty", r.State("crd-1"))
	}
	if r.Draft("crd-1")["elm-title"] != "keep me" {
		t.Errorf("draft = %v, want value preserved", r.Draft("crd-1"))
	}

	// No automatic retry.
	clock.Advance(10 * debounce)
	if rec.count() != 1 {
		t.Fatalf("saved %d times, want no retry without a new edit", rec.count())
	}

	// The next edit re-arms the debounce and retries with the full draft.
	rec.err = nil
	r.Edit("crd-1", "elm-hours", 3)
	clock.Advance(debounce)
	if rec.count() != 2 {
		t.Fatalf("saved %d times, want retry after edit", rec.count())
	}
	p := rec.last().patch
	if p["elm-title"] != "keep me" || p["elm-hours"] != 3 {
		t.Errorf("retry patch = %v, want full draft", p)
	}
}

func TestDiscardCancelsPendingSave(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	r := newTestReconciler(clock, rec, Config{})
	defer r.Close()

	r.Edit("crd-1", "elm-title", "never saved")
	r.Discard("crd-1")
	clock.Advance(debounce)

	if rec.count() != 0 {
		t.Fatalf("saved %d times after discard, want 0", rec.count())
	}
	if r.State("crd-1") != StateIdle {
		t.Errorf("state = %v, want idle", r.State("crd-1"))
	}
}

func TestDiscardDuringSaveSuppressesCallbacks(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	var savedCalls int
	r := newTestReconciler(clock, rec, Config{
		OnSaved: func(string, model.FieldValues) { savedCalls++ },
	})
	defer r.Close()

	r.Edit("crd-1", "elm-title", "navigate away")
	rec.hook = func() { r.Discard("crd-1") }
	clock.Advance(debounce)

	if rec.count() != 1 {
		t.Fatalf("saved %d times, want the in-flight save to complete", rec.count())
	}
	if savedCalls != 0 {
		t.Errorf("OnSaved ran %d times after discard, want 0", savedCalls)
	}
}

func TestFlushSavesImmediately(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	r := newTestReconciler(clock, rec, Config{})
	defer r.Close()

	r.Edit("crd-1", "elm-title", "flushed")
	r.Flush("crd-1")

	if rec.count() != 1 {
		t.Fatalf("saved %d times, want immediate save", rec.count())
	}
	clock.Advance(debounce)
	if rec.count() != 1 {
		t.Fatalf("stale timer fired a second save, have %d", rec.count())
	}
}

func TestCardsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	r := newTestReconciler(clock, rec, Config{})
	defer r.Close()

	r.Edit("crd-1", "elm-title", "one")
	clock.Advance(debounce / 2)
	r.Edit("crd-2", "elm-title", "two")
	clock.Advance(debounce / 2)

	// crd-1 has been quiet a full window, crd-2 only half of one.
	if rec.count() != 1 || rec.last().cardID != "crd-1" {
		t.Fatalf("calls = %+v, want only crd-1 saved", rec.calls)
	}
	clock.Advance(debounce / 2)
	if rec.count() != 2 || rec.last().cardID != "crd-2" {
		t.Fatalf("calls = %+v, want crd-2 saved after its own window", rec.calls)
	}
}

func TestCloseIgnoresFurtherEdits(t *testing.T) {
	clock := newFakeClock()
	rec := &saveRecorder{}
	r := newTestReconciler(clock, rec, Config{})

	r.Edit("crd-1", "elm-title", "pending")
	r.Close()
	r.Edit("crd-1", "elm-title", "ignored")
	clock.Advance(debounce)

	if rec.count() != 0 {
		t.Fatalf("saved %d times after Close, want 0", rec.count())
	}
}
