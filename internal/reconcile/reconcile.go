// Package reconcile coalesces rapid in-progress field edits into debounced
// save requests against a persistence sink.
//
// Each card being edited has its own small state machine: Idle, Dirty
// (draft values accumulated, debounce pending), and Saving (one request in
// flight). Edits while Dirty only update the draft and restart the
// debounce window, so a burst of keystrokes produces exactly one save.
// Edits arriving mid-save are held in the draft and trigger a follow-up
// save after the in-flight one completes. At most one save request per
// card is ever outstanding.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// DefaultDebounce is the coalescing delay used when Config.Debounce is zero.
const DefaultDebounce = 750 * time.Millisecond

// State is the per-card edit state.
type State int

const (
	StateIdle State = iota
	StateDirty
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// SaveFunc persists a field-value patch for one card. It is called off the
// caller's goroutine; patches are full drafts, so replaying one is safe.
type SaveFunc func(ctx context.Context, cardID string, patch model.FieldValues) error

// Config configures a Reconciler.
type Config struct {
	// Debounce is the quiet period after the last edit before a save fires.
	Debounce time.Duration

	// Save is the persistence sink. Required.
	Save SaveFunc

	// OnSaved is called after a successful save with the patch that was
	// persisted. Optional.
	OnSaved func(cardID string, patch model.FieldValues)

	// OnError is called when a save fails. The draft stays dirty; retry
	// happens on the next edit, not automatically. Optional.
	OnError func(cardID string, patch model.FieldValues, err error)

	// Clock defaults to SystemClock.
	Clock Clock
}

// Reconciler tracks drafts and schedules saves for any number of cards.
type Reconciler struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	cards  map[string]*cardState
	closed bool
}

type cardState struct {
	draft    model.FieldValues
	saving   bool
	timer    Timer
	deadline time.Time // earliest instant the debounced save may fire
	gen      uint64    // bumped on every edit; detects edits that land mid-save
	epoch    uint64    // bumped on Discard; suppresses stale completion callbacks
}

// New creates a Reconciler. Call Close when the owning view goes away.
func New(cfg Config) *Reconciler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		cards:  make(map[string]*cardState),
	}
}

// Edit records a field edit for a card. The draft updates immediately;
// the save fires once edits stop arriving for the debounce window.
func (r *Reconciler) Edit(cardID, fieldID string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	st, ok := r.cards[cardID]
	if !ok {
		st = &cardState{draft: model.FieldValues{}}
		r.cards[cardID] = st
	}
	st.draft[fieldID] = value
	st.gen++

	// Mid-save edits wait for the in-flight request; completion reschedules.
	if st.saving {
		return
	}
	r.armLocked(cardID, st)
}

// Flush fires the pending save for a card immediately, skipping the rest
// of the debounce window. No-op when the card has no dirty draft.
func (r *Reconciler) Flush(cardID string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	st, ok := r.cards[cardID]
	if !ok || st.saving || len(st.draft) == 0 {
		r.mu.Unlock()
		return
	}
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.deadline = time.Time{}
	epoch := st.epoch
	r.mu.Unlock()
	r.fire(cardID, epoch)
}

// State reports the card's current edit state.
func (r *Reconciler) State(cardID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.cards[cardID]
	switch {
	case !ok:
		return StateIdle
	case st.saving:
		return StateSaving
	case len(st.draft) > 0:
		return StateDirty
	default:
		return StateIdle
	}
}

// Draft returns a copy of the card's unsaved field values.
func (r *Reconciler) Draft(cardID string) model.FieldValues {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.cards[cardID]
	if !ok || len(st.draft) == 0 {
		return nil
	}
	return st.draft.Clone()
}

// Discard drops a card's draft and cancels its pending timer. A save
// already in flight is not interrupted, but its completion callbacks are
// suppressed; the persisted data is unaffected.
func (r *Reconciler) Discard(cardID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.cards[cardID]
	if !ok {
		return
	}
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.epoch++
	delete(r.cards, cardID)
}

// Close cancels all pending timers and the context handed to in-flight
// saves. Further edits are ignored.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for _, st := range r.cards {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
	}
	r.cards = make(map[string]*cardState)
	r.mu.Unlock()
	r.cancel()
}

// armLocked restarts the debounce timer. Caller holds r.mu.
func (r *Reconciler) armLocked(cardID string, st *cardState) {
	if st.timer != nil {
		st.timer.Stop()
	}
	st.deadline = r.cfg.Clock.Now().Add(r.cfg.Debounce)
	epoch := st.epoch
	st.timer = r.cfg.Clock.AfterFunc(r.cfg.Debounce, func() {
		r.fire(cardID, epoch)
	})
}

// fire snapshots the draft and runs the save outside the lock.
func (r *Reconciler) fire(cardID string, epoch uint64) {
	r.mu.Lock()
	st, ok := r.cards[cardID]
	if !ok || st.epoch != epoch || r.closed || st.saving || len(st.draft) == 0 {
		r.mu.Unlock()
		return
	}
	// A timer that lost the Stop race can land before a restarted window
	// has elapsed. Reschedule for the remaining quiet time instead.
	if remaining := st.deadline.Sub(r.cfg.Clock.Now()); remaining > 0 {
		if st.timer != nil {
			st.timer.Stop()
		}
		st.timer = r.cfg.Clock.AfterFunc(remaining, func() {
			r.fire(cardID, epoch)
		})
		r.mu.Unlock()
		return
	}
	st.saving = true
	st.timer = nil
	gen := st.gen
	patch := st.draft.Clone()
	r.mu.Unlock()

	err := r.cfg.Save(r.ctx, cardID, patch)

	r.mu.Lock()
	st, ok = r.cards[cardID]
	if !ok || st.epoch != epoch {
		// Card was discarded mid-save. The write stands; no callbacks.
		r.mu.Unlock()
		return
	}
	st.saving = false

	if err != nil {
		slog.Warn("save failed, draft kept", "card", cardID, "error", err)
		r.mu.Unlock()
		if r.cfg.OnError != nil {
			r.cfg.OnError(cardID, patch, err)
		}
		return
	}

	if st.gen == gen {
		// Nothing landed during the save; the draft is fully persisted.
		st.draft = model.FieldValues{}
	} else {
		// Newer edits arrived mid-save; debounce them for a follow-up.
		r.armLocked(cardID, st)
	}
	r.mu.Unlock()
	if r.cfg.OnSaved != nil {
		r.cfg.OnSaved(cardID, patch)
	}
}
