// Package presence tracks who is actively editing which cards.
//
// The Tracker maintains an in-memory map of editors, updated directly by
// the server when field-patch or button-press requests arrive. A
// background reaper goroutine drops editors that have gone idle past a
// configurable threshold, so the roster only shows live activity.
package presence

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Entry represents a single editor's live presence state.
type Entry struct {
	Actor     string    `json:"actor"`
	BoardID   string    `json:"board_id,omitempty"` // board of the last edited card
	CardID    string    `json:"card_id,omitempty"`  // last card touched
	LastSeen  time.Time `json:"last_seen"`
	FirstSeen time.Time `json:"first_seen"`
	IdleSecs  float64   `json:"idle_secs"`  // seconds since last edit
	EditCount int64     `json:"edit_count"` // total edits seen
}

// Edit is the data extracted from a write request that the tracker needs
// to update presence state.
type Edit struct {
	Actor   string // editor name (from the X-Cardwall-Actor header)
	BoardID string
	CardID  string
}

// Reaper defaults: an editor idle past the threshold disappears from the
// roster on the next sweep.
const (
	defaultIdleThreshold = 15 * time.Minute
	defaultSweepInterval = 60 * time.Second
)

// ReaperConfig configures the background idle-editor reaper.
type ReaperConfig struct {
	// IdleThreshold is how long an editor must be idle before being dropped
	// from the roster. Default: 15 minutes.
	IdleThreshold time.Duration

	// SweepInterval is how often the reaper scans for idle editors.
	// Default: 60 seconds.
	SweepInterval time.Duration
}

// withDefaults fills unset values; a nil config gets all defaults.
func (c *ReaperConfig) withDefaults() ReaperConfig {
	out := ReaperConfig{}
	if c != nil {
		out = *c
	}
	if out.IdleThreshold == 0 {
		out.IdleThreshold = defaultIdleThreshold
	}
	if out.SweepInterval == 0 {
		out.SweepInterval = defaultSweepInterval
	}
	return out
}

// Tracker maintains an in-memory roster of active card editors.
type Tracker struct {
	mu      sync.RWMutex
	editors map[string]*editorState
	started time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type editorState struct {
	firstSeen time.Time
	lastSeen  time.Time
	boardID   string
	cardID    string
	editCount int64
}

// New creates a new presence tracker.
func New() *Tracker {
	return &Tracker{
		editors: make(map[string]*editorState),
		started: time.Now(),
	}
}

// RecordEdit updates the presence state for an editor. Called by the
// server on every card field patch and button press.
func (t *Tracker) RecordEdit(e Edit) {
	if e.Actor == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.editors[e.Actor]
	if !ok {
		state = &editorState{firstSeen: now}
		t.editors[e.Actor] = state
	}

	state.lastSeen = now
	state.editCount++

	if e.BoardID != "" {
		state.boardID = e.BoardID
	}
	if e.CardID != "" {
		state.cardID = e.CardID
	}
}

// Roster returns a snapshot of all tracked editors, sorted by most recently
// active. staleThreshold controls how long since the last edit before an
// editor is excluded. Pass 0 to include all editors ever seen.
func (t *Tracker) Roster(staleThreshold time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.editors))

	for actor, state := range t.editors {
		idle := now.Sub(state.lastSeen)
		if staleThreshold > 0 && idle > staleThreshold {
			continue
		}
		firstSeen := state.firstSeen
		if firstSeen.IsZero() {
			firstSeen = t.started
		}
		entries = append(entries, Entry{
			Actor:     actor,
			BoardID:   state.boardID,
			CardID:    state.cardID,
			LastSeen:  state.lastSeen,
			FirstSeen: firstSeen,
			IdleSecs:  idle.Seconds(),
			EditCount: state.editCount,
		})
	}

	// Most recently active first.
	slices.SortFunc(entries, func(a, b Entry) int {
		return b.LastSeen.Compare(a.LastSeen)
	})
	return entries
}

// StartReaper launches a background goroutine that periodically drops idle
// editors. A nil config uses the defaults. Call Stop() to shut it down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	c := cfg.withDefaults()

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})
	go t.reapLoop(c)

	slog.Info("presence: reaper started",
		"idle_threshold", c.IdleThreshold,
		"sweep_interval", c.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop == nil {
		return
	}
	close(t.reaperStop)
	<-t.reaperDone
	t.reaperStop = nil
	t.reaperDone = nil
}

func (t *Tracker) reapLoop(cfg ReaperConfig) {
	defer close(t.reaperDone)
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg.IdleThreshold)
		}
	}
}

func (t *Tracker) sweep(idleThreshold time.Duration) {
	now := time.Now()

	t.mu.Lock()
	var dropped []string
	for actor, state := range t.editors {
		if now.Sub(state.lastSeen) > idleThreshold {
			delete(t.editors, actor)
			dropped = append(dropped, actor)
		}
	}
	t.mu.Unlock()

	for _, actor := range dropped {
		slog.Info("presence: editor idle, dropped", "actor", actor)
	}
}
