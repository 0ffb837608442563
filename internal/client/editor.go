package client

import (
	"context"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/alfredjeanlab/cardwall/internal/reconcile"
)

// EditorConfig configures a CardEditor.
type EditorConfig struct {
	// Debounce is the quiet period after the last keystroke before the
	// draft is saved. Defaults to reconcile.DefaultDebounce.
	Debounce time.Duration

	// OnSaved is called after a draft reaches the server. Optional.
	OnSaved func(cardID string, patch model.FieldValues)

	// OnError is called when a save fails; the draft is kept and retried
	// on the next edit. Optional.
	OnError func(cardID string, patch model.FieldValues, err error)
}

// CardEditor buffers card field edits locally and reconciles them to the
// server in the background. Edits coalesce across the debounce window, so
// a burst of keystrokes becomes a single PATCH.
type CardEditor struct {
	client CardwallClient
	rec    *reconcile.Reconciler
}

// NewCardEditor creates a CardEditor saving through the given client.
func NewCardEditor(c CardwallClient, cfg EditorConfig) *CardEditor {
	ed := &CardEditor{client: c}
	ed.rec = reconcile.New(reconcile.Config{
		Debounce: cfg.Debounce,
		Save: func(ctx context.Context, cardID string, patch model.FieldValues) error {
			_, err := c.PatchCardFields(ctx, cardID, patch)
			return err
		},
		OnSaved: cfg.OnSaved,
		OnError: cfg.OnError,
	})
	return ed
}

// SetField records a field edit. The local draft updates immediately; the
// PATCH fires once edits stop arriving for the debounce window.
func (e *CardEditor) SetField(cardID, fieldID string, value any) {
	e.rec.Edit(cardID, fieldID, value)
}

// ClearField records a field clear. The server drops the field when the
// draft saves.
func (e *CardEditor) ClearField(cardID, fieldID string) {
	e.rec.Edit(cardID, fieldID, nil)
}

// Flush saves a card's pending draft immediately, skipping the remainder
// of the debounce window.
func (e *CardEditor) Flush(cardID string) {
	e.rec.Flush(cardID)
}

// Discard drops a card's pending draft without saving.
func (e *CardEditor) Discard(cardID string) {
	e.rec.Discard(cardID)
}

// Draft returns a copy of the unsaved values for a card, or nil when the
// card is clean.
func (e *CardEditor) Draft(cardID string) model.FieldValues {
	return e.rec.Draft(cardID)
}

// State reports where a card sits in the edit lifecycle.
func (e *CardEditor) State(cardID string) reconcile.State {
	return e.rec.State(cardID)
}

// Close cancels pending timers and abandons unsaved drafts.
func (e *CardEditor) Close() {
	e.rec.Close()
}
