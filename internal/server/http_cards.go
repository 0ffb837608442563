package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/action"
	"github.com/alfredjeanlab/cardwall/internal/events"
	"github.com/alfredjeanlab/cardwall/internal/idgen"
	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/alfredjeanlab/cardwall/internal/presence"
)

// validateFieldPatch rejects writes to read-only fields and to elements
// that do not store a value. Keys absent from the schema pass through;
// stored values are schema-free and stale keys are tolerated.
func validateFieldPatch(patch model.FieldValues, schema model.Schema) error {
	for key := range patch {
		element := schema.FieldByID(key)
		if element == nil {
			continue
		}
		if element.ElementType != model.ElementField {
			return inputError(fmt.Sprintf("element %s is not a field", key))
		}
		if element.ReadOnly {
			return inputError(fmt.Sprintf("field %s is read-only", key))
		}
	}
	return nil
}

// handleCreateCard handles POST /v1/boards/{id}/cards.
func (s *CardwallServer) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("id")
	if boardID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in struct {
		FieldValues model.FieldValues `json:"field_values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()
	board, err := s.store.GetBoard(ctx, boardID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && board == nil) {
		writeError(w, http.StatusNotFound, "board not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get board")
		return
	}

	schema, err := s.store.ListElements(ctx, boardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list elements")
		return
	}
	if err := validateFieldPatch(in.FieldValues, schema); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := idgen.Card()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate ID")
		return
	}

	if in.FieldValues == nil {
		in.FieldValues = model.FieldValues{}
	}
	now := time.Now().UTC()
	card := &model.Card{
		ID:          id,
		BoardID:     boardID,
		FieldValues: in.FieldValues,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateCard(ctx, card); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create card")
		return
	}

	s.recordEdit(r, card)
	s.publish(ctx, events.TopicCardCreated, events.CardCreated{Card: card})

	writeJSON(w, http.StatusCreated, card)
}

// handleListCards handles GET /v1/cards.
func (s *CardwallServer) handleListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.CardFilter{BoardID: q.Get("board_id")}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	cards, total, err := s.store.ListCards(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}

	// Ensure cards is never null in JSON output.
	if cards == nil {
		cards = []*model.Card{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cards": cards,
		"total": total,
	})
}

// handleGetCard handles GET /v1/cards/{id}.
func (s *CardwallServer) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	card, err := s.store.GetCard(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get card")
		return
	}
	if card == nil {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// handlePatchCardFields handles PATCH /v1/cards/{id}/fields.
// The body is a field-value patch; entries with null values clear the
// field. Applying the same patch twice leaves the card unchanged, so
// save retries are safe.
func (s *CardwallServer) handlePatchCardFields(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var patch model.FieldValues
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "patch is required")
		return
	}

	ctx := r.Context()
	card, err := s.store.GetCard(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && card == nil) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get card")
		return
	}

	schema, err := s.store.ListElements(ctx, card.BoardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list elements")
		return
	}
	if err := validateFieldPatch(patch, schema); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpdateCardFields(ctx, id, patch)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update card fields")
		return
	}

	s.recordEdit(r, updated)
	s.publish(ctx, events.TopicCardFieldsPatched, events.CardFieldsPatched{
		Card:  updated,
		Patch: patch,
	})

	writeJSON(w, http.StatusOK, updated)
}

// pressResult is the outcome of a button press: the card after the patch
// applied, the merged patch, and the joined per-action failures. A failing
// action contributes no patch entry but never cancels the rest of the
// list, so ActionErrors can be non-empty on a successful press.
type pressResult struct {
	Card         *model.Card
	Patch        model.FieldValues
	ActionErrors string
}

// pressButton resolves a button's actions against the card's current
// values and applies the merged patch.
func (s *CardwallServer) pressButton(r *http.Request, cardID, elementID, item string) (*pressResult, error) {
	ctx := r.Context()
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, sql.ErrNoRows
	}

	schema, err := s.store.ListElements(ctx, card.BoardID)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}

	element := schema.FieldByID(elementID)
	if element == nil {
		return nil, inputError(fmt.Sprintf("element %s not found on board %s", elementID, card.BoardID))
	}

	var actions []model.Action
	switch element.ElementType {
	case model.ElementButton:
		actions = element.Options.Actions
	case model.ElementButtonMenu:
		if item == "" {
			return nil, inputError("item is required for button_menu elements")
		}
		for _, mi := range element.Options.Items {
			if mi.Name == item {
				actions = mi.Actions
				break
			}
		}
		if actions == nil {
			return nil, inputError(fmt.Sprintf("unknown menu item %q", item))
		}
	default:
		return nil, inputError(fmt.Sprintf("element %s is not a button", elementID))
	}

	// Action failures are not fatal: the actions that did resolve still
	// apply, and the failures travel back to the caller in the result.
	patch, resolveErr := action.ResolveAll(actions, card.FieldValues, schema, time.Now().UTC())
	res := &pressResult{Card: card, Patch: patch}
	if resolveErr != nil {
		res.ActionErrors = resolveErr.Error()
		slog.Warn("button press: some actions failed",
			"card_id", cardID,
			"element_id", elementID,
			"err", resolveErr,
		)
	}
	if len(patch) == 0 {
		return res, nil
	}

	updated, err := s.store.UpdateCardFields(ctx, cardID, patch)
	if err != nil {
		return nil, fmt.Errorf("update card fields: %w", err)
	}
	res.Card = updated

	s.recordEdit(r, updated)
	s.publish(ctx, events.TopicButtonPressed, events.ButtonPressed{
		Card:      updated,
		ElementID: elementID,
		Item:      item,
		Patch:     patch,
	})

	return res, nil
}

// handlePressButton handles POST /v1/cards/{id}/buttons/{element_id}.
// Accepts an optional JSON body with "item" naming a button_menu entry.
func (s *CardwallServer) handlePressButton(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("id")
	elementID := r.PathValue("element_id")
	if cardID == "" || elementID == "" {
		writeError(w, http.StatusBadRequest, "id and element_id are required")
		return
	}

	var in struct {
		Item string `json:"item"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	res, err := s.pressButton(r, cardID, elementID, in.Item)
	if err != nil {
		var ie inputError
		switch {
		case errors.As(err, &ie):
			writeError(w, http.StatusBadRequest, ie.Error())
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "card not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	patch := res.Patch
	if patch == nil {
		patch = model.FieldValues{}
	}
	body := map[string]any{
		"card":  res.Card,
		"patch": patch,
	}
	if res.ActionErrors != "" {
		body["errors"] = res.ActionErrors
	}
	writeJSON(w, http.StatusOK, body)
}

// handleDeleteCard handles DELETE /v1/cards/{id}.
func (s *CardwallServer) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	card, err := s.store.GetCard(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && card == nil) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get card")
		return
	}

	if err := s.store.DeleteCard(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete card")
		return
	}

	s.publish(r.Context(), events.TopicCardDeleted, events.CardDeleted{
		CardID:  id,
		BoardID: card.BoardID,
	})

	w.WriteHeader(http.StatusNoContent)
}

// recordEdit updates the presence roster from a write request.
func (s *CardwallServer) recordEdit(r *http.Request, card *model.Card) {
	if s.Presence == nil || card == nil {
		return
	}
	s.Presence.RecordEdit(presence.Edit{
		Actor:   r.Header.Get(actorHeader),
		BoardID: card.BoardID,
		CardID:  card.ID,
	})
}
