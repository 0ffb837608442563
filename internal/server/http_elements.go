package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/events"
	"github.com/alfredjeanlab/cardwall/internal/idgen"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// createElementInput holds parameters for creating a board element.
type createElementInput struct {
	Name          string               `json:"name"`
	ElementType   model.ElementType    `json:"element_type"`
	DataType      model.DataType       `json:"data_type,omitempty"`
	DisplayOrder  int                  `json:"display_order"`
	ReadOnly      bool                 `json:"read_only,omitempty"`
	ShowInSummary bool                 `json:"show_in_summary,omitempty"`
	Options       model.ElementOptions `json:"options"`
	ShowCondition *model.Condition     `json:"show_condition,omitempty"`
}

// validateElement checks the cross-field constraints of an element.
func validateElement(e *model.Element) error {
	if e.Name == "" {
		return inputError("name is required")
	}
	if !e.ElementType.IsValid() {
		return inputError(fmt.Sprintf("unknown element type %q", e.ElementType))
	}
	switch e.ElementType {
	case model.ElementField:
		if !e.DataType.IsValid() {
			return inputError(fmt.Sprintf("unknown data type %q", e.DataType))
		}
	case model.ElementButton:
		if len(e.Options.Actions) == 0 {
			return inputError("button elements require at least one action")
		}
	case model.ElementButtonMenu:
		if len(e.Options.Items) == 0 {
			return inputError("button_menu elements require at least one item")
		}
	}
	if e.ShowCondition != nil && e.ShowCondition.Query != "" && !e.ShowCondition.Query.IsValid() {
		return inputError(fmt.Sprintf("unknown query operator %q", e.ShowCondition.Query))
	}
	return nil
}

// createElement validates input, persists a new element, and publishes an
// ElementCreated event. Returns inputError for validation failures.
func (s *CardwallServer) createElement(ctx context.Context, boardID string, in createElementInput) (*model.Element, error) {
	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, sql.ErrNoRows
	}

	id, err := idgen.Element()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	element := &model.Element{
		ID:            id,
		BoardID:       boardID,
		Name:          in.Name,
		ElementType:   in.ElementType,
		DataType:      in.DataType,
		DisplayOrder:  in.DisplayOrder,
		ReadOnly:      in.ReadOnly,
		ShowInSummary: in.ShowInSummary,
		Options:       in.Options,
		ShowCondition: in.ShowCondition,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if element.ElementType == "" {
		element.ElementType = model.ElementField
	}

	if err := validateElement(element); err != nil {
		return nil, err
	}

	if err := s.store.CreateElement(ctx, element); err != nil {
		return nil, fmt.Errorf("failed to create element: %w", err)
	}

	s.publish(ctx, events.TopicElementCreated, events.ElementCreated{Element: element})

	return element, nil
}

// handleCreateElement handles POST /v1/boards/{id}/elements.
func (s *CardwallServer) handleCreateElement(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("id")
	if boardID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in createElementInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	element, err := s.createElement(r.Context(), boardID, in)
	if err != nil {
		var ie inputError
		switch {
		case errors.As(err, &ie):
			writeError(w, http.StatusBadRequest, ie.Error())
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "board not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, element)
}

// handleListElements handles GET /v1/boards/{id}/elements.
// Elements come back in display order.
func (s *CardwallServer) handleListElements(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("id")
	if boardID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	schema, err := s.store.ListElements(r.Context(), boardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list elements")
		return
	}
	if schema == nil {
		schema = model.Schema{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"elements": schema})
}

// handleGetElement handles GET /v1/elements/{id}.
func (s *CardwallServer) handleGetElement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	element, err := s.store.GetElement(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "element not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get element")
		return
	}
	if element == nil {
		writeError(w, http.StatusNotFound, "element not found")
		return
	}

	writeJSON(w, http.StatusOK, element)
}

// updateElementInput holds the optional fields of an element update. The
// element type and data type are fixed at creation; changing them would
// orphan stored card values.
type updateElementInput struct {
	Name          string                `json:"name"`
	DisplayOrder  *int                  `json:"display_order"`
	ReadOnly      *bool                 `json:"read_only"`
	ShowInSummary *bool                 `json:"show_in_summary"`
	Options       *model.ElementOptions `json:"options"`
	ShowCondition *model.Condition      `json:"show_condition"`
	clearShowCond bool
}

// handleUpdateElement handles PATCH /v1/elements/{id}.
func (s *CardwallServer) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateElementInput
	// A raw decode distinguishes "show_condition": null (clear it) from the
	// key being absent (leave it alone).
	var raw map[string]json.RawMessage
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := json.Unmarshal(body, &raw); err == nil {
		if v, ok := raw["show_condition"]; ok && string(v) == "null" {
			in.clearShowCond = true
		}
	}

	element, err := s.store.GetElement(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && element == nil) {
		writeError(w, http.StatusNotFound, "element not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get element")
		return
	}

	if in.Name != "" {
		element.Name = in.Name
	}
	if in.DisplayOrder != nil {
		element.DisplayOrder = *in.DisplayOrder
	}
	if in.ReadOnly != nil {
		element.ReadOnly = *in.ReadOnly
	}
	if in.ShowInSummary != nil {
		element.ShowInSummary = *in.ShowInSummary
	}
	if in.Options != nil {
		element.Options = *in.Options
	}
	if in.ShowCondition != nil {
		element.ShowCondition = in.ShowCondition
	} else if in.clearShowCond {
		element.ShowCondition = nil
	}
	element.UpdatedAt = time.Now().UTC()

	if err := validateElement(element); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateElement(r.Context(), element); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update element")
		return
	}

	s.publish(r.Context(), events.TopicElementUpdated, events.ElementUpdated{Element: element})

	writeJSON(w, http.StatusOK, element)
}

// handleDeleteElement handles DELETE /v1/elements/{id}.
// Card values stored under the element's ID become unreachable but are not
// rewritten; stale keys are harmless to the evaluator.
func (s *CardwallServer) handleDeleteElement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	element, err := s.store.GetElement(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && element == nil) {
		writeError(w, http.StatusNotFound, "element not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get element")
		return
	}

	if err := s.store.DeleteElement(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "element not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete element")
		return
	}

	s.publish(r.Context(), events.TopicElementDeleted, events.ElementDeleted{
		ElementID: id,
		BoardID:   element.BoardID,
	})

	w.WriteHeader(http.StatusNoContent)
}
