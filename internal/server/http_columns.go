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

// createColumnInput holds parameters for creating a column.
type createColumnInput struct {
	Name         string             `json:"name"`
	DisplayOrder int                `json:"display_order"`
	Conditions   []model.Condition  `json:"conditions,omitempty"`
	Sort         *model.SortSpec    `json:"sort,omitempty"`
	Grouping     *model.GroupSpec   `json:"grouping,omitempty"`
	Summary      *model.SummarySpec `json:"summary,omitempty"`
}

// validateColumn checks a column's specs. Directions default to ascending
// when omitted; unknown operators and functions are rejected outright
// rather than degraded, since they indicate a malformed request.
func validateColumn(c *model.Column) error {
	if c.Name == "" {
		return inputError("name is required")
	}
	for _, cond := range c.Conditions {
		if cond.Query != "" && !cond.Query.IsValid() {
			return inputError(fmt.Sprintf("unknown query operator %q", cond.Query))
		}
	}
	if c.Sort != nil {
		if c.Sort.Direction == "" {
			c.Sort.Direction = model.Ascending
		}
		if !c.Sort.Direction.IsValid() {
			return inputError(fmt.Sprintf("unknown sort direction %q", c.Sort.Direction))
		}
	}
	if c.Grouping != nil {
		if c.Grouping.Direction == "" {
			c.Grouping.Direction = model.Ascending
		}
		if !c.Grouping.Direction.IsValid() {
			return inputError(fmt.Sprintf("unknown grouping direction %q", c.Grouping.Direction))
		}
	}
	if c.Summary != nil {
		switch c.Summary.Function {
		case model.SummarySum, model.SummaryAverage:
			if c.Summary.Field == "" {
				return inputError(fmt.Sprintf("summary function %q requires a field", c.Summary.Function))
			}
		case model.SummaryCount:
		default:
			return inputError(fmt.Sprintf("unknown summary function %q", c.Summary.Function))
		}
	}
	return nil
}

// createColumn validates input, persists a new column, and publishes a
// ColumnCreated event.
func (s *CardwallServer) createColumn(ctx context.Context, boardID string, in createColumnInput) (*model.Column, error) {
	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, sql.ErrNoRows
	}

	id, err := idgen.Column()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	column := &model.Column{
		ID:           id,
		BoardID:      boardID,
		Name:         in.Name,
		DisplayOrder: in.DisplayOrder,
		Conditions:   in.Conditions,
		Sort:         in.Sort,
		Grouping:     in.Grouping,
		Summary:      in.Summary,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := validateColumn(column); err != nil {
		return nil, err
	}

	if err := s.store.CreateColumn(ctx, column); err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}

	s.publish(ctx, events.TopicColumnCreated, events.ColumnCreated{Column: column})

	return column, nil
}

// handleCreateColumn handles POST /v1/boards/{id}/columns.
func (s *CardwallServer) handleCreateColumn(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("id")
	if boardID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in createColumnInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	column, err := s.createColumn(r.Context(), boardID, in)
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

	writeJSON(w, http.StatusCreated, column)
}

// handleListColumns handles GET /v1/boards/{id}/columns.
// Columns come back in display order.
func (s *CardwallServer) handleListColumns(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("id")
	if boardID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	columns, err := s.store.ListColumns(r.Context(), boardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list columns")
		return
	}
	if columns == nil {
		columns = []*model.Column{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"columns": columns})
}

// handleGetColumn handles GET /v1/columns/{id}.
func (s *CardwallServer) handleGetColumn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	column, err := s.store.GetColumn(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "column not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get column")
		return
	}
	if column == nil {
		writeError(w, http.StatusNotFound, "column not found")
		return
	}

	writeJSON(w, http.StatusOK, column)
}

// updateColumnInput holds the optional fields of a column update. For
// conditions and specs, presence of the key with a null value clears the
// spec; an absent key leaves it alone.
type updateColumnInput struct {
	Name         string             `json:"name"`
	DisplayOrder *int               `json:"display_order"`
	Conditions   []model.Condition  `json:"conditions"`
	Sort         *model.SortSpec    `json:"sort"`
	Grouping     *model.GroupSpec   `json:"grouping"`
	Summary      *model.SummarySpec `json:"summary"`

	conditionsSet bool
	sortSet       bool
	groupingSet   bool
	summarySet    bool
}

// handleUpdateColumn handles PATCH /v1/columns/{id}.
func (s *CardwallServer) handleUpdateColumn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var in updateColumnInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err == nil {
		_, in.conditionsSet = raw["conditions"]
		_, in.sortSet = raw["sort"]
		_, in.groupingSet = raw["grouping"]
		_, in.summarySet = raw["summary"]
	}

	column, err := s.store.GetColumn(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && column == nil) {
		writeError(w, http.StatusNotFound, "column not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get column")
		return
	}

	if in.Name != "" {
		column.Name = in.Name
	}
	if in.DisplayOrder != nil {
		column.DisplayOrder = *in.DisplayOrder
	}
	if in.conditionsSet {
		column.Conditions = in.Conditions
	}
	if in.sortSet {
		column.Sort = in.Sort
	}
	if in.groupingSet {
		column.Grouping = in.Grouping
	}
	if in.summarySet {
		column.Summary = in.Summary
	}
	column.UpdatedAt = time.Now().UTC()

	if err := validateColumn(column); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateColumn(r.Context(), column); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update column")
		return
	}

	s.publish(r.Context(), events.TopicColumnUpdated, events.ColumnUpdated{Column: column})

	writeJSON(w, http.StatusOK, column)
}

// handleDeleteColumn handles DELETE /v1/columns/{id}.
func (s *CardwallServer) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	column, err := s.store.GetColumn(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && column == nil) {
		writeError(w, http.StatusNotFound, "column not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get column")
		return
	}

	if err := s.store.DeleteColumn(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "column not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete column")
		return
	}

	s.publish(r.Context(), events.TopicColumnDeleted, events.ColumnDeleted{
		ColumnID: id,
		BoardID:  column.BoardID,
	})

	w.WriteHeader(http.StatusNoContent)
}
