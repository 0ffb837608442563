package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/eval"
	"github.com/alfredjeanlab/cardwall/internal/events"
	"github.com/alfredjeanlab/cardwall/internal/idgen"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// handleCreateBoard handles POST /v1/boards.
func (s *CardwallServer) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	id, err := idgen.Board()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate ID")
		return
	}

	now := time.Now().UTC()
	board := &model.Board{
		ID:        id,
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateBoard(r.Context(), board); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create board")
		return
	}

	s.publish(r.Context(), events.TopicBoardCreated, events.BoardCreated{Board: board})

	writeJSON(w, http.StatusCreated, board)
}

// handleListBoards handles GET /v1/boards.
func (s *CardwallServer) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.store.ListBoards(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list boards")
		return
	}

	// Ensure boards is never null in JSON output.
	if boards == nil {
		boards = []*model.Board{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"boards": boards})
}

// handleGetBoard handles GET /v1/boards/{id}.
func (s *CardwallServer) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	board, err := s.store.GetBoard(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "board not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get board")
		return
	}
	if board == nil {
		writeError(w, http.StatusNotFound, "board not found")
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// handleUpdateBoard handles PATCH /v1/boards/{id}.
func (s *CardwallServer) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	board, err := s.store.GetBoard(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && board == nil) {
		writeError(w, http.StatusNotFound, "board not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get board")
		return
	}

	if in.Name != nil {
		if *in.Name == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		board.Name = *in.Name
	}
	board.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBoard(r.Context(), board); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update board")
		return
	}

	s.publish(r.Context(), events.TopicBoardUpdated, events.BoardUpdated{Board: board})

	writeJSON(w, http.StatusOK, board)
}

// handleDeleteBoard handles DELETE /v1/boards/{id}.
// Elements, cards, and columns of the board are removed with it.
func (s *CardwallServer) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteBoard(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "board not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete board")
		return
	}

	s.publish(r.Context(), events.TopicBoardDeleted, events.BoardDeleted{BoardID: id})

	w.WriteHeader(http.StatusNoContent)
}

// handleEvaluateBoard handles GET /v1/boards/{id}/evaluate.
// Runs every column of the board through the evaluation pipeline against a
// single card snapshot and returns the render-ready results.
func (s *CardwallServer) handleEvaluateBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	ctx := r.Context()
	board, err := s.store.GetBoard(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && board == nil) {
		writeError(w, http.StatusNotFound, "board not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get board")
		return
	}

	schema, err := s.store.ListElements(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list elements")
		return
	}
	columns, err := s.store.ListColumns(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list columns")
		return
	}
	cards, _, err := s.store.ListCards(ctx, model.CardFilter{BoardID: id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}

	results := eval.EvaluateBoard(cards, columns, schema)
	if results == nil {
		results = []eval.ColumnResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"board":   board,
		"columns": results,
	})
}
