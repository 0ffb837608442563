package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/events"
	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/alfredjeanlab/cardwall/internal/store"
)

type mockStore struct {
	boards   map[string]*model.Board
	elements map[string]*model.Element
	cards    map[string]*model.Card
	columns  map[string]*model.Column
}

func newMockStore() *mockStore {
	return &mockStore{
		boards:   make(map[string]*model.Board),
		elements: make(map[string]*model.Element),
		cards:    make(map[string]*model.Card),
		columns:  make(map[string]*model.Column),
	}
}

func (m *mockStore) CreateBoard(_ context.Context, b *model.Board) error {
	m.boards[b.ID] = b
	return nil
}

func (m *mockStore) GetBoard(_ context.Context, id string) (*model.Board, error) {
	b, ok := m.boards[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (m *mockStore) ListBoards(_ context.Context) ([]*model.Board, error) {
	var result []*model.Board
	for _, b := range m.boards {
		clone := *b
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateBoard(_ context.Context, b *model.Board) error {
	if _, ok := m.boards[b.ID]; !ok {
		return sql.ErrNoRows
	}
	m.boards[b.ID] = b
	return nil
}

func (m *mockStore) DeleteBoard(_ context.Context, id string) error {
	if _, ok := m.boards[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.boards, id)
	return nil
}

func (m *mockStore) CreateElement(_ context.Context, e *model.Element) error {
	m.elements[e.ID] = e
	return nil
}

func (m *mockStore) GetElement(_ context.Context, id string) (*model.Element, error) {
	e, ok := m.elements[id]
	if !ok {
		return nil, nil
	}
	clone := *e
	return &clone, nil
}

func (m *mockStore) ListElements(_ context.Context, boardID string) (model.Schema, error) {
	var schema model.Schema
	for _, e := range m.elements {
		if e.BoardID == boardID {
			clone := *e
			schema = append(schema, &clone)
		}
	}
	sort.SliceStable(schema, func(i, j int) bool {
		return schema[i].DisplayOrder < schema[j].DisplayOrder
	})
	return schema, nil
}

func (m *mockStore) UpdateElement(_ context.Context, e *model.Element) error {
	if _, ok := m.elements[e.ID]; !ok {
		return sql.ErrNoRows
	}
	m.elements[e.ID] = e
	return nil
}

func (m *mockStore) DeleteElement(_ context.Context, id string) error {
	if _, ok := m.elements[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.elements, id)
	return nil
}

func (m *mockStore) CreateCard(_ context.Context, c *model.Card) error {
	m.cards[c.ID] = c
	return nil
}

func (m *mockStore) GetCard(_ context.Context, id string) (*model.Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	clone.FieldValues = c.FieldValues.Clone()
	return &clone, nil
}

func (m *mockStore) ListCards(_ context.Context, filter model.CardFilter) ([]*model.Card, int, error) {
	var result []*model.Card
	for _, c := range m.cards {
		if filter.BoardID != "" && c.BoardID != filter.BoardID {
			continue
		}
		clone := *c
		clone.FieldValues = c.FieldValues.Clone()
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	total := len(result)
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			result = nil
		} else {
			result = result[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, total, nil
}

func (m *mockStore) UpdateCard(_ context.Context, c *model.Card) error {
	if _, ok := m.cards[c.ID]; !ok {
		return sql.ErrNoRows
	}
	m.cards[c.ID] = c
	return nil
}

func (m *mockStore) UpdateCardFields(_ context.Context, id string, patch model.FieldValues) (*model.Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	merged := c.FieldValues.Clone()
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	c.FieldValues = merged
	c.UpdatedAt = time.Now().UTC()
	clone := *c
	clone.FieldValues = merged.Clone()
	return &clone, nil
}

func (m *mockStore) DeleteCard(_ context.Context, id string) error {
	if _, ok := m.cards[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.cards, id)
	return nil
}

func (m *mockStore) CreateColumn(_ context.Context, c *model.Column) error {
	m.columns[c.ID] = c
	return nil
}

func (m *mockStore) GetColumn(_ context.Context, id string) (*model.Column, error) {
	c, ok := m.columns[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (m *mockStore) ListColumns(_ context.Context, boardID string) ([]*model.Column, error) {
	var result []*model.Column
	for _, c := range m.columns {
		if c.BoardID == boardID {
			clone := *c
			result = append(result, &clone)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DisplayOrder < result[j].DisplayOrder
	})
	return result, nil
}

func (m *mockStore) UpdateColumn(_ context.Context, c *model.Column) error {
	if _, ok := m.columns[c.ID]; !ok {
		return sql.ErrNoRows
	}
	m.columns[c.ID] = c
	return nil
}

func (m *mockStore) DeleteColumn(_ context.Context, id string) error {
	if _, ok := m.columns[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.columns, id)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

var _ store.Store = (*mockStore)(nil)

// newTestServer returns a server and its mock store with auth disabled.
func newTestServer() (*CardwallServer, *mockStore, http.Handler) {
	ms := newMockStore()
	srv := NewCardwallServer(ms, &events.NoopPublisher{})
	return srv, ms, srv.NewHTTPHandler("")
}

func seedBoard(ms *mockStore, id string) *model.Board {
	now := time.Now().UTC()
	b := &model.Board{ID: id, Name: "Games", CreatedAt: now, UpdatedAt: now}
	ms.boards[id] = b
	return b
}

func jsonBody(t *testing.T, body any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	return &buf
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	_, _, handler := newTestServer()

	w := doRequest(t, handler, http.MethodGet, "/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	got := decodeResponse[map[string]string](t, w)
	if got["status"] != "ok" {
		t.Errorf("status = %q, want ok", got["status"])
	}
}

func TestCreateBoard(t *testing.T) {
	_, ms, handler := newTestServer()

	w := doRequest(t, handler, http.MethodPost, "/v1/boards", map[string]any{"name": "Games"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	board := decodeResponse[model.Board](t, w)
	if board.Name != "Games" {
		t.Errorf("name = %q, want Games", board.Name)
	}
	if board.ID == "" {
		t.Error("expected a generated ID")
	}
	if _, ok := ms.boards[board.ID]; !ok {
		t.Error("board not persisted")
	}
}

func TestCreateBoard_MissingName(t *testing.T) {
	_, _, handler := newTestServer()

	w := doRequest(t, handler, http.MethodPost, "/v1/boards", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetBoard_NotFound(t *testing.T) {
	_, _, handler := newTestServer()

	w := doRequest(t, handler, http.MethodGet, "/v1/boards/brd-missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUpdateBoard(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")

	w := doRequest(t, handler, http.MethodPatch, "/v1/boards/brd-1", map[string]any{"name": "Backlog"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ms.boards["brd-1"].Name != "Backlog" {
		t.Errorf("name = %q, want Backlog", ms.boards["brd-1"].Name)
	}
}

func TestDeleteBoard(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")

	w := doRequest(t, handler, http.MethodDelete, "/v1/boards/brd-1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if _, ok := ms.boards["brd-1"]; ok {
		t.Error("board still present after delete")
	}

	w = doRequest(t, handler, http.MethodDelete, "/v1/boards/brd-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestListBoards_EmptyIsNotNull(t *testing.T) {
	_, _, handler := newTestServer()

	w := doRequest(t, handler, http.MethodGet, "/v1/boards", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got struct {
		Boards []*model.Board `json:"boards"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Boards == nil {
		t.Error("boards should be [] in JSON, not null")
	}
}

func TestCreateElement(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")

	w := doRequest(t, handler, http.MethodPost, "/v1/boards/brd-1/elements", map[string]any{
		"name":         "Purchased",
		"element_type": "field",
		"data_type":    "date",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	element := decodeResponse[model.Element](t, w)
	if element.DataType != model.TypeDate {
		t.Errorf("data_type = %q, want date", element.DataType)
	}
	if element.BoardID != "brd-1" {
		t.Errorf("board_id = %q, want brd-1", element.BoardID)
	}
}

func TestCreateElement_Validation(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")

	for name, body := range map[string]map[string]any{
		"missing name":       {"element_type": "field", "data_type": "text"},
		"bad data type":      {"name": "X", "element_type": "field", "data_type": "geo"},
		"button w/o actions": {"name": "Done", "element_type": "button"},
		"menu w/o items":     {"name": "More", "element_type": "button_menu"},
	} {
		w := doRequest(t, handler, http.MethodPost, "/v1/boards/brd-1/elements", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestCreateElement_BoardNotFound(t *testing.T) {
	_, _, handler := newTestServer()

	w := doRequest(t, handler, http.MethodPost, "/v1/boards/brd-missing/elements", map[string]any{
		"name": "X", "element_type": "field", "data_type": "text",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListElements_DisplayOrder(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")
	ms.elements["elm-b"] = &model.Element{ID: "elm-b", BoardID: "brd-1", Name: "B", ElementType: model.ElementField, DataType: model.TypeText, DisplayOrder: 2}
	ms.elements["elm-a"] = &model.Element{ID: "elm-a", BoardID: "brd-1", Name: "A", ElementType: model.ElementField, DataType: model.TypeText, DisplayOrder: 1}

	w := doRequest(t, handler, http.MethodGet, "/v1/boards/brd-1/elements", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got struct {
		Elements []*model.Element `json:"elements"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Elements) != 2 || got.Elements[0].ID != "elm-a" || got.Elements[1].ID != "elm-b" {
		t.Errorf("elements out of order: %+v", got.Elements)
	}
}

func TestUpdateElement_ClearShowCondition(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")
	ms.elements["elm-1"] = &model.Element{
		ID: "elm-1", BoardID: "brd-1", Name: "Completed",
		ElementType: model.ElementField, DataType: model.TypeDate,
		ShowCondition: &model.Condition{Field: "elm-0", Query: model.QueryIsNotEmpty},
	}

	w := doRequest(t, handler, http.MethodPatch, "/v1/elements/elm-1", map[string]any{
		"show_condition": nil,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ms.elements["elm-1"].ShowCondition != nil {
		t.Error("show_condition should be cleared by explicit null")
	}

	// Absent key leaves other fields untouched.
	w = doRequest(t, handler, http.MethodPatch, "/v1/elements/elm-1", map[string]any{
		"name": "Finished",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ms.elements["elm-1"].Name != "Finished" {
		t.Errorf("name = %q, want Finished", ms.elements["elm-1"].Name)
	}
}

func TestCreateColumn(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")

	w := doRequest(t, handler, http.MethodPost, "/v1/boards/brd-1/columns", map[string]any{
		"name": "Unplayed",
		"conditions": []map[string]any{
			{"field": "elm-purchased", "query": "is_not_empty"},
		},
		"sort":    map[string]any{"field": "elm-purchased"},
		"summary": map[string]any{"function": "sum", "field": "elm-price"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	column := decodeResponse[model.Column](t, w)
	if column.Sort == nil || column.Sort.Direction != model.Ascending {
		t.Errorf("sort direction should default to asc, got %+v", column.Sort)
	}
	if len(ms.columns) != 1 {
		t.Error("column not persisted")
	}
}

func TestCreateColumn_Validation(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")

	for name, body := range map[string]map[string]any{
		"missing name":      {},
		"bad query op":      {"name": "X", "conditions": []map[string]any{{"field": "f", "query": "contains"}}},
		"bad direction":     {"name": "X", "sort": map[string]any{"field": "f", "direction": "up"}},
		"sum without field": {"name": "X", "summary": map[string]any{"function": "sum"}},
		"bad function":      {"name": "X", "summary": map[string]any{"function": "median", "field": "f"}},
	} {
		w := doRequest(t, handler, http.MethodPost, "/v1/boards/brd-1/columns", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestUpdateColumn_ClearSort(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")
	ms.columns["col-1"] = &model.Column{
		ID: "col-1", BoardID: "brd-1", Name: "All",
		Sort: &model.SortSpec{Field: "elm-1", Direction: model.Ascending},
	}

	w := doRequest(t, handler, http.MethodPatch, "/v1/columns/col-1", map[string]any{"sort": nil})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ms.columns["col-1"].Sort != nil {
		t.Error("sort should be cleared by explicit null")
	}
}

func TestDeleteColumn(t *testing.T) {
	_, ms, handler := newTestServer()
	seedBoard(ms, "brd-1")
	ms.columns["col-1"] = &model.Column{ID: "col-1", BoardID: "brd-1", Name: "All"}

	w := doRequest(t, handler, http.MethodDelete, "/v1/columns/col-1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if _, ok := ms.columns["col-1"]; ok {
		t.Error("column still present after delete")
	}
}
