package sync

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/alfredjeanlab/cardwall/internal/store"
)

// mockStore is an in-memory store.Store for exercising export and import
// without a database.
type mockStore struct {
	boards   map[string]*model.Board
	elements map[string]*model.Element
	cards    map[string]*model.Card
	columns  map[string]*model.Column

	// listBoardsErr, when non-nil, is returned by ListBoards.
	listBoardsErr error
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
	if _, ok := m.boards[b.ID]; ok {
		return fmt.Errorf("board %s already exists", b.ID)
	}
	m.boards[b.ID] = b
	return nil
}

func (m *mockStore) GetBoard(_ context.Context, id string) (*model.Board, error) {
	return m.boards[id], nil
}

func (m *mockStore) ListBoards(_ context.Context) ([]*model.Board, error) {
	if m.listBoardsErr != nil {
		return nil, m.listBoardsErr
	}
	var result []*model.Board
	for _, b := range m.boards {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateBoard(_ context.Context, b *model.Board) error {
	m.boards[b.ID] = b
	return nil
}

func (m *mockStore) DeleteBoard(_ context.Context, id string) error {
	delete(m.boards, id)
	return nil
}

func (m *mockStore) CreateElement(_ context.Context, e *model.Element) error {
	if _, ok := m.elements[e.ID]; ok {
		return fmt.Errorf("element %s already exists", e.ID)
	}
	m.elements[e.ID] = e
	return nil
}

func (m *mockStore) GetElement(_ context.Context, id string) (*model.Element, error) {
	return m.elements[id], nil
}

func (m *mockStore) ListElements(_ context.Context, boardID string) (model.Schema, error) {
	var schema model.Schema
	for _, e := range m.elements {
		if e.BoardID == boardID {
			schema = append(schema, e)
		}
	}
	sort.SliceStable(schema, func(i, j int) bool {
		return schema[i].DisplayOrder < schema[j].DisplayOrder
	})
	return schema, nil
}

func (m *mockStore) UpdateElement(_ context.Context, e *model.Element) error {
	m.elements[e.ID] = e
	return nil
}

func (m *mockStore) DeleteElement(_ context.Context, id string) error {
	delete(m.elements, id)
	return nil
}

func (m *mockStore) CreateCard(_ context.Context, c *model.Card) error {
	if _, ok := m.cards[c.ID]; ok {
		return fmt.Errorf("card %s already exists", c.ID)
	}
	m.cards[c.ID] = c
	return nil
}

func (m *mockStore) GetCard(_ context.Context, id string) (*model.Card, error) {
	return m.cards[id], nil
}

func (m *mockStore) ListCards(_ context.Context, filter model.CardFilter) ([]*model.Card, int, error) {
	var result []*model.Card
	for _, c := range m.cards {
		if filter.BoardID != "" && c.BoardID != filter.BoardID {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *mockStore) UpdateCard(_ context.Context, c *model.Card) error {
	m.cards[c.ID] = c
	return nil
}

func (m *mockStore) UpdateCardFields(_ context.Context, id string, patch model.FieldValues) (*model.Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c.FieldValues = c.FieldValues.Merge(patch)
	return c, nil
}

func (m *mockStore) DeleteCard(_ context.Context, id string) error {
	delete(m.cards, id)
	return nil
}

func (m *mockStore) CreateColumn(_ context.Context, c *model.Column) error {
	if _, ok := m.columns[c.ID]; ok {
		return fmt.Errorf("column %s already exists", c.ID)
	}
	m.columns[c.ID] = c
	return nil
}

func (m *mockStore) GetColumn(_ context.Context, id string) (*model.Column, error) {
	return m.columns[id], nil
}

func (m *mockStore) ListColumns(_ context.Context, boardID string) ([]*model.Column, error) {
	var result []*model.Column
	for _, c := range m.columns {
		if c.BoardID == boardID {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DisplayOrder < result[j].DisplayOrder
	})
	return result, nil
}

func (m *mockStore) UpdateColumn(_ context.Context, c *model.Column) error {
	m.columns[c.ID] = c
	return nil
}

func (m *mockStore) DeleteColumn(_ context.Context, id string) error {
	delete(m.columns, id)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

var _ store.Store = (*mockStore)(nil)
