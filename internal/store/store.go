package store

import (
	"context"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// Store defines the persistence interface for cardwall.
type Store interface {
	// Board CRUD
	CreateBoard(ctx context.Context, board *model.Board) error
	GetBoard(ctx context.Context, id string) (*model.Board, error)
	ListBoards(ctx context.Context) ([]*model.Board, error)
	UpdateBoard(ctx context.Context, board *model.Board) error
	DeleteBoard(ctx context.Context, id string) error

	// Elements (a board's schema: fields and buttons)
	CreateElement(ctx context.Context, element *model.Element) error
	GetElement(ctx context.Context, id string) (*model.Element, error)
	ListElements(ctx context.Context, boardID string) (model.Schema, error) // ordered by display_order
	UpdateElement(ctx context.Context, element *model.Element) error
	DeleteElement(ctx context.Context, id string) error

	// Card CRUD
	CreateCard(ctx context.Context, card *model.Card) error
	GetCard(ctx context.Context, id string) (*model.Card, error)
	ListCards(ctx context.Context, filter model.CardFilter) ([]*model.Card, int, error) // returns cards, total count, error
	UpdateCard(ctx context.Context, card *model.Card) error
	// UpdateCardFields merges a field-value patch into the stored card.
	// Patch entries with nil values clear the field. Returns the updated card.
	UpdateCardFields(ctx context.Context, id string, patch model.FieldValues) (*model.Card, error)
	DeleteCard(ctx context.Context, id string) error

	// Columns (saved views)
	CreateColumn(ctx context.Context, column *model.Column) error
	GetColumn(ctx context.Context, id string) (*model.Column, error)
	ListColumns(ctx context.Context, boardID string) ([]*model.Column, error) // ordered by display_order
	UpdateColumn(ctx context.Context, column *model.Column) error
	DeleteColumn(ctx context.Context, id string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
