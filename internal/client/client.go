// Package client provides a transport-agnostic interface for the cardwall
// service and an HTTP/JSON implementation that talks to the cardwall REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/cardwall/internal/eval"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// CardwallClient is the interface that all cardwall CLI commands use to
// communicate with the server. It is implemented by HTTPClient.
type CardwallClient interface {
	// Boards
	CreateBoard(ctx context.Context, name string) (*model.Board, error)
	GetBoard(ctx context.Context, id string) (*model.Board, error)
	ListBoards(ctx context.Context) ([]*model.Board, error)
	UpdateBoard(ctx context.Context, id, name string) (*model.Board, error)
	DeleteBoard(ctx context.Context, id string) error
	EvaluateBoard(ctx context.Context, id string) (*EvaluateBoardResponse, error)

	// Elements
	CreateElement(ctx context.Context, boardID string, req *CreateElementRequest) (*model.Element, error)
	GetElement(ctx context.Context, id string) (*model.Element, error)
	ListElements(ctx context.Context, boardID string) (model.Schema, error)
	UpdateElement(ctx context.Context, id string, req *UpdateElementRequest) (*model.Element, error)
	DeleteElement(ctx context.Context, id string) error

	// Columns
	CreateColumn(ctx context.Context, boardID string, req *CreateColumnRequest) (*model.Column, error)
	GetColumn(ctx context.Context, id string) (*model.Column, error)
	ListColumns(ctx context.Context, boardID string) ([]*model.Column, error)
	UpdateColumn(ctx context.Context, id string, req *UpdateColumnRequest) (*model.Column, error)
	DeleteColumn(ctx context.Context, id string) error

	// Cards
	CreateCard(ctx context.Context, boardID string, values model.FieldValues) (*model.Card, error)
	GetCard(ctx context.Context, id string) (*model.Card, error)
	ListCards(ctx context.Context, req *ListCardsRequest) (*ListCardsResponse, error)
	PatchCardFields(ctx context.Context, id string, patch model.FieldValues) (*model.Card, error)
	PressButton(ctx context.Context, cardID, elementID, item string) (*PressButtonResponse, error)
	DeleteCard(ctx context.Context, id string) error

	// Presence
	EditorRoster(ctx context.Context) ([]RosterEntry, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// EvaluateBoardResponse is the response from EvaluateBoard: the board and
// its render-ready column results.
type EvaluateBoardResponse struct {
	Board   *model.Board        `json:"board"`
	Columns []eval.ColumnResult `json:"columns"`
}

// CreateElementRequest holds parameters for creating a board element.
type CreateElementRequest struct {
	Name          string               `json:"name"`
	ElementType   model.ElementType    `json:"element_type"`
	DataType      model.DataType       `json:"data_type,omitempty"`
	DisplayOrder  int                  `json:"display_order"`
	ReadOnly      bool                 `json:"read_only,omitempty"`
	ShowInSummary bool                 `json:"show_in_summary,omitempty"`
	Options       model.ElementOptions `json:"options"`
	ShowCondition *model.Condition     `json:"show_condition,omitempty"`
}

// UpdateElementRequest holds optional parameters for updating an element.
// Nil pointer fields and empty strings mean "don't change".
type UpdateElementRequest struct {
	Name          string                `json:"name,omitempty"`
	DisplayOrder  *int                  `json:"display_order,omitempty"`
	ReadOnly      *bool                 `json:"read_only,omitempty"`
	ShowInSummary *bool                 `json:"show_in_summary,omitempty"`
	Options       *model.ElementOptions `json:"options,omitempty"`
	ShowCondition *model.Condition      `json:"show_condition,omitempty"`
}

// CreateColumnRequest holds parameters for creating a column.
type CreateColumnRequest struct {
	Name         string             `json:"name"`
	DisplayOrder int                `json:"display_order"`
	Conditions   []model.Condition  `json:"conditions,omitempty"`
	Sort         *model.SortSpec    `json:"sort,omitempty"`
	Grouping     *model.GroupSpec   `json:"grouping,omitempty"`
	Summary      *model.SummarySpec `json:"summary,omitempty"`
}

// UpdateColumnRequest holds optional parameters for updating a column.
type UpdateColumnRequest struct {
	Name         string             `json:"name,omitempty"`
	DisplayOrder *int               `json:"display_order,omitempty"`
	Conditions   []model.Condition  `json:"conditions,omitempty"`
	Sort         *model.SortSpec    `json:"sort,omitempty"`
	Grouping     *model.GroupSpec   `json:"grouping,omitempty"`
	Summary      *model.SummarySpec `json:"summary,omitempty"`
}

// ListCardsRequest holds parameters for listing cards.
type ListCardsRequest struct {
	BoardID string `json:"board_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// ListCardsResponse is the response from ListCards.
type ListCardsResponse struct {
	Cards []*model.Card `json:"cards"`
	Total int           `json:"total"`
}

// PressButtonResponse is the response from PressButton: the updated card,
// the patch the button's actions produced, and any per-action failures.
// Errors is set when some actions failed to resolve; the patch from the
// rest still applied.
type PressButtonResponse struct {
	Card   *model.Card       `json:"card"`
	Patch  model.FieldValues `json:"patch"`
	Errors string            `json:"errors,omitempty"`
}

// RosterEntry is one editor on the live roster.
type RosterEntry struct {
	Actor     string  `json:"actor"`
	BoardID   string  `json:"board_id,omitempty"`
	BoardName string  `json:"board_name,omitempty"`
	CardID    string  `json:"card_id,omitempty"`
	IdleSecs  float64 `json:"idle_secs"`
	EditCount int64   `json:"edit_count"`
}
