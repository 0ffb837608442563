package events

import (
	"context"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// Event topic constants
const (
	TopicBoardCreated = "cardwall.board.created"
	TopicBoardUpdated = "cardwall.board.updated"
	TopicBoardDeleted = "cardwall.board.deleted"

	TopicElementCreated = "cardwall.element.created"
	TopicElementUpdated = "cardwall.element.updated"
	TopicElementDeleted = "cardwall.element.deleted"

	TopicCardCreated       = "cardwall.card.created"
	TopicCardUpdated       = "cardwall.card.updated"
	TopicCardFieldsPatched = "cardwall.card.fields_patched"
	TopicCardDeleted       = "cardwall.card.deleted"
	TopicButtonPressed     = "cardwall.card.button_pressed"

	TopicColumnCreated = "cardwall.column.created"
	TopicColumnUpdated = "cardwall.column.updated"
	TopicColumnDeleted = "cardwall.column.deleted"
)

// Event types

type BoardCreated struct {
	Board *model.Board `json:"board"`
}

type BoardUpdated struct {
	Board *model.Board `json:"board"`
}

type BoardDeleted struct {
	BoardID string `json:"board_id"`
}

type ElementCreated struct {
	Element *model.Element `json:"element"`
}

type ElementUpdated struct {
	Element *model.Element `json:"element"`
}

type ElementDeleted struct {
	ElementID string `json:"element_id"`
	BoardID   string `json:"board_id,omitempty"`
}

type CardCreated struct {
	Card *model.Card `json:"card"`
}

type CardUpdated struct {
	Card *model.Card `json:"card"`
}

// CardFieldsPatched carries the patch that was merged into the card, so
// subscribers can tell which fields changed without diffing snapshots.
type CardFieldsPatched struct {
	Card  *model.Card       `json:"card"`
	Patch model.FieldValues `json:"patch"`
}

type CardDeleted struct {
	CardID  string `json:"card_id"`
	BoardID string `json:"board_id,omitempty"`
}

// ButtonPressed records a resolved button press: the element that was
// pressed and the patch its actions produced.
type ButtonPressed struct {
	Card      *model.Card       `json:"card"`
	ElementID string            `json:"element_id"`
	Item      string            `json:"item,omitempty"` // menu item name for button_menu elements
	Patch     model.FieldValues `json:"patch"`
}

type ColumnCreated struct {
	Column *model.Column `json:"column"`
}

type ColumnUpdated struct {
	Column *model.Column `json:"column"`
}

type ColumnDeleted struct {
	ColumnID string `json:"column_id"`
	BoardID  string `json:"board_id,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
