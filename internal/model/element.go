package model

import "time"

// ElementType distinguishes the kinds of board elements.
type ElementType string

const (
	ElementField      ElementType = "field"
	ElementButton     ElementType = "button"
	ElementButtonMenu ElementType = "button_menu"
)

// String returns the string representation of the element type.
func (t ElementType) String() string {
	return string(t)
}

// IsValid checks whether the element type is a known value.
func (t ElementType) IsValid() bool {
	switch t {
	case ElementField, ElementButton, ElementButtonMenu:
		return true
	}
	return false
}

// DataType is the closed set of field data types.
type DataType string

const (
	TypeText     DataType = "text"
	TypeNumber   DataType = "number"
	TypeDate     DataType = "date"
	TypeDateTime DataType = "datetime"
	TypeChoice   DataType = "choice"
)

// String returns the string representation of the data type.
func (t DataType) String() string {
	return string(t)
}

// IsValid checks whether the data type is a known value.
func (t DataType) IsValid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeDateTime, TypeChoice:
		return true
	}
	return false
}

// Command identifies an action command.
type Command string

const (
	CommandSetValue Command = "set_value"
	CommandAddDays  Command = "add_days"
)

// String returns the string representation of the command.
func (c Command) String() string {
	return string(c)
}

// ValueProvider names a computed-value source for set_value actions.
type ValueProvider string

const (
	ProviderEmpty ValueProvider = "empty"
	ProviderNow   ValueProvider = "now"
)

// Choice is one selectable option of a choice field.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Action computes a new value for a single field when a button is pressed.
// Value holds the value provider key for set_value, or a signed day count
// literal for add_days.
type Action struct {
	Command Command `json:"command"`
	Field   string  `json:"field"`
	Value   string  `json:"value,omitempty"`
}

// MenuItem is one entry of a button_menu element.
type MenuItem struct {
	Name    string   `json:"name"`
	Actions []Action `json:"actions,omitempty"`
}

// ElementOptions carries the type-specific configuration of an element.
type ElementOptions struct {
	// Field options
	Choices               []Choice `json:"choices,omitempty"`
	Multiline             bool     `json:"multiline,omitempty"`
	ShowLabelWhenReadOnly bool     `json:"show_label_when_read_only,omitempty"`

	// Button options
	Actions []Action   `json:"actions,omitempty"`
	Items   []MenuItem `json:"items,omitempty"`
}

// Element is one entry of a board's schema: a typed field definition or a
// button that triggers actions. Elements are owned by schema management;
// the evaluation engine only reads them.
type Element struct {
	ID            string         `json:"id"`
	BoardID       string         `json:"board_id"`
	Name          string         `json:"name"`
	ElementType   ElementType    `json:"element_type"`
	DataType      DataType       `json:"data_type,omitempty"`
	DisplayOrder  int            `json:"display_order"`
	ReadOnly      bool           `json:"read_only,omitempty"`
	ShowInSummary bool           `json:"show_in_summary,omitempty"`
	Options       ElementOptions `json:"options"`
	ShowCondition *Condition     `json:"show_condition,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Schema is an ordered set of elements belonging to one board.
type Schema []*Element

// FieldByID resolves an element by identifier. Returns nil when the ID does
// not appear in the schema; callers degrade rather than error.
func (s Schema) FieldByID(id string) *Element {
	for _, e := range s {
		if e.ID == id {
			return e
		}
	}
	return nil
}
