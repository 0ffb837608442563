package model

import "time"

// QueryOp is a condition's query operator.
type QueryOp string

const (
	QueryIsEmpty    QueryOp = "is_empty"
	QueryIsNotEmpty QueryOp = "is_not_empty"
	QueryEquals     QueryOp = "equals"
	QueryNotEquals  QueryOp = "not_equals"
)

// String returns the string representation of the query operator.
func (q QueryOp) String() string {
	return string(q)
}

// IsValid checks whether the query operator is a known value.
func (q QueryOp) IsValid() bool {
	switch q {
	case QueryIsEmpty, QueryIsNotEmpty, QueryEquals, QueryNotEquals:
		return true
	}
	return false
}

// Direction orders sorts and groupings.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// IsValid checks whether the direction is a known value.
func (d Direction) IsValid() bool {
	return d == Ascending || d == Descending
}

// SummaryFunction reduces a card list to one display value.
type SummaryFunction string

const (
	SummarySum     SummaryFunction = "sum"
	SummaryCount   SummaryFunction = "count"
	SummaryAverage SummaryFunction = "average"
)

// String returns the string representation of the summary function.
func (f SummaryFunction) String() string {
	return string(f)
}

// Condition is one clause of a column's inclusion filter or an element's
// show condition. A zero-valued condition (no operator) is vacuously
// satisfied. Multiple conditions combine with AND.
type Condition struct {
	Field string  `json:"field,omitempty"`
	Query QueryOp `json:"query,omitempty"`
	Value any     `json:"value,omitempty"`
}

// SortSpec orders cards by one field.
type SortSpec struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// GroupSpec buckets cards by one field's normalized value.
type GroupSpec struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// SummarySpec reduces the column's cards to one display value.
type SummarySpec struct {
	Function SummaryFunction `json:"function"`
	Field    string          `json:"field,omitempty"`
}

// Column is a saved view: filter, sort, grouping, and summary over a
// board's cards. Sort and grouping specs referencing fields missing from
// the schema degrade to no sort / no grouping.
type Column struct {
	ID           string       `json:"id"`
	BoardID      string       `json:"board_id"`
	Name         string       `json:"name"`
	DisplayOrder int          `json:"display_order"`
	Conditions   []Condition  `json:"conditions,omitempty"`
	Sort         *SortSpec    `json:"sort,omitempty"`
	Grouping     *GroupSpec   `json:"grouping,omitempty"`
	Summary      *SummarySpec `json:"summary,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
