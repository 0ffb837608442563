package postgres

import (
	"database/sql"
	"encoding/json"
	"reflect"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanBoard scans a single row into a model.Board.
// The row must contain columns in the order defined by boardColumns.
func scanBoard(row scannable) (*model.Board, error) {
	var b model.Board
	if err := row.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// scanBoards scans multiple rows into a slice of model.Board pointers.
func scanBoards(rows *sql.Rows) ([]*model.Board, error) {
	var boards []*model.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return boards, nil
}

// scanElement scans a single row into a model.Element.
// The row must contain columns in the order defined by elementColumns.
func scanElement(row scannable) (*model.Element, error) {
	var e model.Element
	var (
		dataType sql.NullString
		options  []byte
		showCond []byte
	)

	err := row.Scan(
		&e.ID,
		&e.BoardID,
		&e.Name,
		&e.ElementType,
		&dataType,
		&e.DisplayOrder,
		&e.ReadOnly,
		&e.ShowInSummary,
		&options,
		&showCond,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.DataType = model.DataType(dataType.String)
	if len(options) > 0 {
		if err := json.Unmarshal(options, &e.Options); err != nil {
			return nil, err
		}
	}
	if len(showCond) > 0 {
		var cond model.Condition
		if err := json.Unmarshal(showCond, &cond); err != nil {
			return nil, err
		}
		e.ShowCondition = &cond
	}

	return &e, nil
}

// scanElements scans multiple rows into a Schema.
func scanElements(rows *sql.Rows) (model.Schema, error) {
	var schema model.Schema
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, err
		}
		schema = append(schema, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return schema, nil
}

// scanCard scans a single row into a model.Card.
// The row must contain columns in the order defined by cardColumns.
func scanCard(row scannable) (*model.Card, error) {
	var c model.Card
	var values []byte

	err := row.Scan(&c.ID, &c.BoardID, &values, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.FieldValues = model.FieldValues{}
	if len(values) > 0 {
		if err := json.Unmarshal(values, &c.FieldValues); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// scanCardWithTotal scans a row that has a leading total_count column
// followed by the standard card columns. Used by queryListCards with
// COUNT(*) OVER().
func scanCardWithTotal(row scannable) (*model.Card, int, error) {
	var total int
	var c model.Card
	var values []byte

	err := row.Scan(&total, &c.ID, &c.BoardID, &values, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, 0, err
	}

	c.FieldValues = model.FieldValues{}
	if len(values) > 0 {
		if err := json.Unmarshal(values, &c.FieldValues); err != nil {
			return nil, 0, err
		}
	}
	return &c, total, nil
}

// scanColumn scans a single row into a model.Column.
// The row must contain columns in the order defined by viewColumns.
func scanColumn(row scannable) (*model.Column, error) {
	var col model.Column
	var (
		conditions  []byte
		sortSpec    []byte
		groupSpec   []byte
		summarySpec []byte
	)

	err := row.Scan(
		&col.ID,
		&col.BoardID,
		&col.Name,
		&col.DisplayOrder,
		&conditions,
		&sortSpec,
		&groupSpec,
		&summarySpec,
		&col.CreatedAt,
		&col.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &col.Conditions); err != nil {
			return nil, err
		}
	}
	if len(sortSpec) > 0 {
		col.Sort = &model.SortSpec{}
		if err := json.Unmarshal(sortSpec, col.Sort); err != nil {
			return nil, err
		}
	}
	if len(groupSpec) > 0 {
		col.Grouping = &model.GroupSpec{}
		if err := json.Unmarshal(groupSpec, col.Grouping); err != nil {
			return nil, err
		}
	}
	if len(summarySpec) > 0 {
		col.Summary = &model.SummarySpec{}
		if err := json.Unmarshal(summarySpec, col.Summary); err != nil {
			return nil, err
		}
	}

	return &col, nil
}

// scanColumns scans multiple rows into a slice of model.Column pointers.
func scanColumns(rows *sql.Rows) ([]*model.Column, error) {
	var cols []*model.Column
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbValue marshals an optional spec for a JSONB column; nil pointers
// and empty slices become SQL NULL rather than a JSON "null" literal.
func jsonbValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		if rv.IsNil() || (rv.Kind() == reflect.Slice && rv.Len() == 0) {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// fieldValuesBytes marshals card field values for a NOT NULL JSONB column;
// a nil map becomes the empty object.
func fieldValuesBytes(v model.FieldValues) ([]byte, error) {
	if v == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(v)
}
