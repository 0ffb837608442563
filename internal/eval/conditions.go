// Package eval is the record evaluation engine: it filters, sorts, groups,
// and summarizes a board's cards according to a column's view specification.
// Evaluation is pure and synchronous; it reads immutable snapshots and never
// performs I/O.
package eval

import (
	"github.com/alfredjeanlab/cardwall/internal/fieldtype"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// Matches reports whether a card's field values satisfy every condition.
// An empty condition list is vacuously true. Unknown fields and unknown
// operators fail closed: the card is excluded.
func Matches(values model.FieldValues, conditions []model.Condition, schema model.Schema) bool {
	for _, cond := range conditions {
		if !matchCondition(values, cond, schema) {
			return false
		}
	}
	return true
}

func matchCondition(values model.FieldValues, cond model.Condition, schema model.Schema) bool {
	// A condition without an operator is not a constraint. Element show
	// conditions are frequently unset.
	if cond.Query == "" {
		return true
	}

	value := values[cond.Field]

	switch cond.Query {
	case model.QueryIsEmpty:
		// Emptiness is schema-independent; a dangling field reference is
		// simply an absent value.
		return fieldtype.IsEmpty(value)
	case model.QueryIsNotEmpty:
		return !fieldtype.IsEmpty(value)
	case model.QueryEquals, model.QueryNotEquals:
		field := schema.FieldByID(cond.Field)
		if field == nil {
			return false
		}
		handler, ok := fieldtype.Lookup(field.DataType)
		if !ok {
			return false
		}
		eq := handler.Equal(value, cond.Value)
		if cond.Query == model.QueryNotEquals {
			return !eq
		}
		return eq
	default:
		// Unknown operator fails closed.
		return false
	}
}

// Filter returns the cards whose field values satisfy all conditions,
// preserving input order.
func Filter(cards []*model.Card, conditions []model.Condition, schema model.Schema) []*model.Card {
	if len(conditions) == 0 {
		return append([]*model.Card(nil), cards...)
	}
	out := make([]*model.Card, 0, len(cards))
	for _, c := range cards {
		if Matches(c.FieldValues, conditions, schema) {
			out = append(out, c)
		}
	}
	return out
}

// VisibleElements returns the schema elements whose show conditions pass for
// the given field values, ordered by display order. Used when rendering a
// single card's detail form.
func VisibleElements(values model.FieldValues, schema model.Schema) []*model.Element {
	out := make([]*model.Element, 0, len(schema))
	for _, el := range schema {
		if el.ShowCondition != nil && !matchCondition(values, *el.ShowCondition, schema) {
			continue
		}
		out = append(out, el)
	}
	sortElementsByDisplayOrder(out)
	return out
}
