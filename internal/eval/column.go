package eval

import (
	"sort"

	"github.com/alfredjeanlab/cardwall/internal/fieldtype"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// ColumnResult is the render-ready evaluation of one column: ordered
// groups of member cards plus an optional summary display value.
type ColumnResult struct {
	Column  *model.Column `json:"column"`
	Groups  []Group       `json:"groups"`
	Summary string        `json:"summary,omitempty"`
}

// EvaluateColumn runs the full pipeline for one column: filter by the
// inclusion conditions, sort, group, and summarize. The input snapshot is
// never mutated.
func EvaluateColumn(cards []*model.Card, column *model.Column, schema model.Schema) ColumnResult {
	filtered := Filter(cards, column.Conditions, schema)
	sorted := Sort(filtered, column.Sort, schema)
	return ColumnResult{
		Column:  column,
		Groups:  GroupCards(sorted, column.Grouping, schema),
		Summary: Summarize(filtered, column.Summary, schema),
	}
}

// EvaluateBoard evaluates every column against one card snapshot, ordered
// by column display order.
func EvaluateBoard(cards []*model.Card, columns []*model.Column, schema model.Schema) []ColumnResult {
	ordered := append([]*model.Column(nil), columns...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	results := make([]ColumnResult, 0, len(ordered))
	for _, col := range ordered {
		results = append(results, EvaluateColumn(cards, col, schema))
	}
	return results
}

// FieldDisplay is the read-only rendering contract for one field of one
// card: the formatted string plus the raw stored value.
type FieldDisplay struct {
	Formatted string `json:"formatted"`
	Raw       any    `json:"raw"`
}

// DisplayField formats a card's value for a field element. ok is false when
// the element's data type is unknown; the caller renders an explicit error
// marker instead of a value.
func DisplayField(values model.FieldValues, field *model.Element) (FieldDisplay, bool) {
	raw := values[field.ID]
	handler, known := fieldtype.Lookup(field.DataType)
	if !known {
		return FieldDisplay{Raw: raw}, false
	}
	formatted := handler.FormatValue(raw, field.Options)
	if field.Options.ShowLabelWhenReadOnly {
		if formatted == "" {
			formatted = EmptyBucketLabel
		}
		formatted = field.Name + ": " + formatted
	}
	return FieldDisplay{Formatted: formatted, Raw: raw}, true
}

func sortElementsByDisplayOrder(elements []*model.Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].DisplayOrder < elements[j].DisplayOrder
	})
}
