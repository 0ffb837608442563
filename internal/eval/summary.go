package eval

import (
	"strconv"

	"github.com/alfredjeanlab/cardwall/internal/fieldtype"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// Summarize reduces the column's filtered cards (pre-grouping) to a single
// display value. Non-numeric and missing values contribute zero to sum and
// average. No spec, an unknown function, or an unresolvable target field
// yields "" (no summary shown).
func Summarize(cards []*model.Card, spec *model.SummarySpec, schema model.Schema) string {
	if spec == nil || spec.Function == "" {
		return ""
	}

	switch spec.Function {
	case model.SummaryCount:
		return strconv.Itoa(len(cards))
	case model.SummarySum:
		total, ok := sumField(cards, spec.Field, schema)
		if !ok {
			return ""
		}
		return formatNumber(total)
	case model.SummaryAverage:
		total, ok := sumField(cards, spec.Field, schema)
		if !ok {
			return ""
		}
		if len(cards) == 0 {
			return "0"
		}
		return formatNumber(total / float64(len(cards)))
	default:
		return ""
	}
}

// sumField totals a numeric field across cards. ok is false when the field
// is not in the schema or its data type is unknown to the registry.
func sumField(cards []*model.Card, fieldID string, schema model.Schema) (float64, bool) {
	field := schema.FieldByID(fieldID)
	if field == nil {
		return 0, false
	}
	if _, known := fieldtype.Lookup(field.DataType); !known {
		return 0, false
	}

	var total float64
	for _, c := range cards {
		if n, ok := fieldtype.AsNumber(c.FieldValues[fieldID]); ok {
			total += n
		}
	}
	return total, true
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
