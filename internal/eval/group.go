package eval

import (
	"github.com/alfredjeanlab/cardwall/internal/fieldtype"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// EmptyBucketLabel is the display label for the bucket of cards with no
// value for the grouping field.
const EmptyBucketLabel = "(empty)"

// Group is one ordered bucket of an evaluated column.
type Group struct {
	// Value is the normalized bucket value (dates reduced to their day).
	// Nil for the empty bucket and for the implicit single bucket.
	Value any `json:"value"`

	// Label is the render-ready heading. Empty for the implicit bucket of
	// an ungrouped column, which has no visible header.
	Label string `json:"label"`

	Cards []*model.Card `json:"cards"`
}

// GroupCards buckets cards by the grouping field's normalized value.
//
// The cards are stable-sorted by the group key ascending, reversed when the
// direction is descending, and then partitioned into contiguous runs of
// equal key. Reversing the whole sequence, not the comparator, keeps the
// empty bucket's conventional placement (last ascending, first descending)
// and mirrors the per-record null rule at the bucket level.
//
// No grouping spec, a dangling field reference, or an unknown data type
// produces a single implicit bucket with no header.
func GroupCards(cards []*model.Card, spec *model.GroupSpec, schema model.Schema) []Group {
	implicit := func() []Group {
		return []Group{{Cards: append([]*model.Card(nil), cards...)}}
	}

	if spec == nil || spec.Field == "" || !spec.Direction.IsValid() {
		return implicit()
	}
	field := schema.FieldByID(spec.Field)
	if field == nil {
		return implicit()
	}
	handler, ok := fieldtype.Lookup(field.DataType)
	if !ok {
		return implicit()
	}

	groupValue := func(c *model.Card) any {
		v := c.FieldValues[spec.Field]
		if fieldtype.IsEmpty(v) {
			return nil
		}
		return handler.GroupValue(v)
	}
	keyOf := func(c *model.Card) fieldtype.Key {
		return handler.SortKey(groupValue(c), field.Options)
	}

	sorted := append([]*model.Card(nil), cards...)
	sortStable(sorted, keyOf)
	if spec.Direction == model.Descending {
		reverse(sorted)
	}

	var groups []Group
	var runKey fieldtype.Key
	for _, c := range sorted {
		key := keyOf(c)
		if len(groups) == 0 || !key.Equal(runKey) {
			value := groupValue(c)
			groups = append(groups, Group{
				Value: value,
				Label: groupLabel(value, field, handler),
			})
			runKey = key
		}
		last := &groups[len(groups)-1]
		last.Cards = append(last.Cards, c)
	}
	return groups
}

func groupLabel(value any, field *model.Element, handler fieldtype.Handler) string {
	label := handler.FormatValue(value, field.Options)
	if label == "" {
		label = EmptyBucketLabel
	}
	if field.Options.ShowLabelWhenReadOnly {
		label = field.Name + ": " + label
	}
	return label
}
