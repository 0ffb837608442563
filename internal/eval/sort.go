package eval

import (
	"sort"

	"github.com/alfredjeanlab/cardwall/internal/fieldtype"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// Sort orders cards by the spec's field and direction. The sort is stable:
// ties keep their input order, which grouping depends on. Descending
// reverses the fully sorted ascending sequence rather than inverting the
// comparator, so stability holds symmetrically. A missing spec, a dangling
// field reference, or an unknown data type yields the identity ordering.
func Sort(cards []*model.Card, spec *model.SortSpec, schema model.Schema) []*model.Card {
	out := append([]*model.Card(nil), cards...)
	if spec == nil || spec.Field == "" || !spec.Direction.IsValid() {
		return out
	}
	field := schema.FieldByID(spec.Field)
	if field == nil {
		return out
	}
	handler, ok := fieldtype.Lookup(field.DataType)
	if !ok {
		return out
	}

	keyOf := func(c *model.Card) fieldtype.Key {
		return handler.SortKey(c.FieldValues[spec.Field], field.Options)
	}
	sortStable(out, keyOf)
	if spec.Direction == model.Descending {
		reverse(out)
	}
	return out
}

// sortStable sorts ascending by key; missing keys sort last.
func sortStable(cards []*model.Card, keyOf func(*model.Card) fieldtype.Key) {
	sort.SliceStable(cards, func(i, j int) bool {
		return keyOf(cards[i]).Less(keyOf(cards[j]))
	})
}

func reverse(cards []*model.Card) {
	for i, j := 0, len(cards)-1; i < j; i, j = i+1, j-1 {
		cards[i], cards[j] = cards[j], cards[i]
	}
}
