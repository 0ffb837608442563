package fieldtype

import "github.com/alfredjeanlab/cardwall/internal/model"

// choiceHandler handles single-select choice fields. Stored values are
// option IDs; display and ordering go through the option label.
type choiceHandler struct{}

func optionLabel(id string, opts model.ElementOptions) (string, bool) {
	for _, c := range opts.Choices {
		if c.ID == id {
			return c.Label, true
		}
	}
	return "", false
}

func (choiceHandler) FormatValue(value any, opts model.ElementOptions) string {
	id, ok := asString(value)
	if !ok || id == "" {
		return ""
	}
	if label, ok := optionLabel(id, opts); ok {
		return label
	}
	// Dangling option ID: show it raw rather than hiding the value.
	return id
}

func (h choiceHandler) SortKey(value any, opts model.ElementOptions) Key {
	if IsEmpty(value) {
		return MissingKey()
	}
	return StringKey(h.FormatValue(value, opts))
}

func (choiceHandler) GroupValue(value any) any {
	return value
}

// Equal compares option IDs, not labels.
func (choiceHandler) Equal(a, b any) bool {
	sa, aok := asString(a)
	sb, bok := asString(b)
	if !aok || !bok {
		return aok == bok
	}
	return sa == sb
}

func (choiceHandler) ParseInput(raw string) any {
	return raw
}
