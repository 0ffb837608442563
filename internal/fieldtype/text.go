package fieldtype

import (
	"fmt"
	"strconv"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// textHandler handles plain and multiline text fields. Text sorts
// lexicographically and case-sensitively.
type textHandler struct{}

func (textHandler) FormatValue(value any, _ model.ElementOptions) string {
	if value == nil {
		return ""
	}
	if s, ok := asString(value); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func (h textHandler) SortKey(value any, opts model.ElementOptions) Key {
	if IsEmpty(value) {
		return MissingKey()
	}
	return StringKey(h.FormatValue(value, opts))
}

func (textHandler) GroupValue(value any) any {
	return value
}

func (h textHandler) Equal(a, b any) bool {
	return h.FormatValue(a, model.ElementOptions{}) == h.FormatValue(b, model.ElementOptions{})
}

func (textHandler) ParseInput(raw string) any {
	return raw
}

// numberHandler handles numeric fields. Stored values are float64 after
// JSON decoding, but numeric strings from older editors are tolerated.
type numberHandler struct{}

func (numberHandler) FormatValue(value any, _ model.ElementOptions) string {
	n, ok := AsNumber(value)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func (numberHandler) SortKey(value any, _ model.ElementOptions) Key {
	n, ok := AsNumber(value)
	if !ok {
		return MissingKey()
	}
	return NumberKey(n)
}

func (numberHandler) GroupValue(value any) any {
	return value
}

func (numberHandler) Equal(a, b any) bool {
	na, aok := AsNumber(a)
	nb, bok := AsNumber(b)
	if !aok || !bok {
		return aok == bok
	}
	return na == nb
}

func (numberHandler) ParseInput(raw string) any {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Lenient: unparseable input passes through unchanged.
		return raw
	}
	return n
}
