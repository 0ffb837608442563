// Package fieldtype maps field data types to their behavior: display
// formatting, sort-key projection, grouping normalization, equality, and
// editor input parsing. The registry is the closed set of known types;
// callers handle the unknown-type case explicitly instead of crashing.
package fieldtype

import (
	"strconv"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// Handler is the behavior of one field data type.
type Handler interface {
	// FormatValue renders a stored value for read-only display. Returns ""
	// for nil or unrenderable values; the caller decides the "(empty)"
	// fallback.
	FormatValue(value any, opts model.ElementOptions) string

	// SortKey projects a stored value onto a totally ordered key. Nil and
	// unparseable values produce the missing key, which sorts after every
	// concrete key in ascending order.
	SortKey(value any, opts model.ElementOptions) Key

	// GroupValue normalizes a stored value to its bucket representative
	// (dates discard time-of-day). The result is still a stored-form value
	// suitable for FormatValue.
	GroupValue(value any) any

	// Equal reports whether two stored values are equal under the type's
	// semantics (choice by option ID, date by calendar date).
	Equal(a, b any) bool

	// ParseInput converts raw editor input into the stored representation.
	// It is lenient: input it cannot interpret passes through unchanged.
	ParseInput(raw string) any
}

var handlers = map[model.DataType]Handler{
	model.TypeText:     textHandler{},
	model.TypeNumber:   numberHandler{},
	model.TypeDate:     dateHandler{},
	model.TypeDateTime: dateTimeHandler{},
	model.TypeChoice:   choiceHandler{},
}

// Lookup returns the handler for a data type. ok is false for unknown
// types; the record then renders as an error marker and is excluded from
// sort, group, and summary computations.
func Lookup(dataType model.DataType) (Handler, bool) {
	h, ok := handlers[dataType]
	return h, ok
}

// IsEmpty reports whether a stored value counts as empty: nil, or a string
// that is blank after trimming. This rule is type-independent, so condition
// evaluation can apply it without resolving the field's handler.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// asString coerces a stored value to a string.
func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

// AsNumber coerces a stored value to a float64. JSON decoding produces
// float64, but editors may have stored numeric strings; both are accepted.
// The summary aggregator uses this to decide zero-contribution values.
func AsNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
