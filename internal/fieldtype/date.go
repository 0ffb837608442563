package fieldtype

import (
	"time"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// Stored and display layouts for date and date-time values.
const (
	DateLayout = "2006-01-02"

	HumanDateLayout     = "Mon Jan 2, 2006"
	HumanDateTimeLayout = "Mon Jan 2, 2006 3:04:05 PM"
)

// ParseStored parses a stored date or date-time string, accepting either
// form. Grouping and condition evaluation go through this so that a date
// field holding a full timestamp still lands on its calendar day.
func ParseStored(s string) (time.Time, bool) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// dayOf truncates a parsed time to its calendar day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dateHandler handles whole-day date fields stored as "2006-01-02".
type dateHandler struct{}

func (dateHandler) FormatValue(value any, _ model.ElementOptions) string {
	s, ok := asString(value)
	if !ok {
		return ""
	}
	t, ok := ParseStored(s)
	if !ok {
		return ""
	}
	return dayOf(t).Format(HumanDateLayout)
}

func (dateHandler) SortKey(value any, _ model.ElementOptions) Key {
	s, ok := asString(value)
	if !ok {
		return MissingKey()
	}
	t, ok := ParseStored(s)
	if !ok {
		return MissingKey()
	}
	return NumberKey(float64(dayOf(t).Unix()))
}

func (dateHandler) GroupValue(value any) any {
	s, ok := asString(value)
	if !ok {
		return value
	}
	t, ok := ParseStored(s)
	if !ok {
		return value
	}
	return dayOf(t).Format(DateLayout)
}

// Equal compares by calendar date, not time-of-day.
func (dateHandler) Equal(a, b any) bool {
	sa, aok := asString(a)
	sb, bok := asString(b)
	if !aok || !bok {
		return aok == bok
	}
	ta, aok := ParseStored(sa)
	tb, bok := ParseStored(sb)
	if !aok || !bok {
		return aok == bok && sa == sb
	}
	return dayOf(ta).Equal(dayOf(tb))
}

func (dateHandler) ParseInput(raw string) any {
	if t, ok := ParseStored(raw); ok {
		return dayOf(t).Format(DateLayout)
	}
	return raw
}

// dateTimeHandler handles timestamp fields stored as RFC 3339.
type dateTimeHandler struct{}

func (dateTimeHandler) FormatValue(value any, _ model.ElementOptions) string {
	s, ok := asString(value)
	if !ok {
		return ""
	}
	// Day-normalized group values carry no time-of-day; render them as
	// plain dates instead of a midnight timestamp.
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(HumanDateLayout)
	}
	t, ok := ParseStored(s)
	if !ok {
		return ""
	}
	return t.Format(HumanDateTimeLayout)
}

func (dateTimeHandler) SortKey(value any, _ model.ElementOptions) Key {
	s, ok := asString(value)
	if !ok {
		return MissingKey()
	}
	t, ok := ParseStored(s)
	if !ok {
		return MissingKey()
	}
	return NumberKey(float64(t.Unix()))
}

// GroupValue buckets timestamps by calendar day, so records from any
// time on one day group together.
func (dateTimeHandler) GroupValue(value any) any {
	s, ok := asString(value)
	if !ok {
		return value
	}
	t, ok := ParseStored(s)
	if !ok {
		return value
	}
	return dayOf(t).Format(DateLayout)
}

// Equal compares the full instant.
func (dateTimeHandler) Equal(a, b any) bool {
	sa, aok := asString(a)
	sb, bok := asString(b)
	if !aok || !bok {
		return aok == bok
	}
	ta, aok := ParseStored(sa)
	tb, bok := ParseStored(sb)
	if !aok || !bok {
		return aok == bok && sa == sb
	}
	return ta.Equal(tb)
}

func (dateTimeHandler) ParseInput(raw string) any {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(time.RFC3339)
	}
	return raw
}
