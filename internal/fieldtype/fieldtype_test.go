package fieldtype

import (
	"testing"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

func TestLookup(t *testing.T) {
	for _, dt := range []model.DataType{
		model.TypeText, model.TypeNumber, model.TypeDate, model.TypeDateTime, model.TypeChoice,
	} {
		if _, ok := Lookup(dt); !ok {
			t.Errorf("Lookup(%q) should succeed", dt)
		}
	}
	if _, ok := Lookup(model.DataType("geolocation")); ok {
		t.Error(`Lookup("geolocation") should fail`)
	}
}

func TestIsEmpty(t *testing.T) {
	for _, tc := range []struct {
		value any
		want  bool
	}{
		{nil, true},
		{"", true},
		{"   ", true},
		{"x", false},
		{float64(0), false},
	} {
		if got := IsEmpty(tc.value); got != tc.want {
			t.Errorf("IsEmpty(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestText_FormatAndSort(t *testing.T) {
	h, _ := Lookup(model.TypeText)

	if got := h.FormatValue("Hello, world!", model.ElementOptions{}); got != "Hello, world!" {
		t.Errorf("FormatValue = %q", got)
	}
	if got := h.FormatValue(nil, model.ElementOptions{}); got != "" {
		t.Errorf("FormatValue(nil) = %q, want empty", got)
	}

	// Case-sensitive lexicographic order: uppercase before lowercase.
	a := h.SortKey("Zebra", model.ElementOptions{})
	b := h.SortKey("apple", model.ElementOptions{})
	if !a.Less(b) {
		t.Error(`"Zebra" should sort before "apple" case-sensitively`)
	}
	if !h.SortKey(nil, model.ElementOptions{}).IsMissing() {
		t.Error("nil should produce the missing key")
	}
}

func TestNumber_Handler(t *testing.T) {
	h, _ := Lookup(model.TypeNumber)

	if got := h.FormatValue(float64(42), model.ElementOptions{}); got != "42" {
		t.Errorf("FormatValue(42) = %q", got)
	}
	if got := h.FormatValue("27", model.ElementOptions{}); got != "27" {
		t.Errorf("FormatValue(%q) = %q", "27", got)
	}
	if got := h.FormatValue("not a number", model.ElementOptions{}); got != "" {
		t.Errorf("FormatValue(non-numeric) = %q, want empty", got)
	}

	// Numbers sort numerically, not lexicographically.
	if !h.SortKey(float64(9), model.ElementOptions{}).Less(h.SortKey(float64(10), model.ElementOptions{})) {
		t.Error("9 should sort before 10")
	}

	if got := h.ParseInput("27"); got != float64(27) {
		t.Errorf("ParseInput(%q) = %v (%T)", "27", got, got)
	}
	if got := h.ParseInput("27 apples"); got != "27 apples" {
		t.Errorf("ParseInput should pass unparseable input through, got %v", got)
	}

	if !h.Equal(float64(27), "27") {
		t.Error("27 and \"27\" should be equal numerically")
	}
}

func TestDate_Handler(t *testing.T) {
	h, _ := Lookup(model.TypeDate)

	if got := h.FormatValue("2023-01-01", model.ElementOptions{}); got != "Sun Jan 1, 2023" {
		t.Errorf("FormatValue = %q", got)
	}
	if got := h.FormatValue("garbage", model.ElementOptions{}); got != "" {
		t.Errorf("FormatValue(garbage) = %q, want empty", got)
	}

	if !h.SortKey("1998-01-01", model.ElementOptions{}).Less(h.SortKey("2023-01-01", model.ElementOptions{})) {
		t.Error("1998 should sort before 2023")
	}
	if !h.SortKey("garbage", model.ElementOptions{}).IsMissing() {
		t.Error("unparseable date should produce the missing key")
	}

	// Calendar-date equality ignores time-of-day.
	if !h.Equal("2023-01-01", "2023-01-01T08:00:00Z") {
		t.Error("same calendar day should be equal")
	}
	if h.Equal("2023-01-01", "2023-01-02") {
		t.Error("different days should not be equal")
	}

	if got := h.ParseInput("2023-01-01T23:00:00Z"); got != "2023-01-01" {
		t.Errorf("ParseInput should normalize to the stored day form, got %v", got)
	}
}

func TestDateTime_Handler(t *testing.T) {
	h, _ := Lookup(model.TypeDateTime)

	if got := h.FormatValue("2023-02-02T13:23:45Z", model.ElementOptions{}); got != "Thu Feb 2, 2023 1:23:45 PM" {
		t.Errorf("FormatValue = %q", got)
	}
	// Day-normalized group values render as plain dates.
	if got := h.FormatValue("2023-02-02", model.ElementOptions{}); got != "Thu Feb 2, 2023" {
		t.Errorf("FormatValue(day) = %q", got)
	}

	// Instants on the same day group together.
	if h.GroupValue("2023-01-01T08:00:00Z") != h.GroupValue("2023-01-01T23:00:00Z") {
		t.Error("timestamps on one day should share a group value")
	}

	// Full-instant equality.
	if h.Equal("2023-01-01T08:00:00Z", "2023-01-01T23:00:00Z") {
		t.Error("different instants should not be equal for datetime fields")
	}
}

func TestChoice_Handler(t *testing.T) {
	opts := model.ElementOptions{Choices: []model.Choice{
		{ID: "fake_uuid_1", Label: "Choice 1"},
		{ID: "fake_uuid_2", Label: "Choice 2"},
	}}
	h, _ := Lookup(model.TypeChoice)

	if got := h.FormatValue("fake_uuid_2", opts); got != "Choice 2" {
		t.Errorf("FormatValue = %q", got)
	}
	if got := h.FormatValue("dangling", opts); got != "dangling" {
		t.Errorf("FormatValue(dangling ID) = %q", got)
	}

	// Equality is by option ID even when labels collide.
	if h.Equal("fake_uuid_1", "fake_uuid_2") {
		t.Error("distinct option IDs should not be equal")
	}
	if !h.Equal("fake_uuid_1", "fake_uuid_1") {
		t.Error("identical option IDs should be equal")
	}
}

func TestKey_Ordering(t *testing.T) {
	missing := MissingKey()
	low := NumberKey(1)
	high := NumberKey(2)

	if missing.Less(low) {
		t.Error("missing should not sort before concrete keys ascending")
	}
	if !low.Less(missing) {
		t.Error("concrete keys should sort before missing ascending")
	}
	if !low.Less(high) || high.Less(low) {
		t.Error("numeric ordering broken")
	}
	if !missing.Equal(MissingKey()) {
		t.Error("missing keys should be equal (one empty bucket)")
	}
	if low.Equal(high) {
		t.Error("distinct keys should not be equal")
	}
}
