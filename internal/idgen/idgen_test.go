package idgen

import (
	"regexp"
	"testing"
)

func TestRecordPrefixes(t *testing.T) {
	for _, tc := range []struct {
		name   string
		gen    func() (string, error)
		prefix string
	}{
		{"board", Board, BoardPrefix},
		{"element", Element, ElementPrefix},
		{"card", Card, CardPrefix},
		{"column", Column, ColumnPrefix},
	} {
		id, err := tc.gen()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if id[:len(tc.prefix)] != tc.prefix {
			t.Errorf("%s ID = %q, want prefix %q", tc.name, id, tc.prefix)
		}
		if len(id) != len(tc.prefix)+Length {
			t.Errorf("%s ID length = %d, want %d (id=%q)", tc.name, len(id), len(tc.prefix)+Length, id)
		}
	}
}

func TestGenerateWithPrefix_Charset(t *testing.T) {
	pattern := regexp.MustCompile(`^crd-[a-zA-Z0-9]+$`)
	for i := 0; i < 100; i++ {
		id, err := Card()
		if err != nil {
			t.Fatalf("Card() error on iteration %d: %v", i, err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("Card() = %q, does not match expected charset pattern", id)
		}
	}
}

func TestGenerateWithPrefix_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := Card()
		if err != nil {
			t.Fatalf("Card() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}
