package main

import (
	"testing"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

func testSchema() model.Schema {
	return model.Schema{
		{ID: "elm-title", Name: "Title", ElementType: model.ElementField, DataType: model.TypeText},
		{ID: "elm-price", Name: "Price", ElementType: model.ElementField, DataType: model.TypeNumber},
		{ID: "elm-status", Name: "Status", ElementType: model.ElementField, DataType: model.TypeChoice,
			Options: model.ElementOptions{Choices: []model.Choice{
				{ID: "open", Label: "Open"},
				{ID: "done", Label: "Done"},
			}}},
		{ID: "elm-buy", Name: "Buy", ElementType: model.ElementButton},
	}
}

func TestSplitField(t *testing.T) {
	tests := []struct {
		in    string
		key   string
		value string
		ok    bool
	}{
		{"title=Outer Wilds", "title", "Outer Wilds", true},
		{"price=19.99", "price", "19.99", true},
		{"empty=", "empty", "", true},
		{"eq=a=b", "eq", "a=b", true},
		{"noequals", "", "", false},
		{"=value", "", "", false},
	}
	for _, tt := range tests {
		k, v, ok := splitField(tt.in)
		if k != tt.key || v != tt.value || ok != tt.ok {
			t.Errorf("splitField(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, k, v, ok, tt.key, tt.value, tt.ok)
		}
	}
}

func TestResolveField(t *testing.T) {
	schema := testSchema()

	byID, err := resolveField(schema, "elm-price")
	if err != nil {
		t.Fatalf("resolve by ID: %v", err)
	}
	if byID.ID != "elm-price" {
		t.Errorf("resolved %q, want elm-price", byID.ID)
	}

	byName, err := resolveField(schema, "price")
	if err != nil {
		t.Fatalf("resolve by name: %v", err)
	}
	if byName.ID != "elm-price" {
		t.Errorf("resolved %q, want elm-price", byName.ID)
	}

	if _, err := resolveField(schema, "Buy"); err == nil {
		t.Error("expected error resolving a button as a field")
	}
	if _, err := resolveField(schema, "missing"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestResolveField_AmbiguousName(t *testing.T) {
	schema := model.Schema{
		{ID: "elm-1", Name: "Notes", ElementType: model.ElementField, DataType: model.TypeText},
		{ID: "elm-2", Name: "notes", ElementType: model.ElementField, DataType: model.TypeText},
	}
	if _, err := resolveField(schema, "notes"); err == nil {
		t.Error("expected ambiguity error for duplicate names")
	}
	// An exact ID still resolves.
	f, err := resolveField(schema, "elm-2")
	if err != nil {
		t.Fatalf("resolve by ID: %v", err)
	}
	if f.ID != "elm-2" {
		t.Errorf("resolved %q, want elm-2", f.ID)
	}
}

func TestParseFieldValue(t *testing.T) {
	schema := testSchema()
	title := schema.FieldByID("elm-title")
	price := schema.FieldByID("elm-price")
	status := schema.FieldByID("elm-status")

	tests := []struct {
		name    string
		field   *model.Element
		raw     string
		want    any
		wantErr bool
	}{
		{"text", title, "Outer Wilds", "Outer Wilds", false},
		{"text empty clears", title, "", nil, false},
		{"text null clears", title, "null", nil, false},
		{"number", price, "19.99", 19.99, false},
		{"number invalid", price, "cheap", nil, true},
		{"choice by id", status, "done", "done", false},
		{"choice by label", status, "Done", "done", false},
		{"choice unknown", status, "archived", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFieldValue(tt.field, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestParseFieldPairs(t *testing.T) {
	schema := testSchema()

	values, err := parseFieldPairs(schema, []string{"title=Hades", "price=24.99"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values["elm-title"] != "Hades" {
		t.Errorf("elm-title = %v, want Hades", values["elm-title"])
	}
	if values["elm-price"] != 24.99 {
		t.Errorf("elm-price = %v, want 24.99", values["elm-price"])
	}

	if _, err := parseFieldPairs(schema, []string{"noequals"}); err == nil {
		t.Error("expected error for malformed pair")
	}
	if _, err := parseFieldPairs(schema, []string{"missing=x"}); err == nil {
		t.Error("expected error for unknown field")
	}

	if got, err := parseFieldPairs(schema, nil); err != nil || got != nil {
		t.Errorf("empty input = (%v, %v), want (nil, nil)", got, err)
	}
}
