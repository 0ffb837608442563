package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// splitField splits "key=value" into (key, value, true).
// Returns ("", "", false) if there is no '=' or key is empty.
func splitField(s string) (string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// resolveField maps a user-supplied key to a field element. The key can be
// an element ID or a case-insensitive element name. Buttons and button
// menus are not writable fields and never match.
func resolveField(schema model.Schema, key string) (*model.Element, error) {
	var byName *model.Element
	for _, e := range schema {
		if e.ElementType != model.ElementField {
			continue
		}
		if e.ID == key {
			return e, nil
		}
		if strings.EqualFold(e.Name, key) {
			if byName != nil {
				return nil, fmt.Errorf("field name %q is ambiguous; use the element ID", key)
			}
			byName = e
		}
	}
	if byName != nil {
		return byName, nil
	}
	return nil, fmt.Errorf("no field named %q on this board", key)
}

// parseFieldValue converts a raw string from the command line into the
// stored representation for the field's data type. An empty string or the
// literal "null" clears the field.
func parseFieldValue(field *model.Element, raw string) (any, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	switch field.DataType {
	case model.TypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q expects a number, got %q", field.Name, raw)
		}
		return n, nil
	case model.TypeChoice:
		for _, c := range field.Options.Choices {
			if c.ID == raw || strings.EqualFold(c.Label, raw) {
				return c.ID, nil
			}
		}
		return nil, fmt.Errorf("field %q has no choice %q", field.Name, raw)
	default:
		// text, date, and datetime values are stored as strings; the
		// server validates date formats.
		return raw, nil
	}
}

// parseFieldPairs converts -f key=value flags into a field patch keyed by
// element ID.
func parseFieldPairs(schema model.Schema, pairs []string) (model.FieldValues, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(model.FieldValues, len(pairs))
	for _, p := range pairs {
		k, v, ok := splitField(p)
		if !ok {
			return nil, fmt.Errorf("invalid field %q: expected key=value", p)
		}
		field, err := resolveField(schema, k)
		if err != nil {
			return nil, err
		}
		parsed, err := parseFieldValue(field, v)
		if err != nil {
			return nil, err
		}
		values[field.ID] = parsed
	}
	return values, nil
}
