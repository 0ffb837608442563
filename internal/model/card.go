package model

import "time"

// FieldValues maps element IDs to untyped stored values: nil, string,
// float64, or an ISO date / date-time string. Values arrive straight from
// JSON, so numbers are float64.
type FieldValues map[string]any

// Clone returns a shallow copy. The engine never mutates a card's values in
// place; patches are applied to a copy.
func (v FieldValues) Clone() FieldValues {
	out := make(FieldValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge returns a copy of v with the patch applied on top.
func (v FieldValues) Merge(patch FieldValues) FieldValues {
	out := v.Clone()
	for k, val := range patch {
		out[k] = val
	}
	return out
}

// Card is one schema-free record: a value per schema field.
type Card struct {
	ID          string      `json:"id"`
	BoardID     string      `json:"board_id"`
	FieldValues FieldValues `json:"field_values"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
