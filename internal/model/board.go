// Package model defines the core records of the cardwall domain: boards,
// elements (the per-board field schema plus buttons), cards, and columns
// (saved views). The evaluation engine reads these as immutable snapshots;
// mutation happens through the store.
package model

import "time"

// Board is the top-level container for a schema, its cards, and its columns.
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
