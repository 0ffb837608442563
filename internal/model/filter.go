package model

// CardFilter holds criteria for querying cards from the store. View-level
// filtering (conditions, sort, grouping) happens in the evaluation engine,
// not in the store.
type CardFilter struct {
	BoardID string `json:"board_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}
