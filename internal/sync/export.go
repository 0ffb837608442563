// Package sync exports board snapshots as JSONL and ships them to
// configured destinations on a schedule.
package sync

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/alfredjeanlab/cardwall/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	BoardCount   int       `json:"board_count"`
	ElementCount int       `json:"element_count"`
	CardCount    int       `json:"card_count"`
	ColumnCount  int       `json:"column_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes every board with its elements, cards, and columns
// from the store as JSONL to w. Records of each type are sorted by ID so
// repeated exports of the same data are byte-stable apart from the header
// timestamp.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	boards, err := s.ListBoards(ctx)
	if err != nil {
		return fmt.Errorf("list boards: %w", err)
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })

	var elements []*model.Element
	var cards []*model.Card
	var columns []*model.Column
	for _, b := range boards {
		schema, err := s.ListElements(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("list elements for %s: %w", b.ID, err)
		}
		elements = append(elements, schema...)

		boardCards, _, err := s.ListCards(ctx, model.CardFilter{BoardID: b.ID})
		if err != nil {
			return fmt.Errorf("list cards for %s: %w", b.ID, err)
		}
		cards = append(cards, boardCards...)

		boardColumns, err := s.ListColumns(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("list columns for %s: %w", b.ID, err)
		}
		columns = append(columns, boardColumns...)
	}

	sort.Slice(elements, func(i, j int) bool { return elements[i].ID < elements[j].ID })
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	sort.Slice(columns, func(i, j int) bool { return columns[i].ID < columns[j].ID })

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      "1",
		Type:         "header",
		Timestamp:    time.Now().UTC(),
		BoardCount:   len(boards),
		ElementCount: len(elements),
		CardCount:    len(cards),
		ColumnCount:  len(columns),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, b := range boards {
		if err := enc.Encode(record{Type: "board", Data: b}); err != nil {
			return fmt.Errorf("encode board %s: %w", b.ID, err)
		}
	}
	for _, e := range elements {
		if err := enc.Encode(record{Type: "element", Data: e}); err != nil {
			return fmt.Errorf("encode element %s: %w", e.ID, err)
		}
	}
	for _, c := range columns {
		if err := enc.Encode(record{Type: "column", Data: c}); err != nil {
			return fmt.Errorf("encode column %s: %w", c.ID, err)
		}
	}
	for _, c := range cards {
		if err := enc.Encode(record{Type: "card", Data: c}); err != nil {
			return fmt.Errorf("encode card %s: %w", c.ID, err)
		}
	}

	return nil
}

// ImportJSONL reads a snapshot produced by ExportJSONL and inserts every
// record into the store inside a single transaction. Existing records with
// the same IDs cause the import to fail and roll back.
func ImportJSONL(ctx context.Context, s store.Store, r io.Reader) error {
	return s.RunInTransaction(ctx, func(tx store.Store) error {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		line := 0
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}

			var rec struct {
				Type string          `json:"type"`
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}

			switch rec.Type {
			case "header":
				// Carries counts only; nothing to restore.
			case "board":
				var b model.Board
				if err := json.Unmarshal(rec.Data, &b); err != nil {
					return fmt.Errorf("line %d: decode board: %w", line, err)
				}
				if err := tx.CreateBoard(ctx, &b); err != nil {
					return fmt.Errorf("create board %s: %w", b.ID, err)
				}
			case "element":
				var e model.Element
				if err := json.Unmarshal(rec.Data, &e); err != nil {
					return fmt.Errorf("line %d: decode element: %w", line, err)
				}
				if err := tx.CreateElement(ctx, &e); err != nil {
					return fmt.Errorf("create element %s: %w", e.ID, err)
				}
			case "column":
				var c model.Column
				if err := json.Unmarshal(rec.Data, &c); err != nil {
					return fmt.Errorf("line %d: decode column: %w", line, err)
				}
				if err := tx.CreateColumn(ctx, &c); err != nil {
					return fmt.Errorf("create column %s: %w", c.ID, err)
				}
			case "card":
				var c model.Card
				if err := json.Unmarshal(rec.Data, &c); err != nil {
					return fmt.Errorf("line %d: decode card: %w", line, err)
				}
				if err := tx.CreateCard(ctx, &c); err != nil {
					return fmt.Errorf("create card %s: %w", c.ID, err)
				}
			default:
				return fmt.Errorf("line %d: unknown record type %q", line, rec.Type)
			}
		}
		return scanner.Err()
	})
}
