package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/eval"
	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/alfredjeanlab/cardwall/internal/ui"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:     "view <board-id>",
	Short:   "Render a board's evaluated columns",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		resp, err := cwClient.EvaluateBoard(ctx, args[0])
		if err != nil {
			return fmt.Errorf("evaluating board: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		schema, err := cwClient.ListElements(ctx, resp.Board.ID)
		if err != nil {
			return fmt.Errorf("fetching board schema: %w", err)
		}
		renderBoard(os.Stdout, resp.Board, resp.Columns, schema)
		return nil
	},
}

// summaryFields picks the fields shown on a card's one-line summary: the
// elements flagged show_in_summary, or the first field when none are.
func summaryFields(schema model.Schema) []*model.Element {
	fields := fieldElements(schema)
	var flagged []*model.Element
	for _, f := range fields {
		if f.ShowInSummary {
			flagged = append(flagged, f)
		}
	}
	if len(flagged) > 0 {
		return flagged
	}
	if len(fields) > 0 {
		return fields[:1]
	}
	return nil
}

// cardLine renders one card as a single line: its ID plus summary fields.
// Fields hidden by their show condition are omitted.
func cardLine(card *model.Card, fields []*model.Element, schema model.Schema) string {
	parts := []string{ui.RenderMuted(card.ID)}
	for _, f := range fields {
		if f.ShowCondition != nil && !eval.Matches(card.FieldValues, []model.Condition{*f.ShowCondition}, schema) {
			continue
		}
		if v := formatField(card.FieldValues, f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "  ")
}

// renderBoard writes the evaluated board to w: one section per column,
// groups indented beneath, one line per card.
func renderBoard(w io.Writer, board *model.Board, results []eval.ColumnResult, schema model.Schema) {
	fields := summaryFields(schema)

	fmt.Fprintf(w, "%s\n", ui.RenderAccent(board.Name))

	for _, res := range results {
		header := res.Column.Name
		if res.Summary != "" {
			header += "  " + ui.RenderMuted("("+res.Summary+")")
		}
		fmt.Fprintf(w, "\n%s\n", ui.RenderCommand(header))

		empty := true
		for _, group := range res.Groups {
			if group.Label != "" {
				fmt.Fprintf(w, "  %s\n", ui.RenderMuted(group.Label))
			}
			for _, card := range group.Cards {
				indent := "  "
				if group.Label != "" {
					indent = "    "
				}
				fmt.Fprintf(w, "%s%s\n", indent, cardLine(card, fields, schema))
				empty = false
			}
		}
		if empty {
			fmt.Fprintf(w, "  %s\n", ui.RenderMuted("no cards"))
		}
	}
}
