package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/client"
	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:     "set <card-id>",
	Short:   "Edit card field values",
	GroupID: "cards",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID := args[0]
		fieldPairs, _ := cmd.Flags().GetStringArray("field")
		clearFlags, _ := cmd.Flags().GetStringArray("clear")
		if len(fieldPairs) == 0 && len(clearFlags) == 0 {
			return fmt.Errorf("nothing to change; pass -f name=value or --clear name")
		}

		ctx := context.Background()
		card, err := cwClient.GetCard(ctx, cardID)
		if err != nil {
			return fmt.Errorf("fetching card: %w", err)
		}
		schema, err := cwClient.ListElements(ctx, card.BoardID)
		if err != nil {
			return fmt.Errorf("fetching board schema: %w", err)
		}

		values, err := parseFieldPairs(schema, fieldPairs)
		if err != nil {
			return err
		}
		clears := make([]*model.Element, 0, len(clearFlags))
		for _, c := range clearFlags {
			field, err := resolveField(schema, c)
			if err != nil {
				return err
			}
			clears = append(clears, field)
		}

		// Edits go through the reconciling editor so the CLI shares the
		// coalescing save path interactive frontends use. The flush skips
		// the debounce wait for this one-shot case.
		done := make(chan error, 1)
		editor := client.NewCardEditor(cwClient, client.EditorConfig{
			OnSaved: func(cardID string, patch model.FieldValues) {
				done <- nil
			},
			OnError: func(cardID string, patch model.FieldValues, err error) {
				done <- err
			},
		})
		defer editor.Close()

		for id, v := range values {
			editor.SetField(cardID, id, v)
		}
		for _, field := range clears {
			editor.ClearField(cardID, field.ID)
		}
		editor.Flush(cardID)

		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("saving card: %w", err)
			}
		case <-time.After(30 * time.Second):
			return fmt.Errorf("timed out saving card %s", cardID)
		}

		updated, err := cwClient.GetCard(ctx, cardID)
		if err != nil {
			return fmt.Errorf("fetching updated card: %w", err)
		}
		if jsonOutput {
			printJSON(updated)
		} else {
			printCardTable(updated, schema)
		}
		return nil
	},
}

func init() {
	setCmd.Flags().StringArrayP("field", "f", nil, "field value (name=value, repeatable)")
	setCmd.Flags().StringArray("clear", nil, "field to clear (repeatable)")
}
