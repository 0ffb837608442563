package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <board-id>",
	Short:   "Create a new card",
	GroupID: "cards",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		boardID := args[0]
		fieldPairs, _ := cmd.Flags().GetStringArray("field")

		ctx := context.Background()
		schema, err := cwClient.ListElements(ctx, boardID)
		if err != nil {
			return fmt.Errorf("fetching board schema: %w", err)
		}

		values, err := parseFieldPairs(schema, fieldPairs)
		if err != nil {
			return err
		}

		card, err := cwClient.CreateCard(ctx, boardID, values)
		if err != nil {
			return fmt.Errorf("creating card: %w", err)
		}
		if jsonOutput {
			printJSON(card)
		} else {
			printCardTable(card, schema)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringArrayP("field", "f", nil, "initial field value (name=value, repeatable)")
}
