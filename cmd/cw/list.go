package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/cardwall/internal/client"
	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list <board-id>",
	Short:   "List a board's cards",
	GroupID: "cards",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		boardID := args[0]
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		ctx := context.Background()
		schema, err := cwClient.ListElements(ctx, boardID)
		if err != nil {
			return fmt.Errorf("fetching board schema: %w", err)
		}

		resp, err := cwClient.ListCards(ctx, &client.ListCardsRequest{
			BoardID: boardID,
			Limit:   limit,
			Offset:  offset,
		})
		if err != nil {
			return fmt.Errorf("listing cards: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printCardListTable(resp.Cards, resp.Total, schema)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:     "show <card-id>",
	Short:   "Show a card",
	GroupID: "cards",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		card, err := cwClient.GetCard(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetching card: %w", err)
		}
		schema, err := cwClient.ListElements(ctx, card.BoardID)
		if err != nil {
			return fmt.Errorf("fetching board schema: %w", err)
		}
		if jsonOutput {
			printJSON(card)
		} else {
			printCardTable(card, schema)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <card-id>",
	Short:   "Delete a card",
	GroupID: "cards",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cwClient.DeleteCard(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting card: %w", err)
		}
		fmt.Printf("card %s deleted\n", args[0])
		return nil
	},
}

var pressCmd = &cobra.Command{
	Use:     "press <card-id> <element-id>",
	Short:   "Press a card button",
	GroupID: "cards",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID, elementID := args[0], args[1]
		item, _ := cmd.Flags().GetString("item")

		ctx := context.Background()
		resp, err := cwClient.PressButton(ctx, cardID, elementID, item)
		if err != nil {
			return fmt.Errorf("pressing button: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		schema, err := cwClient.ListElements(ctx, resp.Card.BoardID)
		if err != nil {
			return fmt.Errorf("fetching board schema: %w", err)
		}
		if resp.Errors != "" {
			fmt.Fprintf(os.Stderr, "some actions failed: %s\n", resp.Errors)
		}
		printPatch(resp.Patch, schema)
		printCardTable(resp.Card, schema)
		return nil
	},
}

// printPatch summarizes the field changes a button press produced.
func printPatch(patch model.FieldValues, schema model.Schema) {
	for id, v := range patch {
		name := id
		if field := schema.FieldByID(id); field != nil {
			name = field.Name
		}
		if v == nil {
			fmt.Printf("cleared %s\n", name)
		} else {
			fmt.Printf("set %s = %v\n", name, v)
		}
	}
	fmt.Println()
}

func init() {
	listCmd.Flags().Int("limit", 50, "maximum number of cards to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")

	pressCmd.Flags().String("item", "", "menu item name (button_menu elements)")
}
