package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:     "board",
	Short:   "Manage boards",
	GroupID: "boards",
}

var boardCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := cwClient.CreateBoard(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("creating board: %w", err)
		}
		if jsonOutput {
			printJSON(board)
		} else {
			printBoardTable(board)
		}
		return nil
	},
}

var boardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all boards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		boards, err := cwClient.ListBoards(context.Background())
		if err != nil {
			return fmt.Errorf("listing boards: %w", err)
		}
		if jsonOutput {
			printJSON(boards)
		} else {
			printBoardListTable(boards)
		}
		return nil
	},
}

var boardShowCmd = &cobra.Command{
	Use:   "show <board-id>",
	Short: "Show a board and its schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		board, err := cwClient.GetBoard(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetching board: %w", err)
		}
		schema, err := cwClient.ListElements(ctx, board.ID)
		if err != nil {
			return fmt.Errorf("fetching elements: %w", err)
		}
		if jsonOutput {
			printJSON(map[string]any{"board": board, "elements": schema})
			return nil
		}
		printBoardTable(board)
		if len(schema) > 0 {
			fmt.Println()
			printElementListTable(schema)
		}
		return nil
	},
}

var boardRenameCmd = &cobra.Command{
	Use:   "rename <board-id> <name>",
	Short: "Rename a board",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := cwClient.UpdateBoard(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("renaming board: %w", err)
		}
		if jsonOutput {
			printJSON(board)
		} else {
			printBoardTable(board)
		}
		return nil
	},
}

var boardDeleteCmd = &cobra.Command{
	Use:   "delete <board-id>",
	Short: "Delete a board and everything on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cwClient.DeleteBoard(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting board: %w", err)
		}
		fmt.Printf("board %s deleted\n", args[0])
		return nil
	},
}

func init() {
	boardCmd.AddCommand(boardCreateCmd)
	boardCmd.AddCommand(boardListCmd)
	boardCmd.AddCommand(boardShowCmd)
	boardCmd.AddCommand(boardRenameCmd)
	boardCmd.AddCommand(boardDeleteCmd)
}
