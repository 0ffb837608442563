package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var editorsCmd = &cobra.Command{
	Use:     "editors",
	Short:   "Show who is editing cards right now",
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := cwClient.EditorRoster(context.Background())
		if err != nil {
			return fmt.Errorf("fetching roster: %w", err)
		}

		if jsonOutput {
			printJSON(entries)
			return nil
		}

		if len(entries) == 0 {
			fmt.Println("no active editors")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ACTOR\tBOARD\tCARD\tIDLE\tEDITS")
		for _, e := range entries {
			board := e.BoardName
			if board == "" {
				board = e.BoardID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%d\n", e.Actor, board, e.CardID, e.IdleSecs, e.EditCount)
		}
		return w.Flush()
	},
}
