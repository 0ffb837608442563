package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/cardwall/internal/config"
	"github.com/alfredjeanlab/cardwall/internal/store/postgres"
	cardsync "github.com/alfredjeanlab/cardwall/internal/sync"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	Short:   "Export all boards to a JSONL snapshot (stdout by default)",
	GroupID: "system",
	Args:    cobra.MaximumNArgs(1),
	// Talks to the database directly, not the server.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if err := cardsync.ExportJSONL(context.Background(), store, out); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		if len(args) == 1 {
			fmt.Fprintf(os.Stderr, "exported to %s\n", args[0])
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	Short:   "Import a JSONL snapshot into an empty database",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	// Talks to the database directly, not the server.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if err := cardsync.ImportJSONL(context.Background(), store, f); err != nil {
			return fmt.Errorf("importing: %w", err)
		}
		fmt.Printf("imported %s\n", args[0])
		return nil
	},
}
