package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/client"
	"github.com/alfredjeanlab/cardwall/internal/ui"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	authToken  string
	actor      string
	jsonOutput bool

	cwClient client.CardwallClient
)

func defaultActor() string {
	if a := os.Getenv("CARDWALL_ACTOR"); a != "" {
		return a
	}
	if a := activeRemoteActor(); a != "" {
		return a
	}
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultServerURL() string {
	if s := os.Getenv("CARDWALL_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if t := os.Getenv("CARDWALL_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:   "cw <command>",
	Short: "CLI client for the Cardwall service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		cwClient = client.NewHTTPClient(serverURL, authToken, actor)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cwClient != nil {
			cwClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", defaultServerURL(), "server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authentication")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "editor name sent with card edits")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "boards", Title: "Boards:"},
		&cobra.Group{ID: "cards", Title: "Cards:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Boards
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(elementCmd)
	rootCmd.AddCommand(columnCmd)

	// Cards
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(pressCmd)
	rootCmd.AddCommand(deleteCmd)

	// Views
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(editorsCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
