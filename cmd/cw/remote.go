package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// RemotesConfig holds every named remote plus the active selection.
// It lives at ~/.local/state/cardwall/remotes.toml.
type RemotesConfig struct {
	Active  string            `toml:"active"`
	Remotes map[string]Remote `toml:"remotes"`
}

// Remote is a named cardwall server profile. Actor, when set, becomes
// the default editor name attributed to card edits made through this
// remote.
type Remote struct {
	URL         string `toml:"url"`
	Token       string `toml:"token,omitempty"`
	NATSURL     string `toml:"nats_url,omitempty"`
	Actor       string `toml:"actor,omitempty"`
	Description string `toml:"description,omitempty"`
}

func remoteConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "state", "cardwall", "remotes.toml"), nil
}

func loadRemotesConfig() (RemotesConfig, error) {
	cfg := RemotesConfig{Remotes: map[string]Remote{}}

	path, err := remoteConfigPath()
	if err != nil {
		return cfg, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if cfg.Remotes == nil {
		cfg.Remotes = map[string]Remote{}
	}
	return cfg, nil
}

// saveRemotesConfig writes the file with owner-only permissions since it
// can hold auth tokens.
func saveRemotesConfig(cfg RemotesConfig) error {
	path, err := remoteConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode remotes config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// The active remote feeds flag defaults, so it is loaded once up front.
var (
	remoteOnce   sync.Once
	activeRemote Remote
)

func loadActiveRemoteOnce() {
	remoteOnce.Do(func() {
		cfg, err := loadRemotesConfig()
		if err != nil {
			return
		}
		// The zero Remote stands in when nothing is active.
		activeRemote = cfg.Remotes[cfg.Active]
	})
}

func activeRemoteURL() string     { loadActiveRemoteOnce(); return activeRemote.URL }
func activeRemoteToken() string   { loadActiveRemoteOnce(); return activeRemote.Token }
func activeRemoteNATSURL() string { loadActiveRemoteOnce(); return activeRemote.NATSURL }
func activeRemoteActor() string   { loadActiveRemoteOnce(); return activeRemote.Actor }

// maskToken keeps a recognizable prefix and hides the rest.
func maskToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + strings.Repeat("*", len(token)-8)
}

// updateRemotes loads the config, applies mutate, saves, and prints the
// message mutate returns.
func updateRemotes(mutate func(cfg *RemotesConfig) (string, error)) error {
	cfg, err := loadRemotesConfig()
	if err != nil {
		return err
	}
	msg, err := mutate(&cfg)
	if err != nil {
		return err
	}
	if err := saveRemotesConfig(cfg); err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

var remoteCmd = &cobra.Command{
	Use:     "remote",
	Short:   "Manage named server remotes",
	GroupID: "system",
	// Remote subcommands only touch the local config file, so the root
	// command's client setup is skipped.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var remoteAddCmd = &cobra.Command{
	Use:     "add <name> <url>",
	Short:   "Add or update a named remote",
	Example: "  cw remote add prod https://cardwall.example.com --token tok_abc --actor-name robin",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, addr := args[0], args[1]
		r := Remote{URL: addr}
		r.Token, _ = cmd.Flags().GetString("token")
		r.NATSURL, _ = cmd.Flags().GetString("nats")
		r.Actor, _ = cmd.Flags().GetString("actor-name")
		r.Description, _ = cmd.Flags().GetString("description")

		return updateRemotes(func(cfg *RemotesConfig) (string, error) {
			cfg.Remotes[name] = r
			return fmt.Sprintf("remote %q added (%s)", name, addr), nil
		})
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateRemotes(func(cfg *RemotesConfig) (string, error) {
			name := args[0]
			if _, ok := cfg.Remotes[name]; !ok {
				return "", fmt.Errorf("remote %q not found", name)
			}
			delete(cfg.Remotes, name)
			if cfg.Active == name {
				cfg.Active = ""
			}
			return fmt.Sprintf("remote %q removed", name), nil
		})
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured remotes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRemotesConfig()
		if err != nil {
			return err
		}
		if len(cfg.Remotes) == 0 {
			fmt.Println("no remotes configured")
			return nil
		}
		names := make([]string, 0, len(cfg.Remotes))
		for name := range cfg.Remotes {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tURL\tACTOR\tTOKEN\tDESCRIPTION")
		for _, name := range names {
			r := cfg.Remotes[name]
			marker := "  "
			if name == cfg.Active {
				marker = "* "
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\n", marker, name, r.URL, r.Actor, maskToken(r.Token), r.Description)
		}
		return w.Flush()
	},
}

var remoteUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the active remote (no args clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateRemotes(func(cfg *RemotesConfig) (string, error) {
			if len(args) == 0 {
				cfg.Active = ""
				return "active remote cleared", nil
			}
			name := args[0]
			if _, ok := cfg.Remotes[name]; !ok {
				return "", fmt.Errorf("remote %q not found", name)
			}
			cfg.Active = name
			return fmt.Sprintf("active remote set to %q", name), nil
		})
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show one remote in detail (defaults to the active one)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRemotesConfig()
		if err != nil {
			return err
		}
		name := cfg.Active
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("no active remote; specify a name or run 'cw remote use <name>'")
		}

		r, ok := cfg.Remotes[name]
		if !ok {
			return fmt.Errorf("remote %q not found", name)
		}

		heading := name
		if name == cfg.Active {
			heading += " (active)"
		}
		rows := [][2]string{
			{"name", heading},
			{"description", r.Description},
			{"url", r.URL},
			{"token", maskToken(r.Token)},
			{"nats_url", r.NATSURL},
			{"actor", r.Actor},
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, row := range rows {
			if row[1] != "" {
				fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
			}
		}
		return w.Flush()
	},
}

func init() {
	f := remoteAddCmd.Flags()
	f.String("token", "", "bearer token for authentication")
	f.String("nats", "", "NATS URL for live board watching")
	f.String("actor-name", "", "default editor name for card edits")
	f.String("description", "", "human-readable description of the remote")

	remoteCmd.AddCommand(remoteAddCmd, remoteRemoveCmd, remoteListCmd, remoteUseCmd, remoteShowCmd)
}
