package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch <board-id>",
	Short:   "Watch a board and re-render on changes",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		boardID := args[0]
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Initial render.
		if err := renderOnce(ctx, boardID); err != nil {
			return err
		}
		if once {
			return nil
		}

		// Event-driven when NATS is reachable, polling otherwise.
		natsURL := os.Getenv("CARDWALL_NATS_URL")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL != "" {
			return watchNATS(ctx, natsURL, boardID)
		}
		return watchPoll(ctx, interval, boardID)
	},
}

// renderOnce evaluates and renders the board a single time.
func renderOnce(ctx context.Context, boardID string) error {
	resp, err := cwClient.EvaluateBoard(ctx, boardID)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("evaluating board: %w", err)
	}
	schema, err := cwClient.ListElements(ctx, resp.Board.ID)
	if err != nil {
		return fmt.Errorf("fetching board schema: %w", err)
	}
	fmt.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
	renderBoard(os.Stdout, resp.Board, resp.Columns, schema)
	fmt.Println()
	return nil
}

// boardEvent is the subset of event payloads needed to scope re-renders
// to the watched board.
type boardEvent struct {
	BoardID string `json:"board_id"`
	Board   *struct {
		ID string `json:"id"`
	} `json:"board"`
	Card *struct {
		BoardID string `json:"board_id"`
	} `json:"card"`
	Element *struct {
		BoardID string `json:"board_id"`
	} `json:"element"`
	Column *struct {
		BoardID string `json:"board_id"`
	} `json:"column"`
}

// eventTouchesBoard reports whether an event payload references the board.
// Unparseable payloads count as a match so changes are never missed.
func eventTouchesBoard(data []byte, boardID string) bool {
	var ev boardEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return true
	}
	switch {
	case ev.BoardID == boardID:
		return true
	case ev.Board != nil && ev.Board.ID == boardID:
		return true
	case ev.Card != nil && ev.Card.BoardID == boardID:
		return true
	case ev.Element != nil && ev.Element.BoardID == boardID:
		return true
	case ev.Column != nil && ev.Column.BoardID == boardID:
		return true
	}
	return false
}

// Bursts of events (a button press patches several fields) collapse into
// a single re-render.
const renderDebounce = 200 * time.Millisecond

// watchNATS re-renders the board whenever a matching event arrives.
func watchNATS(ctx context.Context, natsURL, boardID string) error {
	// A reconnect means events may have been missed, so the board is
	// re-rendered unconditionally when one fires.
	reconnected := make(chan struct{}, 1)
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnected <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("cardwall.>")
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	// The timer starts drained so the first render waits for an event.
	debounce := time.NewTimer(0)
	debounce.Stop()
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			if eventTouchesBoard(data, boardID) {
				debounce.Reset(renderDebounce)
			}
		case <-reconnected:
			debounce.Reset(0)
		case <-debounce.C:
			if err := renderOnce(ctx, boardID); err != nil {
				return err
			}
		}
	}
}

// watchPoll re-renders at the given interval.
func watchPoll(ctx context.Context, interval time.Duration, boardID string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := renderOnce(ctx, boardID); err != nil {
			return err
		}
	}
}

func init() {
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval")
	watchCmd.Flags().Bool("once", false, "exit after the first render")
}
