package server

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/cardwall/internal/events"
	"github.com/alfredjeanlab/cardwall/internal/presence"
	"github.com/alfredjeanlab/cardwall/internal/store"
)

// CardwallServer serves the board, element, card, and column API over HTTP.
type CardwallServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
	Presence  *presence.Tracker
}

// NewCardwallServer returns a new CardwallServer backed by the given store
// and publisher.
func NewCardwallServer(s store.Store, p events.Publisher) *CardwallServer {
	return &CardwallServer{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
		Presence:  presence.New(),
	}
}

// publish sends an event to NATS and to connected SSE clients. Both are
// best-effort; failures are logged but do not block the caller.
func (s *CardwallServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
	s.broadcastEvent(topic, event)
}

// inputError indicates invalid user input.
// The HTTP layer maps this to 400 Bad Request.
type inputError string

func (e inputError) Error() string { return string(e) }
