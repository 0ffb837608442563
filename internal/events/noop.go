package events

import "context"

// NoopPublisher discards every event. The server falls back to it when
// no NATS URL is configured; SSE clients still receive events because
// the server mirrors every publish onto its SSE hub separately.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
