package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher sends cardwall events to NATS, one subject per topic
// ("cardwall.card.created" and so on). The server uses it when
// CARDWALL_NATS_URL is set; otherwise publishing is a no-op.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("cardwall-server"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	return p.conn.Publish(topic, payload)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NATSSubscriber consumes cardwall events from NATS. The watch command
// uses it to follow board changes live.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects with unlimited reconnects so a watch
// outlives broker restarts. Extra nats.Option values (disconnect and
// reconnect handlers, typically) are appended after the defaults.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	defaults := []nats.Option{
		nats.Name("cardwall-watch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	conn, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: conn}, nil
}

// Subscribe delivers raw payloads for the topic on the returned channel.
// NATS wildcards work, so "cardwall.>" follows everything and
// "cardwall.card.*" follows card changes. The cancel function
// unsubscribes and closes the channel; a full channel drops payloads
// rather than stall the NATS client.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	d := &delivery{msgs: make(chan []byte, 64)}

	sub, err := s.conn.Subscribe(topic, d.handle)
	if err != nil {
		close(d.msgs)
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	// Flush so the server has registered the subscription before we
	// return; otherwise events published on other connections can be
	// missed during the race.
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		close(d.msgs)
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}

	cancel := func() {
		d.once.Do(func() {
			_ = sub.Unsubscribe()
			d.stop()
		})
	}
	return d.msgs, cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}

// delivery owns one subscription's channel and its shutdown. handle runs
// on the NATS client goroutine, so stop must not close the channel while
// a handle call is in flight.
type delivery struct {
	mu     sync.Mutex
	closed bool
	once   sync.Once
	msgs   chan []byte
}

func (d *delivery) handle(msg *nats.Msg) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.msgs <- msg.Data:
	default:
	}
}

func (d *delivery) stop() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	// Drain pending payloads so no sender blocks, then close.
	for {
		select {
		case <-d.msgs:
		default:
			close(d.msgs)
			return
		}
	}
}
