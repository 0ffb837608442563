package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// startTestNATS runs an embedded NATS server for the test and returns
// its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS never became ready")
	}
	return srv.ClientURL()
}

func newTestPair(t *testing.T) (*NATSPublisher, *NATSSubscriber) {
	t.Helper()
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	t.Cleanup(func() { pub.Close() })

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	t.Cleanup(func() { sub.Close() })

	return pub, sub
}

func TestNATSSubscriber_ReceivesPublishedEvent(t *testing.T) {
	pub, sub := newTestPair(t)

	ch, cancel, err := sub.Subscribe(TopicCardCreated)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	event := CardCreated{Card: &model.Card{ID: "crd-1", BoardID: "brd-1"}}
	if err := pub.Publish(context.Background(), TopicCardCreated, event); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	select {
	case payload := <-ch:
		var got CardCreated
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		if got.Card == nil || got.Card.ID != "crd-1" {
			t.Errorf("payload card = %+v, want crd-1", got.Card)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNATSSubscriber_WildcardSpansEntityTopics(t *testing.T) {
	pub, sub := newTestPair(t)

	ch, cancel, err := sub.Subscribe("cardwall.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := context.Background()
	topics := []string{TopicCardCreated, TopicCardUpdated, TopicColumnCreated}
	for _, topic := range topics {
		if err := pub.Publish(ctx, topic, map[string]string{"topic": topic}); err != nil {
			t.Fatalf("publishing to %s: %v", topic, err)
		}
	}
	pub.conn.Flush()

	for i := range topics {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestNATSSubscriber_CancelClosesChannel(t *testing.T) {
	_, sub := newTestPair(t)

	ch, cancel, err := sub.Subscribe("cardwall.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	// Cancel is idempotent and closes the channel.
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after cancel")
	}
}

func TestNATSSubscriber_CancelDuringDelivery(t *testing.T) {
	pub, sub := newTestPair(t)

	ch, cancel, err := sub.Subscribe(TopicCardUpdated)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = pub.Publish(context.Background(), TopicCardUpdated, map[string]int{"n": i})
		}
		pub.conn.Flush()
	}()

	// Cancelling mid-stream must not panic or deadlock a sender.
	cancel()
	<-done

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after cancel")
	}
}

func TestNATSSubscriber_ImplementsSubscriber(t *testing.T) {
	var _ Subscriber = (*NATSSubscriber)(nil)
}

func TestNATSSubscriber_AcceptsExtraOptions(t *testing.T) {
	url := startTestNATS(t)

	handled := make(chan struct{}, 1)
	sub, err := NewNATSSubscriber(url, nats.ReconnectHandler(func(_ *nats.Conn) {
		select {
		case handled <- struct{}{}:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("NewNATSSubscriber with extra options: %v", err)
	}
	defer sub.Close()

	if !sub.conn.IsConnected() {
		t.Fatal("subscriber not connected")
	}
}
