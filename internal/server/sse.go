package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// sseReplayDepth bounds the replay window for Last-Event-ID reconnects.
// A client that falls further behind than this re-fetches the board
// instead of replaying.
const sseReplayDepth = 1000

// sseKeepaliveEvery is the comment-line heartbeat period. Proxies tend
// to cut idle streams well before a quiet board produces an event.
const sseKeepaliveEvery = 15 * time.Second

// sseEvent is one entry in the stream: a sequence number, the cardwall
// topic it was published under, the JSON payload, and the board the
// payload references (empty when the payload names no board).
type sseEvent struct {
	ID      uint64
	Topic   string
	BoardID string
	Data    []byte
}

// sseHub fans published events out to connected stream clients and keeps
// the last sseReplayDepth events for reconnecting clients.
type sseHub struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
	nextID  atomic.Uint64

	ringMu  sync.RWMutex
	ring    [sseReplayDepth]sseEvent
	ringPos int
	ringLen int
}

// sseClient is one connected consumer. Both filters are optional: topics
// narrows by topic glob, board narrows to events touching one board.
type sseClient struct {
	topics []string
	board  string
	ch     chan *sseEvent
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

// broadcast records the event in the replay ring and delivers it to every
// client whose filters match. Slow clients lose events rather than stall
// the caller.
func (h *sseHub) broadcast(topic string, payload []byte) {
	evt := &sseEvent{
		ID:      h.nextID.Add(1),
		Topic:   topic,
		BoardID: payloadBoardID(payload),
		Data:    payload,
	}

	h.ringMu.Lock()
	h.ring[h.ringPos] = *evt
	h.ringPos = (h.ringPos + 1) % sseReplayDepth
	if h.ringLen < sseReplayDepth {
		h.ringLen++
	}
	h.ringMu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.wants(evt) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
		}
	}
}

// A client this far behind on its channel starts losing events.
const sseClientBuffer = 64

// subscribe registers a stream client. Empty topics means every topic;
// empty board means every board. Call unsubscribe when done.
func (h *sseHub) subscribe(topics []string, board string) *sseClient {
	c := &sseClient{
		topics: topics,
		board:  board,
		ch:     make(chan *sseEvent, sseClientBuffer),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// eventsSince returns the ring's events with ID > lastID, oldest first.
func (h *sseHub) eventsSince(lastID uint64) []*sseEvent {
	h.ringMu.RLock()
	defer h.ringMu.RUnlock()

	oldest := h.ringPos - h.ringLen
	if oldest < 0 {
		oldest += sseReplayDepth
	}

	var out []*sseEvent
	for i := range h.ringLen {
		evt := &h.ring[(oldest+i)%sseReplayDepth]
		if evt.ID > lastID {
			out = append(out, evt)
		}
	}
	return out
}

// wants applies the client's topic and board filters. An event that names
// no board passes every board filter so scoped clients never miss
// board-less payloads.
func (c *sseClient) wants(evt *sseEvent) bool {
	if c.board != "" && evt.BoardID != "" && evt.BoardID != c.board {
		return false
	}
	return c.matchesTopic(evt.Topic)
}

func (c *sseClient) matchesTopic(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	return slices.ContainsFunc(c.topics, func(pat string) bool {
		return matchTopicPattern(pat, topic)
	})
}

// matchTopicPattern matches a dot-separated topic against a NATS-style
// pattern: "*" spans one segment, ">" spans the rest. "cardwall.card.*"
// matches "cardwall.card.created" but not "cardwall.board.created".
func matchTopicPattern(pattern, topic string) bool {
	if pattern == topic {
		return true
	}

	pat := strings.Split(pattern, ".")
	segs := strings.Split(topic, ".")

	for i, p := range pat {
		switch {
		case p == ">":
			return i < len(segs)
		case i >= len(segs):
			return false
		case p != "*" && p != segs[i]:
			return false
		}
	}
	return len(pat) == len(segs)
}

// boardRef is the subset of event payloads that can carry a board
// reference. Every cardwall event embeds the affected entity, and every
// entity except the board itself carries its board_id.
type boardRef struct {
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

// payloadBoardID extracts the board an event payload references, or ""
// when the payload names none.
func payloadBoardID(data []byte) string {
	var ref boardRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return ""
	}
	switch {
	case ref.BoardID != "":
		return ref.BoardID
	case ref.Board != nil && ref.Board.ID != "":
		return ref.Board.ID
	case ref.Card != nil && ref.Card.BoardID != "":
		return ref.Card.BoardID
	case ref.Element != nil && ref.Element.BoardID != "":
		return ref.Element.BoardID
	case ref.Column != nil && ref.Column.BoardID != "":
		return ref.Column.BoardID
	}
	return ""
}

// handleEventStream handles GET /v1/events/stream. Query parameters:
// "topics" is a comma-separated list of topic globs, "board" scopes the
// stream to events touching one board. The watch command connects here.
func (s *CardwallServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	var topics []string
	if q := r.URL.Query().Get("topics"); q != "" {
		for _, t := range strings.Split(q, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}
	board := r.URL.Query().Get("board")

	client := s.sseHub.subscribe(topics, board)
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Replay missed events when the client reconnects with Last-Event-ID.
	if lastIDStr := r.Header.Get("Last-Event-ID"); lastIDStr != "" {
		if lastID, err := strconv.ParseUint(lastIDStr, 10, 64); err == nil {
			for _, evt := range s.sseHub.eventsSince(lastID) {
				if client.wants(evt) {
					writeSSEEvent(w, evt)
				}
			}
			flusher.Flush()
		}
	}

	heartbeat := time.NewTicker(sseKeepaliveEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, evt *sseEvent) {
	fmt.Fprintf(w, "id:%d\n", evt.ID)
	fmt.Fprintf(w, "event:%s\n", evt.Topic)
	fmt.Fprintf(w, "data:%s\n\n", evt.Data)
}

// broadcastEvent mirrors a published event onto the SSE stream.
func (s *CardwallServer) broadcastEvent(topic string, event any) {
	if s.sseHub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("marshal event for stream", "topic", topic, "err", err)
		return
	}
	s.sseHub.broadcast(topic, payload)
}
