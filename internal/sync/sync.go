package sync

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/store"
)

// Destination is a place a board snapshot can be written to.
type Destination interface {
	// Name identifies the destination in logs, e.g. "s3://bucket/key".
	Name() string

	// Write stores one full JSONL snapshot. Each call replaces or adds a
	// snapshot; destinations decide which.
	Write(ctx context.Context, data []byte) error
}

// Scheduler snapshots every board to the configured destinations on a
// fixed interval. A destination failure is logged and does not block the
// other destinations or the next tick.
type Scheduler struct {
	store    store.Store
	dests    []Destination
	interval time.Duration
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(s store.Store, dests []Destination, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{store: s, dests: dests, interval: interval, log: log}
}

// Start snapshots once immediately, then on every tick until Stop.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.snapshot(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.snapshot(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight snapshot to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) snapshot(ctx context.Context) {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.store, &buf); err != nil {
		s.log.Error("snapshot export failed", "err", err)
		return
	}
	data := buf.Bytes()

	for _, dest := range s.dests {
		if err := dest.Write(ctx, data); err != nil {
			s.log.Error("snapshot write failed", "destination", dest.Name(), "err", err)
		}
	}

	s.log.Info("snapshot completed", "destinations", len(s.dests), "bytes", len(data))
}
