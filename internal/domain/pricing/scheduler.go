package pricing

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// SyncResult is what the display-sync collaborator reports back. It never
// surfaces as an error: a failed push is logged and forgotten, the prices are
// already committed.
type SyncResult struct {
	Success bool
	Message string
}

type DisplaySync interface {
	Push(ctx context.Context) SyncResult
}

// Scheduler fires a bulk recompute on a fixed period and hands the result to
// the display-sync collaborator after every run, starting with an immediate
// run at startup.
type Scheduler struct {
	engine   *Engine
	sync     DisplaySync
	interval time.Duration
	log      *slog.Logger

	// onRun, when set, observes every run (metrics, notifications).
	onRun func(changed int, took time.Duration, err error)

	started  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewScheduler(engine *Engine, sync DisplaySync, interval time.Duration, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		engine:   engine,
		sync:     sync,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnRun registers an observer called after every run. Must be set before Start.
func (s *Scheduler) OnRun(fn func(changed int, took time.Duration, err error)) {
	s.onRun = fn
}

// Start launches the schedule: one immediate run, then one per interval.
// A failed run is logged and the schedule continues. Only the first call
// launches the loop.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	s.runOnce(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	changes, err := s.engine.RecomputeAll(ctx)
	if s.onRun != nil {
		s.onRun(len(changes), time.Since(start), err)
	}
	if err != nil {
		s.log.Error("scheduled price update failed", "err", err)
		return
	}
	s.log.Info("price update complete", "changed", len(changes))

	// Push even when nothing changed so the displays keep their heartbeat.
	res := s.sync.Push(ctx)
	if !res.Success {
		s.log.Warn("display sync failed", "message", res.Message)
		return
	}
	s.log.Info("displays updated", "message", res.Message)
}

// Stop prevents future ticks and waits for an in-progress run to finish.
// Safe to call more than once, and before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	if !s.started.Load() {
		return
	}
	<-s.done
}
