package pricing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guymor/wasteless/internal/domain/products"
)

type countingSync struct {
	mu     sync.Mutex
	pushes int
	result SyncResult
}

func (c *countingSync) Push(_ context.Context) SyncResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushes++
	return c.result
}

func (c *countingSync) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushes
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSchedulerRunsImmediatelyAndPushes(t *testing.T) {
	today := date(2024, 6, 10)
	store := &fakeProductStore{items: []products.Product{
		seededProduct(1, "vegetables", 12.90, date(2024, 6, 20)), // no change expected
	}}
	e := newTestEngine(store, &fakeHistoryStore{}, today)
	syncer := &countingSync{result: SyncResult{Success: true, Message: "ok"}}

	s := NewScheduler(e, syncer, time.Hour, discard())
	s.Start(context.Background())
	defer s.Stop()

	// The push happens even though nothing changed.
	waitFor(t, func() bool { return syncer.count() == 1 })
}

func TestSchedulerKeepsTickingAfterFailedPush(t *testing.T) {
	today := date(2024, 6, 10)
	store := &fakeProductStore{items: nil}
	e := newTestEngine(store, &fakeHistoryStore{}, today)
	syncer := &countingSync{result: SyncResult{Success: false, Message: "signage down"}}

	s := NewScheduler(e, syncer, 20*time.Millisecond, discard())
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return syncer.count() >= 3 })
}

func TestSchedulerKeepsTickingAfterRunError(t *testing.T) {
	store := &fakeProductStore{listErr: errors.New("db gone")}
	e := newTestEngine(store, &fakeHistoryStore{}, date(2024, 6, 10))
	syncer := &countingSync{result: SyncResult{Success: true}}

	var runs atomic.Int64
	s := NewScheduler(e, syncer, 20*time.Millisecond, discard())
	s.OnRun(func(_ int, _ time.Duration, err error) {
		if err == nil {
			t.Error("expected run error")
		}
		runs.Add(1)
	})
	s.Start(context.Background())
	defer s.Stop()

	// The schedule survives consecutive failures and never pushes stale state.
	waitFor(t, func() bool { return runs.Load() >= 3 })
	if syncer.count() != 0 {
		t.Errorf("pushed %d times after failed runs, want 0", syncer.count())
	}
}

func TestSchedulerObserverSeesRuns(t *testing.T) {
	today := date(2024, 6, 10)
	store := &fakeProductStore{items: []products.Product{
		seededProduct(1, "fruits", 19.90, today), // changes on first run
	}}
	e := newTestEngine(store, &fakeHistoryStore{}, today)
	syncer := &countingSync{result: SyncResult{Success: true}}

	var mu sync.Mutex
	var seen []int
	s := NewScheduler(e, syncer, time.Hour, discard())
	s.OnRun(func(changed int, _ time.Duration, err error) {
		if err != nil {
			t.Errorf("unexpected run error: %v", err)
		}
		mu.Lock()
		seen = append(seen, changed)
		mu.Unlock()
	})
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && seen[0] == 1
	})
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	e := newTestEngine(&fakeProductStore{}, &fakeHistoryStore{}, date(2024, 6, 10))
	syncer := &countingSync{result: SyncResult{Success: true}}

	s := NewScheduler(e, syncer, 20*time.Millisecond, discard())
	s.Start(context.Background())

	waitFor(t, func() bool { return syncer.count() >= 1 })
	s.Stop()
	s.Stop() // second call must not panic or hang

	pushed := syncer.count()
	time.Sleep(60 * time.Millisecond)
	if syncer.count() != pushed {
		t.Error("scheduler kept ticking after Stop")
	}
}

func TestSchedulerStopWithoutStartReturns(t *testing.T) {
	e := newTestEngine(&fakeProductStore{}, &fakeHistoryStore{}, date(2024, 6, 10))
	s := NewScheduler(e, &countingSync{result: SyncResult{Success: true}}, time.Hour, discard())

	returned := make(chan struct{})
	go func() {
		s.Stop()
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Stop hung without a prior Start")
	}
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	e := newTestEngine(&fakeProductStore{}, &fakeHistoryStore{}, date(2024, 6, 10))
	syncer := &countingSync{result: SyncResult{Success: true}}

	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(e, syncer, 20*time.Millisecond, discard())
	s.Start(ctx)

	waitFor(t, func() bool { return syncer.count() >= 1 })
	cancel()

	waitFor(t, func() bool {
		select {
		case <-s.done:
			return true
		default:
			return false
		}
	})
}
