// scheduler_test.go
//
// Covers a chained A->B->C run, fan-in via two Then calls onto a shared
// successor, the drop-at-dispatch re-enqueue edge case, and a smoke
// test for the epoch-reset health check.

package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seakerOner/seakcutils/pool"
)

func newTestScheduler(workers int) (*Scheduler, *pool.Pool) {
	p := pool.Init(workers)
	return SpawnScheduler(p), p
}

func TestChainRunsInOrder(t *testing.T) {
	s, _ := newTestScheduler(4)

	var mu sync.Mutex
	var order []string
	record := func(name string) func(any) {
		return func(any) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	done := make(chan struct{})
	a := s.Spawn(record("A"), nil)
	b := s.Spawn(record("B"), nil)
	c := s.Spawn(func(any) {
		record("C")(nil)
		close(done)
	}, nil)

	s.Chain(a, b, c)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("chain never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "A" || order[1] != "B" || order[2] != "C" {
		t.Fatalf("execution order = %v, want [A B C]", order)
	}

	s.ShutdownScheduler()
}

func TestFanInViaTwoThenCalls(t *testing.T) {
	s, _ := newTestScheduler(4)

	var ran atomic.Int64
	done := make(chan struct{})

	joined := s.Spawn(func(any) {
		if ran.Add(1) != 1 {
			t.Error("joined job ran more than once")
		}
		close(done)
	}, nil)

	a := s.Spawn(func(any) {}, nil)
	b := s.Spawn(func(any) {}, nil)

	s.Then(a, joined)
	s.Then(b, joined)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fan-in join never ran")
	}
	if got := ran.Load(); got != 1 {
		t.Fatalf("joined job ran %d times, want exactly 1", got)
	}

	s.ShutdownScheduler()
}

func TestWaitSchedulesWithoutBlocking(t *testing.T) {
	s, _ := newTestScheduler(2)
	done := make(chan struct{})

	j := s.Spawn(func(any) { close(done) }, nil)
	s.Wait(j)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait-scheduled job never ran")
	}
	s.ShutdownScheduler()
}

func TestDropAtDispatchStillResolvesViaLastPredecessor(t *testing.T) {
	// A deliberately wide fan-in: the successor's unfinished count is
	// bumped by every predecessor's Then call before any predecessor
	// actually executes, guaranteeing the successor, if it were ever
	// observed by a worker early, would be dropped-at-dispatch. Since
	// nothing schedules it until the count reaches 1, this just
	// exercises the ordinary last-writer-enqueues path under real
	// contention.
	const fanIn = 50
	s, _ := newTestScheduler(8)

	var finished atomic.Int64
	done := make(chan struct{})

	successor := s.Spawn(func(any) {
		finished.Add(1)
		close(done)
	}, nil)

	preds := make([]*JobHandle, fanIn)
	for i := range preds {
		preds[i] = s.Spawn(func(any) {}, nil)
	}
	for _, p := range preds {
		s.Then(p, successor)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fan-in successor never resolved")
	}
	if got := finished.Load(); got != 1 {
		t.Fatalf("successor ran %d times, want exactly 1", got)
	}

	s.ShutdownScheduler()
}

func TestHealthCheckResetsEpochOnceThresholdIsCrossed(t *testing.T) {
	// Driving jobsCompletedEpoch to resetThreshold through MaxJobs real
	// job runs isn't practical in a unit test; poke the counter
	// directly (same package, white-box) and verify a single
	// no-continuation job completion triggers the documented reset
	// sequence without deadlocking on its own activeJobs contribution.
	s, _ := newTestScheduler(2)
	s.jobsCompletedEpoch.Store(resetThreshold + 1)

	epochBefore := s.arena.currentEpoch.Load()
	done := make(chan struct{})
	j := s.Spawn(func(any) { close(done) }, nil)
	s.Wait(j)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran; health check likely deadlocked on activeJobs")
	}

	deadline := time.Now().Add(time.Second)
	for s.arena.currentEpoch.Load() == epochBefore {
		if time.Now().After(deadline) {
			t.Fatal("epoch never advanced after crossing resetThreshold")
		}
		time.Sleep(time.Millisecond)
	}
	if got := s.jobsCompletedEpoch.Load(); got != 0 {
		t.Fatalf("jobsCompletedEpoch after reset = %d, want 0", got)
	}
	if s.acceptingJobs.Load() != gateOpen {
		t.Fatal("acceptingJobs left closed after reset")
	}

	s.ShutdownScheduler()
}

func TestJobArenaEpochResetInvalidatesStaleContent(t *testing.T) {
	a := newJobArena()
	h1 := a.alloc()
	h1.fn = func(any) {}
	h1.unfinished.Store(1)

	a.reset()

	h2 := a.alloc()
	if h2.fn != nil {
		t.Fatal("slot reused across an epoch reset was not lazily cleared")
	}
	if h2.unfinished.Load() != 0 {
		t.Fatalf("unfinished after reset = %d, want 0", h2.unfinished.Load())
	}
}
