// Package scheduler implements the dependency-aware job graph on top
// of a fixed worker pool: spawn/then/chain/wait build a DAG of
// single-successor JobHandles, an admission gate and a drain barrier
// protect the job arena's epoch resets, and workers self-dispatch
// continuations the moment their last predecessor finishes.
package scheduler

import (
	"sync/atomic"

	"github.com/seakerOner/seakcutils/pool"
	"github.com/seakerOner/seakcutils/ring"
)

const (
	gateClosed uint32 = 0
	gateOpen   uint32 = 1
)

// Scheduler is a dependency-aware job graph running atop a *pool.Pool.
// One instance is meant to be spawned per pool, as an explicit value
// rather than global state.
type Scheduler struct {
	pool  *pool.Pool
	arena *jobArena

	acceptingJobs      atomic.Uint32
	activeJobs         atomic.Int64
	jobsCompletedEpoch atomic.Int64
}

// SpawnScheduler wires a Scheduler on top of an already-initialized
// pool. The pool must not be shared with unrelated Execute callers:
// the scheduler's own runStep jobs and any caller's general-purpose
// jobs would otherwise contend for the same worker goroutines without
// any harm to correctness, but that's rarely what's wanted.
func SpawnScheduler(p *pool.Pool) *Scheduler {
	s := &Scheduler{
		pool:  p,
		arena: newJobArena(),
	}
	s.acceptingJobs.Store(gateOpen)
	return s
}

// ShutdownScheduler closes admission, drains every active job, resets
// the arena, and tears down the underlying pool. Draining before the
// pool's ring closes is what lets workers keep self-dispatching
// continuations right up to the end without racing shutdown.
func (s *Scheduler) ShutdownScheduler() {
	s.acceptingJobs.Store(gateClosed)
	for s.activeJobs.Load() != 0 {
		ring.Relax()
	}
	s.pool.Shutdown()
}

// Spawn allocates a JobHandle for fn(ctx), ready to run (unfinished
// starts at 1), but does not enqueue it. The job is not in the ring
// until Then, Chain, ChainArr, or Wait schedules it.
func (s *Scheduler) Spawn(fn func(any), ctx any) *JobHandle {
	for s.acceptingJobs.Load() == gateClosed {
		ring.Relax()
	}
	s.activeJobs.Add(1)

	j := s.arena.alloc()
	j.fn = fn
	j.ctx = ctx
	j.unfinished.Store(1)
	j.continuation = nil
	return j
}

// Then links next as first's sole continuation and enqueues first.
// next will not run until first's execution decrements its predecessor
// count to 1.
func (s *Scheduler) Then(first, next *JobHandle) {
	first.continuation = next
	next.unfinished.Add(1)
	s.schedule(first, false)
}

// Chain pairwise-links jobs[i] -> jobs[i+1] and enqueues jobs[0]. Every
// job but the last must not already carry a continuation: the link is
// single-valued, same as Then.
func (s *Scheduler) Chain(jobs ...*JobHandle) {
	s.ChainArr(jobs)
}

// ChainArr is the slice form of Chain.
func (s *Scheduler) ChainArr(jobs []*JobHandle) {
	for i := 0; i < len(jobs)-1; i++ {
		jobs[i].continuation = jobs[i+1]
		jobs[i+1].unfinished.Add(1)
	}
	if len(jobs) > 0 {
		s.schedule(jobs[0], false)
	}
}

// Wait enqueues j for execution. Despite the name it does not block
// the caller — it is this module's scheduling verb for a job with no
// predecessor to enqueue it on completion.
func (s *Scheduler) Wait(j *JobHandle) {
	s.schedule(j, false)
}

// schedule sends j into the dispatch ring unless it is already
// retired. viaWorkerSelf distinguishes a worker's own continuation
// dispatch from an external Spawn-path caller; both paths reach the
// same underlying MPMC send.
func (s *Scheduler) schedule(j *JobHandle, viaWorkerSelf bool) {
	if j.unfinished.Load() == 0 {
		return
	}
	if viaWorkerSelf {
		s.pool.Dispatch().Submit(s.runStep, j)
	} else {
		s.pool.Execute(s.runStep, j)
	}
}

// runStep is the worker body invoked once per dequeued JobHandle.
func (s *Scheduler) runStep(arg any) {
	j := arg.(*JobHandle)

	if j.unfinished.Load() != 1 {
		// Dropped at dispatch: an outstanding predecessor hasn't
		// finished yet. Whichever one finishes last re-enqueues j.
		return
	}

	j.fn(j.ctx)
	s.jobsCompletedEpoch.Add(1)
	j.unfinished.Add(-1)

	cont := j.continuation
	s.activeJobs.Add(-1)

	if cont != nil {
		if cont.unfinished.Add(-1) == 1 {
			s.schedule(cont, true)
		}
	} else {
		s.healthCheck()
	}
}

// healthCheck triggers an epoch reset once the arena's completion
// count nears MaxJobs. It must only ever be called from outside the
// drain barrier it spins on, which is why runStep decrements this
// job's own activeJobs contribution before calling it.
func (s *Scheduler) healthCheck() {
	if s.jobsCompletedEpoch.Load() <= resetThreshold {
		return
	}
	s.acceptingJobs.Store(gateClosed)
	for s.activeJobs.Load() != 0 {
		ring.Relax()
	}
	s.arena.reset()
	s.jobsCompletedEpoch.Store(0)
	s.acceptingJobs.Store(gateOpen)
}
