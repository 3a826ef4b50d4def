// Package pool implements a fixed-size worker pool draining a shared
// MPMC dispatch ring, so that workers can re-enqueue continuations
// themselves rather than routing them back through the external
// caller.
//
// N long-lived worker goroutines block-receiving off one ring,
// Execute as the external submission path, Shutdown closing the ring
// and joining every worker with golang.org/x/sync/errgroup before
// returning.
package pool

import (
	"runtime"

	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/seakerOner/seakcutils/internal/diag"
)

// job is one unit of dispatch work. It is carried by value through the
// pool's internal ring, which is why its fields are concrete and
// GC-visible rather than routed through the byte-oriented ring package
// used for raw fixed-size payloads elsewhere in this module.
type job struct {
	fn  func(any)
	ctx any
}

// Option configures a Pool at Init time.
type Option func(*config)

type config struct {
	capacity       int
	affinity       bool
	autoGOMAXPROCS bool
}

// WithCapacity overrides the dispatch ring's capacity. Default is
// numWorkers*4.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// WithCPUAffinity pins each worker goroutine's backing OS thread to a
// distinct CPU where the platform supports it (linux/amd64,
// linux/arm64). Elsewhere it is a no-op.
func WithCPUAffinity() Option {
	return func(c *config) { c.affinity = true }
}

// WithAutoGOMAXPROCS calls maxprocs.Set before sizing the pool so that
// a zero numWorkers picks up the container's actual CPU quota instead
// of the host's full core count.
func WithAutoGOMAXPROCS() Option {
	return func(c *config) { c.autoGOMAXPROCS = true }
}

// Pool is a fixed set of worker goroutines draining a shared MPMC
// dispatch ring.
type Pool struct {
	dispatch *dispatchRing
	workers  int
	eg       *errgroup.Group
}

// Init starts n worker goroutines pulling off a shared dispatch ring.
// n <= 0 defaults to runtime.GOMAXPROCS(0).
func Init(n int, opts ...Option) *Pool {
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.autoGOMAXPROCS {
		if _, err := maxprocs.Set(); err != nil {
			// A missing cgroup quota (not a container, or cgroups v1
			// without the expected controller) is not fatal: fall back
			// to the host's GOMAXPROCS as already set by the runtime.
			diag.Drop("pool: maxprocs.Set", err)
		}
	}

	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if cfg.capacity <= 0 {
		cfg.capacity = n * 4
	}

	p := &Pool{
		dispatch: newDispatchRing(cfg.capacity),
		workers:  n,
	}

	var eg errgroup.Group
	p.eg = &eg
	for i := 0; i < n; i++ {
		id := i
		recv := p.dispatch.getReceiver()
		eg.Go(func() error {
			runWorker(id, recv, p.dispatch, cfg.affinity)
			return nil
		})
	}

	return p
}

// Workers reports how many worker goroutines this pool started with.
func (p *Pool) Workers() int { return p.workers }

// Execute submits fn(ctx) for execution on the next available worker.
// It blocks (spinning) if the dispatch ring is momentarily full.
func (p *Pool) Execute(fn func(any), ctx any) {
	p.dispatch.send(job{fn: fn, ctx: ctx})
}

// Dispatch exposes the pool's internal dispatch ring so a job
// scheduler built on top of this pool can have workers re-enqueue
// continuations through their own sender, never the external Execute
// path — the mechanism that keeps a scheduler's `then` chains from
// deadlocking against Execute callers waiting on a full ring.
func (p *Pool) Dispatch() Dispatcher {
	return p.dispatch
}

// Dispatcher is the minimal interface a job scheduler needs to push
// continuations onto a pool's dispatch ring from inside a worker.
type Dispatcher interface {
	Submit(fn func(any), ctx any)
}

// Submit implements Dispatcher.
func (r *dispatchRing) Submit(fn func(any), ctx any) {
	r.send(job{fn: fn, ctx: ctx})
}

// Shutdown closes the dispatch ring and waits for every worker to
// drain it and return.
func (p *Pool) Shutdown() {
	p.dispatch.close()
	_ = p.eg.Wait()
}

func runWorker(id int, recv *dispatchReceiver, ring *dispatchRing, pin bool) {
	if pin {
		pinWorker(id)
	}
	defer recv.closeReceiver()
	for {
		j, ok := recv.recv()
		if ok {
			j.fn(j.ctx)
			continue
		}
		if ring.isClosed() {
			return
		}
	}
}
