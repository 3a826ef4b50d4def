// dispatch.go
//
// The pool's internal dispatch ring. Same bounded lock-free MPMC
// protocol as the ring package (fetch-and-add cursors, per-slot
// sequence numbers gating producer/consumer visibility), reimplemented
// over a typed []job slice instead of raw bytes: job values carry a
// Go func and an arbitrary ctx, which the byte-oriented ring package
// cannot hold without defeating the garbage collector.

package pool

import (
	"sync/atomic"

	"github.com/seakerOner/seakcutils/ring"
)

type dispatchSlot struct {
	seq uint64
	val job
}

// dispatchRing is an MPMC ring of job values.
type dispatchRing struct {
	head uint64
	_    [ring.CacheLine - 8]byte
	tail uint64
	_    [ring.CacheLine - 8]byte

	slots    []dispatchSlot
	capacity uint64
	st       atomic.Uint32
}

func newDispatchRing(capacity int) *dispatchRing {
	if capacity <= 0 {
		capacity = 1
	}
	r := &dispatchRing{
		slots:    make([]dispatchSlot, capacity),
		capacity: uint64(capacity),
	}
	for i := range r.slots {
		r.slots[i].seq = uint64(i)
	}
	return r
}

const (
	dispatchOpen   = 0
	dispatchClosed = 1
)

func (r *dispatchRing) isClosed() bool {
	return r.st.Load() == dispatchClosed
}

func (r *dispatchRing) close() {
	r.st.Store(dispatchClosed)
}

// send blocks (spinning) until the job is accepted or the ring closes,
// in which case it drops the job silently — callers that need delivery
// guarantees on a closing pool must check isClosed before calling.
func (r *dispatchRing) send(j job) {
	for {
		if r.isClosed() {
			return
		}
		head := atomic.LoadUint64(&r.head)
		slot := &r.slots[head%r.capacity]
		seq := atomic.LoadUint64(&slot.seq)

		switch {
		case seq == head:
			if atomic.CompareAndSwapUint64(&r.head, head, head+1) {
				slot.val = j
				atomic.StoreUint64(&slot.seq, head+1)
				return
			}
		case seq < head:
			// Ring momentarily full; fall through to relax.
		default:
			// Another producer claimed this slot first; retry.
		}
		ring.Relax()
	}
}

type dispatchReceiver struct {
	r *dispatchRing
}

func (r *dispatchRing) getReceiver() *dispatchReceiver {
	return &dispatchReceiver{r: r}
}

// closeReceiver is a no-op hook kept symmetric with the ring package's
// endpoint lifecycle; the pool's actual join point is errgroup.Wait in
// Shutdown, not an endpoint count on the ring itself.
func (c *dispatchReceiver) closeReceiver() {}

// recv returns (job, true) on success or (job{}, false) if the ring is
// currently empty. It never blocks indefinitely: the worker loop above
// uses the ring's closed state to decide whether to keep polling or
// return. The empty case still takes the pause hint before returning,
// so a caller re-polling in a tight loop backs off the same as every
// other spin in this module.
func (c *dispatchReceiver) recv() (job, bool) {
	r := c.r
	for {
		tail := atomic.LoadUint64(&r.tail)
		slot := &r.slots[tail%r.capacity]
		seq := atomic.LoadUint64(&slot.seq)

		switch {
		case seq == tail+1:
			if atomic.CompareAndSwapUint64(&r.tail, tail, tail+1) {
				j := slot.val
				atomic.StoreUint64(&slot.seq, tail+r.capacity)
				return j, true
			}
		case seq < tail+1:
			ring.Relax()
			return job{}, false
		default:
			// Another consumer claimed this slot first; retry.
		}
		ring.Relax()
	}
}
