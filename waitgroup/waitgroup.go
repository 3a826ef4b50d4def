// Package waitgroup implements the single-counter phase barrier used
// to join a batch of independent jobs without a condition variable or
// OS-level parking.
//
// One atomic counter: Add/Done adjust it, Wait spins until it hits
// zero. Go's sync.WaitGroup already does this, but it parks goroutines
// on the runtime's semaphore implementation rather than busy-spinning,
// so it isn't a drop-in replacement for the spin-only contract this
// module's other components (ring, scheduler) are built around.
package waitgroup

import (
	"sync/atomic"

	"github.com/seakerOner/seakcutils/ring"
)

// WaitGroup is a spin-wait phase barrier backed by a single counter.
// The zero value is not usable; construct with New.
type WaitGroup struct {
	count atomic.Int64
}

// New creates a WaitGroup with its counter initialized to n.
func New(n int64) *WaitGroup {
	wg := &WaitGroup{}
	wg.count.Store(n)
	return wg
}

// Add adjusts the counter by n. n may be negative.
func (w *WaitGroup) Add(n int64) {
	w.count.Add(n)
}

// Done decrements the counter by one.
func (w *WaitGroup) Done() {
	w.count.Add(-1)
}

// Wait spins until the counter reaches zero. Reusing a WaitGroup after
// its counter has returned to zero is safe only once every waiter from
// the previous phase has observed the zero and returned.
func (w *WaitGroup) Wait() {
	for w.count.Load() != 0 {
		ring.Relax()
	}
}

// Count reports the current counter value, mainly for tests and
// diagnostics.
func (w *WaitGroup) Count() int64 {
	return w.count.Load()
}
