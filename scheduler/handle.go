// handle.go
//
// JobHandle and the arena that owns it. JobHandle carries a Go func
// value, an arbitrary ctx, and a successor pointer — none of which can
// pass safely through the byte-oriented arena package, which the
// garbage collector cannot scan. jobArena reimplements the same
// region/epoch-reset protocol as arena.Arena directly over a typed
// []JobHandle backing store instead, so every slot stays a normal,
// GC-visible Go value reachable by address. The region/epoch mechanics
// mirror arena.Arena exactly; only the element type changes.

package scheduler

import (
	"sync/atomic"

	"github.com/seakerOner/seakcutils/ring"
)

// JobHandle is one scheduled unit of work. It is owned by the
// scheduler's arena and becomes invalid the moment that arena's epoch
// advances past the one it was allocated in.
type JobHandle struct {
	fn  func(any)
	ctx any

	unfinished   atomic.Int64
	continuation *JobHandle
}

type jobRegion struct {
	data     []JobHandle
	epoch    atomic.Uint64
	clearing atomic.Uint32
}

func (r *jobRegion) ensureEpoch(cur uint64) {
	for {
		if r.epoch.Load() >= cur {
			return
		}
		if r.clearing.CompareAndSwap(0, 1) {
			if r.epoch.Load() < cur {
				for i := range r.data {
					r.data[i] = JobHandle{}
				}
				r.epoch.Store(cur)
			}
			r.clearing.Store(0)
			return
		}
		ring.Relax()
	}
}

// jobArena is a fixed-element-size, epoch-reset bump allocator of
// JobHandle values, spread across up to MaxRegions regions of
// RegionCapacity each.
type jobArena struct {
	currentEpoch atomic.Uint64
	count        atomic.Uint64
	regionsInUse atomic.Uint64
	regions      []*jobRegion
}

func newJobArena() *jobArena {
	a := &jobArena{
		regions: make([]*jobRegion, MaxRegions),
	}
	first := &jobRegion{data: make([]JobHandle, RegionCapacity)}
	a.regions[0] = first
	a.regionsInUse.Store(1)
	return a
}

func (a *jobArena) ensureRegion(r int) {
	if r >= MaxRegions {
		panic("scheduler: job arena exceeded its configured region limit")
	}

	used := int(a.regionsInUse.Load())
	if r < used {
		a.regions[r].ensureEpoch(a.currentEpoch.Load())
		return
	}

	if a.regionsInUse.CompareAndSwap(uint64(used), uint64(r+1)) {
		nr := &jobRegion{data: make([]JobHandle, RegionCapacity)}
		nr.epoch.Store(a.currentEpoch.Load())
		a.regions[r] = nr
		return
	}

	for int(a.regionsInUse.Load()) <= r {
		ring.Relax()
	}
}

// alloc reserves the next JobHandle slot and returns a stable pointer
// into its backing region.
func (a *jobArena) alloc() *JobHandle {
	i := a.count.Add(1) - 1
	region := int(i) / RegionCapacity
	offset := int(i) % RegionCapacity
	a.ensureRegion(region)
	return &a.regions[region].data[offset]
}

// reset advances the epoch and rewinds count to zero. Every *JobHandle
// handed out before this call is invalid the instant it returns.
func (a *jobArena) reset() {
	a.currentEpoch.Add(1)
	a.count.Store(0)
}
