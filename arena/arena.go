// Package arena implements the epoch-reset segmented bump allocator
// shared by every component in this module that needs concurrent,
// allocation-cheap, lifetime-bounded storage — most notably the job
// scheduler's JobHandle records.
//
// Storage is a sparse array of fixed-capacity regions, a monotonically
// increasing count that maps onto region/offset pairs, and an epoch
// counter that invalidates every previously returned slice in O(1) by
// bumping a generation number instead of freeing anything.
//
// A new region is allocated and stamped fully before it is published by
// CAS-bumping regionsInUse, so regionsInUse > r is only ever true once
// the region is actually usable (see DESIGN.md for why this matters).
package arena

import (
	"sync/atomic"

	"github.com/seakerOner/seakcutils/ring"
)

// Code re-exports the shared ring return-code vocabulary so callers
// never need to import the ring package just to check a result.
type Code = ring.Code

const (
	Ok      = ring.Ok
	NullArg = ring.NullArg
)

// defaultMaxRegions is used when the caller passes maxRegions == 0.
const defaultMaxRegions = 1024

// region is one fixed-capacity segment of the arena's storage.
type region struct {
	data     []byte
	epoch    atomic.Uint64
	clearing atomic.Uint32
}

// ensureEpoch lazily zeroes data and stamps epoch the first time this
// region is touched in a new epoch. Concurrent callers serialize on
// the clearing token so the zero-fill itself is never raced.
func (r *region) ensureEpoch(cur uint64) {
	for {
		if r.epoch.Load() >= cur {
			return
		}
		if r.clearing.CompareAndSwap(0, 1) {
			if r.epoch.Load() < cur {
				clear(r.data)
				r.epoch.Store(cur)
			}
			r.clearing.Store(0)
			return
		}
		ring.Relax()
	}
}

// Arena is a fixed-element-size, epoch-reset bump allocator spread
// across up to maxRegions fixed-capacity regions.
type Arena struct {
	elemSize       int
	regionCapacity int
	maxRegions     int

	currentEpoch atomic.Uint64
	count        atomic.Uint64
	regionsInUse atomic.Uint64

	regions []*region
}

// New creates an arena of elements sized elemSize, each region holding
// regionCapacity of them, with at most maxRegions live at once.
// maxRegions == 0 defaults to 1024. Region 0 is allocated eagerly.
func New(elemSize, regionCapacity, maxRegions int) *Arena {
	if elemSize <= 0 {
		panic("arena: elemSize must be > 0")
	}
	if regionCapacity <= 0 {
		panic("arena: regionCapacity must be > 0")
	}
	if maxRegions == 0 {
		maxRegions = defaultMaxRegions
	}

	a := &Arena{
		elemSize:       elemSize,
		regionCapacity: regionCapacity,
		maxRegions:     maxRegions,
		regions:        make([]*region, maxRegions),
	}

	first := &region{data: make([]byte, regionCapacity*elemSize)}
	first.epoch.Store(a.currentEpoch.Load())
	a.regions[0] = first
	a.regionsInUse.Store(1)

	return a
}

// ensureRegion guarantees region r exists and is current for
// a.currentEpoch, allocating or lazily re-clearing it as needed. It
// aborts the process if r exceeds the configured region limit — a
// hard, fail-fast capacity bound rather than an unbounded allocator.
func (a *Arena) ensureRegion(r int) {
	if r >= a.maxRegions {
		panic("arena: region index exceeds configured maximum region count")
	}

	used := int(a.regionsInUse.Load())
	if r < used {
		a.regions[r].ensureEpoch(a.currentEpoch.Load())
		return
	}

	if a.regionsInUse.CompareAndSwap(uint64(used), uint64(r+1)) {
		nr := &region{data: make([]byte, a.regionCapacity*a.elemSize)}
		nr.epoch.Store(a.currentEpoch.Load())
		a.regions[r] = nr
		return
	}

	for int(a.regionsInUse.Load()) <= r {
		ring.Relax()
	}
}

// slot returns the byte range backing logical index i, ensuring its
// region exists first.
func (a *Arena) slot(i int) []byte {
	region := i / a.regionCapacity
	offset := (i % a.regionCapacity) * a.elemSize
	a.ensureRegion(region)
	return a.regions[region].data[offset : offset+a.elemSize]
}

// Alloc reserves the next element slot and returns its bytes,
// uninitialized (or zeroed, if this is the slot's first touch since
// the last reset touching its region).
func (a *Arena) Alloc() []byte {
	i := a.count.Add(1) - 1
	return a.slot(int(i))
}

// Add reserves the next element slot and copies val into it. Returns
// NullArg if val is nil or the wrong size.
func (a *Arena) Add(val []byte) Code {
	if val == nil || len(val) != a.elemSize {
		return NullArg
	}
	dst := a.Alloc()
	copy(dst, val)
	return Ok
}

// Get returns the bytes at logical index i, or nil if i is out of the
// currently allocated range.
func (a *Arena) Get(i int) []byte {
	count := a.count.Load()
	if i < 0 || uint64(i) >= count {
		return nil
	}
	region := i / a.regionCapacity
	offset := (i % a.regionCapacity) * a.elemSize
	return a.regions[region].data[offset : offset+a.elemSize]
}

// GetLast returns the most recently allocated element's bytes, or nil
// if the arena (in its current epoch) is empty.
func (a *Arena) GetLast() []byte {
	count := a.count.Load()
	if count == 0 {
		return nil
	}
	return a.Get(int(count - 1))
}

// Reset advances the epoch and rewinds count to zero in O(1). Every
// pointer/slice returned by a prior Alloc/Add/Get/GetLast is invalid
// the moment Reset returns; callers must be externally quiescent
// before calling it.
func (a *Arena) Reset() {
	a.currentEpoch.Add(1)
	a.count.Store(0)
}

// Free releases every allocated region. The arena must not be used
// afterward.
func (a *Arena) Free() {
	used := int(a.regionsInUse.Load())
	for i := 0; i < used; i++ {
		a.regions[i] = nil
	}
	a.regions = nil
	a.count.Store(0)
	a.regionsInUse.Store(0)
}

// ElemSize returns the fixed per-element size this arena was created
// with.
func (a *Arena) ElemSize() int { return a.elemSize }

// CurrentEpoch returns the arena's current generation counter.
func (a *Arena) CurrentEpoch() uint64 { return a.currentEpoch.Load() }
