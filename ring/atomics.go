// atomics.go
//
// Acquire/release helpers shared by every ring variant. sync/atomic
// already emits the correct barriers on every port Go supports, so
// there's no architecture-specific fast path here — only cpuRelax needs
// one, because the pause hint itself has no portable API.

package ring

import "sync/atomic"

// loadAcquireUint64 is an acquire load of *p.
func loadAcquireUint64(p *uint64) uint64 {
	return atomic.LoadUint64(p)
}

// storeReleaseUint64 is a release store to *p.
func storeReleaseUint64(p *uint64, v uint64) {
	atomic.StoreUint64(p, v)
}
