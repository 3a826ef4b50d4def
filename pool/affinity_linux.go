//go:build linux

package pool

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinWorker locks the calling goroutine to its own OS thread and pins
// that thread to CPU id % NumCPU. Best-effort: an affinity failure
// (e.g. inside a restrictive container) is ignored rather than fatal.
func pinWorker(id int) {
	runtime.LockOSThread()

	n := runtime.NumCPU()
	if n == 0 {
		return
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(id % n)
	_ = unix.SchedSetaffinity(0, &set)
}
