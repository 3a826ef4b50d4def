// config.go
//
// Scheduler-wide sizing constants, grouped into one file rather than
// scattered across the package.

package scheduler

// RegionCapacity is the number of JobHandle slots per arena region.
const RegionCapacity = 4096

// MaxRegions bounds how many regions the job arena may grow to before
// ensureRegion aborts the process.
const MaxRegions = 1024

// MaxJobs is the arena's absolute JobHandle capacity within one epoch.
const MaxJobs = RegionCapacity * MaxRegions

// CacheLine is the assumed coherence-unit size, mirrored from the ring
// package for the scheduler's own hot counters.
const CacheLine = 64

// resetThreshold is how close jobsCompletedEpoch may get to MaxJobs
// before the scheduler forces an epoch reset.
const resetThreshold = MaxJobs - 20
