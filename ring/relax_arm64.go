//go:build arm64 && !noasm

// relax_arm64.go declares the arm64 pause hint; the implementation lives
// in relax_arm64.s and emits the YIELD hint instruction.

package ring

// cpuRelax executes the ARMv8 YIELD hint.
//
//go:noescape
func cpuRelax()
