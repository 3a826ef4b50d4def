//go:build riscv64 && !noasm

// relax_riscv64.go declares the riscv64 pause hint; the implementation
// lives in relax_riscv64.s and emits the Zihintpause PAUSE hint.

package ring

// cpuRelax executes the RISC-V Zihintpause PAUSE hint.
//
//go:noescape
func cpuRelax()
