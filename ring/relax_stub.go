//go:build (!amd64 && !arm64 && !riscv64) || noasm

// relax_stub.go
//
// Portable fall-back for architectures with no pause hint wired above,
// or when assembly stubs are disabled entirely. Declares cpuRelax as an
// empty function so source compiles unchanged on every target.

package ring

// cpuRelax is a no-op on unsupported targets.
func cpuRelax() {}
