//go:build !linux

package pool

// pinWorker is a no-op outside linux: Darwin and Windows don't expose
// a comparable thread-affinity syscall through x/sys in a portable way.
func pinWorker(id int) {}
