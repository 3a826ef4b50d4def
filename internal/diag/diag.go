// Package diag holds the module's one shared diagnostic logging
// helper. Every hot path in this module (ring sends/recvs, arena
// allocs, scheduler dispatch) logs nothing at all — logging belongs
// only to setup and teardown code, where an occasional allocation is
// not a concern.
package diag

import "log"

// Drop logs a non-fatal error encountered on a setup or teardown path.
// If err is nil it logs prefix alone, useful as a cheap trace marker.
func Drop(prefix string, err error) {
	if err != nil {
		log.Printf("%s: %v", prefix, err)
	} else {
		log.Print(prefix)
	}
}
