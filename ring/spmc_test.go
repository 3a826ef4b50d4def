// spmc_test.go
//
// Correctness suite for the SPMC ring: one producer, many consumers
// racing fetch-and-add on the shared tail. Checks exactly-once delivery
// across consumers and close propagation to blocked receivers.

package ring

import (
	"encoding/binary"
	"sync"
	"testing"
)

func TestSPMCExactlyOnceDelivery(t *testing.T) {
	const (
		consumers = 8
		total     = 80_000
	)

	r, err := NewSPMC(256, 8)
	if err != nil {
		t.Fatalf("NewSPMC: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1 + consumers)

	go func() {
		defer wg.Done()
		s := r.GetSender()
		defer s.CloseSender()
		for i := uint64(0); i < total; i++ {
			for s.Send(u64b(i)) == Closed {
			}
		}
	}()

	var mu sync.Mutex
	seen := make(map[uint64]int, total)
	for c := 0; c < consumers; c++ {
		go func() {
			defer wg.Done()
			recv := r.GetReceiver()
			defer recv.CloseReceiver()
			out := make([]byte, 8)
			for {
				code := recv.Recv(out)
				if code == Closed {
					return
				}
				v := binary.LittleEndian.Uint64(out)
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	// Drain deterministically: wait for all `total` messages to be
	// accounted for, then close so the consumers' blocking Recv calls
	// unblock with Closed and every goroutine in wg returns.
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n == total {
			break
		}
		cpuRelax()
	}
	r.Close()
	wg.Wait()
	r.Destroy()

	if len(seen) != total {
		t.Fatalf("saw %d distinct messages, want %d", len(seen), total)
	}
	for v, n := range seen {
		if n != 1 {
			t.Fatalf("message %d delivered %d times, want 1", v, n)
		}
	}
}

func TestSPMCCloseUnblocksReceivers(t *testing.T) {
	r, err := NewSPMC(4, 8)
	if err != nil {
		t.Fatalf("NewSPMC: %v", err)
	}
	recv := r.GetReceiver()

	done := make(chan Code, 1)
	go func() {
		out := make([]byte, 8)
		done <- recv.Recv(out)
	}()

	r.Close()
	if code := <-done; code != Closed {
		t.Fatalf("Recv() after Close = %v, want Closed", code)
	}
}
