// mpmc_test.go
//
// Correctness suite for the MPMC ring, including the destruction
// barrier waiting on all 8 endpoint handles and the capacity-1
// boundary case.

package ring

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"
)

func TestMPMCExactlyOnceDelivery(t *testing.T) {
	const (
		producers = 4
		consumers = 4
		perProd   = 20_000
		total     = producers * perProd
	)

	r, err := NewMPMC(256, 8)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}

	var pwg sync.WaitGroup
	pwg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(base uint64) {
			defer pwg.Done()
			s := r.GetSender()
			defer s.CloseSender()
			for i := uint64(0); i < perProd; i++ {
				for s.Send(u64b(base+i)) == Full {
				}
			}
		}(uint64(p) * perProd)
	}

	var mu sync.Mutex
	seen := make(map[uint64]int, total)
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer cwg.Done()
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

	pwg.Wait()
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
	cwg.Wait()
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

func TestMPMCDestructionBarrier(t *testing.T) {
	r, err := NewMPMC(16, 8)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}

	const endpoints = 4
	senders := make([]*MPMCSender, endpoints)
	receivers := make([]*MPMCReceiver, endpoints)
	for i := 0; i < endpoints; i++ {
		senders[i] = r.GetSender()
		receivers[i] = r.GetReceiver()
	}

	r.Close()

	done := make(chan struct{})
	go func() {
		r.Destroy()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Destroy returned before any endpoint closed")
	case <-time.After(10 * time.Millisecond):
	}

	for i := 0; i < endpoints; i++ {
		senders[i].CloseSender()
		receivers[i].CloseReceiver()
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Destroy did not return after all endpoints closed")
	}
}

func TestMPMCCapacityOne(t *testing.T) {
	r, err := NewMPMC(1, 8)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}
	s := r.GetSender()
	recv := r.GetReceiver()

	if code := s.TrySend(u64b(1)); code != Ok {
		t.Fatalf("TrySend() = %v, want Ok", code)
	}
	if code := s.TrySend(u64b(2)); code != Full {
		t.Fatalf("TrySend() on full capacity-1 ring = %v, want Full", code)
	}

	out := make([]byte, 8)
	if code := recv.Recv(out); code != Ok {
		t.Fatalf("Recv() = %v, want Ok", code)
	}
	if got := binary.LittleEndian.Uint64(out); got != 1 {
		t.Fatalf("Recv() = %d, want 1", got)
	}
}

func TestMPMCSendAfterCloseFails(t *testing.T) {
	r, err := NewMPMC(4, 8)
	if err != nil {
		t.Fatalf("NewMPMC: %v", err)
	}
	s := r.GetSender()
	r.Close()
	if code := s.Send(u64b(1)); code != Closed {
		t.Fatalf("Send() after Close = %v, want Closed", code)
	}
	if code := s.TrySend(u64b(1)); code != Closed {
		t.Fatalf("TrySend() after Close = %v, want Closed", code)
	}
}
