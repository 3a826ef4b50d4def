// spmc.go — Single-Producer/Multiple-Consumer bounded ring.
//
// One producer advances the shared head with a relaxed load (the
// single-producer rule is the caller's responsibility, not enforced
// here), many consumers race a fetch-and-add on the shared tail. Each
// slot's sequence number is the sole synchronizer.

package ring

import "sync/atomic"

type seqSlot struct {
	seq uint64
	_   [CacheLine - 8]byte
}

// SPMC is a fixed-capacity single-producer/multiple-consumer ring.
type SPMC struct {
	producer producerCursor
	consumer consumerCursor

	slots    []seqSlot
	buf      []byte
	capacity uint64
	elemSize uint64
	st       atomic.Uint32

	consumersAlive atomic.Int64
}

// NewSPMC allocates a ring of capacity elements, each elemSize bytes.
func NewSPMC(capacity, elemSize int) (*SPMC, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if elemSize <= 0 {
		return nil, ErrInvalidElemSize
	}
	r := &SPMC{
		slots:    make([]seqSlot, capacity),
		buf:      make([]byte, capacity*elemSize),
		capacity: uint64(capacity),
		elemSize: uint64(elemSize),
	}
	for i := range r.slots {
		r.slots[i].seq = uint64(i)
	}
	return r, nil
}

func (r *SPMC) isClosed() bool { return state(r.st.Load()) == closedState }

// Close is sticky: once closed, it stays closed.
func (r *SPMC) Close() { r.st.Store(uint32(closedState)) }

// IsClosed reports the ring's lifecycle state.
func (r *SPMC) IsClosed() bool { return r.isClosed() }

// Destroy closes the ring, waits for every outstanding receiver to
// close, then frees the backing storage.
func (r *SPMC) Destroy() {
	r.Close()
	for r.consumersAlive.Load() != 0 {
		cpuRelax()
	}
	r.slots = nil
	r.buf = nil
}

// SPMCSender is the single producer's handle onto an SPMC ring.
type SPMCSender struct {
	r      *SPMC
	closed atomic.Bool
}

// GetSender returns the producer handle. Only one should ever be used
// concurrently; spmc_send's FAA on head is wait-free, not safe for
// concurrent producers.
func (r *SPMC) GetSender() *SPMCSender {
	return &SPMCSender{r: r}
}

// SPMCReceiver is one of possibly many consumer handles onto an SPMC
// ring.
type SPMCReceiver struct {
	r      *SPMC
	closed atomic.Bool
}

// GetReceiver returns a new consumer handle, incrementing the ring's
// live-consumer count.
func (r *SPMC) GetReceiver() *SPMCReceiver {
	r.consumersAlive.Add(1)
	return &SPMCReceiver{r: r}
}

// CloseSender marks the sender handle closed. It does not close the
// ring itself.
func (s *SPMCSender) CloseSender() {
	s.closed.Store(true)
}

// CloseReceiver marks the receiver handle closed and decrements the
// ring's live-consumer count, unblocking a pending Destroy.
func (c *SPMCReceiver) CloseReceiver() {
	if c.closed.CompareAndSwap(false, true) {
		c.r.consumersAlive.Add(-1)
	}
}

// Send publishes e at the next producer cursor, spinning until the
// target slot is free. Returns Closed if the ring closes while
// spinning or if this handle is already closed.
//
//go:nosplit
//go:inline
//go:registerparams
func (s *SPMCSender) Send(e []byte) Code {
	if s == nil || e == nil {
		return NullArg
	}
	if s.closed.Load() {
		return Closed
	}
	r := s.r

	p := atomic.LoadUint64(&r.producer.head)
	atomic.StoreUint64(&r.producer.head, p+1)
	slot := &r.slots[p%r.capacity]

	for loadAcquireUint64(&slot.seq) != p {
		if r.isClosed() {
			return Closed
		}
		cpuRelax()
	}

	off := (p % r.capacity) * r.elemSize
	copy(r.buf[off:off+r.elemSize], e)
	storeReleaseUint64(&slot.seq, p+1)
	return Ok
}

// Recv consumes the next message in FAA-win order, spinning until its
// slot is published. Returns Closed if the ring closes while spinning
// or if this handle is already closed.
//
//go:nosplit
//go:inline
//go:registerparams
func (c *SPMCReceiver) Recv(out []byte) Code {
	if c == nil || out == nil {
		return NullArg
	}
	if c.closed.Load() {
		return Closed
	}
	r := c.r

	pos := atomic.AddUint64(&r.consumer.tail, 1) - 1
	slot := &r.slots[pos%r.capacity]

	for loadAcquireUint64(&slot.seq) != pos+1 {
		if r.isClosed() {
			return Closed
		}
		cpuRelax()
	}

	off := (pos % r.capacity) * r.elemSize
	copy(out, r.buf[off:off+r.elemSize])
	storeReleaseUint64(&slot.seq, pos+r.capacity)
	return Ok
}
