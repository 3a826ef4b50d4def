// mpsc.go — Multiple-Producer/Single-Consumer bounded ring.
//
// Many producers race a fetch-and-add on the shared head; the single
// consumer never blocks — it treats both "no cursor gap" and "slot not
// yet published" as Empty.

package ring

import "sync/atomic"

// MPSC is a fixed-capacity multiple-producer/single-consumer ring.
type MPSC struct {
	producer producerCursor
	consumer consumerCursor

	slots    []seqSlot
	buf      []byte
	capacity uint64
	elemSize uint64
	st       atomic.Uint32

	producersAlive atomic.Int64
}

// NewMPSC allocates a ring of capacity elements, each elemSize bytes.
func NewMPSC(capacity, elemSize int) (*MPSC, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if elemSize <= 0 {
		return nil, ErrInvalidElemSize
	}
	r := &MPSC{
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

func (r *MPSC) isClosed() bool { return state(r.st.Load()) == closedState }

// Close is sticky: once closed, it stays closed.
func (r *MPSC) Close() { r.st.Store(uint32(closedState)) }

// IsClosed reports the ring's lifecycle state.
func (r *MPSC) IsClosed() bool { return r.isClosed() }

// Destroy closes the ring, waits for every outstanding producer to
// close, then frees the backing storage.
func (r *MPSC) Destroy() {
	r.Close()
	for r.producersAlive.Load() != 0 {
		cpuRelax()
	}
	r.slots = nil
	r.buf = nil
}

// MPSCSender is one of possibly many producer handles onto an MPSC
// ring.
type MPSCSender struct {
	r      *MPSC
	closed atomic.Bool
}

// GetSender returns a new producer handle, incrementing the ring's
// live-producer count.
func (r *MPSC) GetSender() *MPSCSender {
	r.producersAlive.Add(1)
	return &MPSCSender{r: r}
}

// MPSCReceiver is the single consumer's handle onto an MPSC ring.
type MPSCReceiver struct {
	r      *MPSC
	closed atomic.Bool
}

// GetReceiver returns the consumer handle.
func (r *MPSC) GetReceiver() *MPSCReceiver {
	return &MPSCReceiver{r: r}
}

// CloseSender marks the sender handle closed and decrements the
// ring's live-producer count, unblocking a pending Destroy.
func (s *MPSCSender) CloseSender() {
	if s.closed.CompareAndSwap(false, true) {
		s.r.producersAlive.Add(-1)
	}
}

// CloseReceiver marks the receiver handle closed. It does not close
// the ring itself.
func (c *MPSCReceiver) CloseReceiver() {
	c.closed.Store(true)
}

// Send publishes e at the next producer cursor, spinning until the
// target slot is free. Returns Closed if the ring closes while
// spinning or if this handle is already closed.
//
//go:nosplit
//go:inline
//go:registerparams
func (s *MPSCSender) Send(e []byte) Code {
	if s == nil || e == nil {
		return NullArg
	}
	if s.closed.Load() {
		return Closed
	}
	r := s.r

	p := atomic.AddUint64(&r.producer.head, 1) - 1
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

// Recv attempts a non-blocking read. It reports Empty both when the
// cursors coincide and when the producer has claimed the slot but not
// yet published it — never spins.
//
//go:nosplit
//go:inline
//go:registerparams
func (c *MPSCReceiver) Recv(out []byte) Code {
	if c == nil || out == nil {
		return NullArg
	}
	if c.closed.Load() {
		return Closed
	}
	r := c.r

	tail := atomic.LoadUint64(&r.consumer.tail)
	head := loadAcquireUint64(&r.producer.head)
	if tail == head {
		return Empty
	}

	slot := &r.slots[tail%r.capacity]
	if loadAcquireUint64(&slot.seq) != tail+1 {
		return Empty
	}

	off := (tail % r.capacity) * r.elemSize
	copy(out, r.buf[off:off+r.elemSize])

	storeReleaseUint64(&slot.seq, tail+r.capacity)
	atomic.StoreUint64(&r.consumer.tail, tail+1)
	return Ok
}
