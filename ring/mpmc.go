// mpmc.go — Multiple-Producer/Multiple-Consumer bounded ring.
//
// The union of mpsc.go's FAA-cursor producer side and spmc.go's
// FAA-cursor consumer side. This is the ring a worker pool's dispatch
// path depends on: many producers submitting work, many workers racing
// to claim it.

package ring

import "sync/atomic"

// MPMC is a fixed-capacity multiple-producer/multiple-consumer ring.
type MPMC struct {
	producer producerCursor
	consumer consumerCursor

	slots    []seqSlot
	buf      []byte
	capacity uint64
	elemSize uint64
	st       atomic.Uint32

	producersAlive atomic.Int64
	consumersAlive atomic.Int64
}

// NewMPMC allocates a ring of capacity elements, each elemSize bytes.
func NewMPMC(capacity, elemSize int) (*MPMC, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if elemSize <= 0 {
		return nil, ErrInvalidElemSize
	}
	r := &MPMC{
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

func (r *MPMC) isClosed() bool { return state(r.st.Load()) == closedState }

// Close is sticky: once closed, it stays closed.
func (r *MPMC) Close() { r.st.Store(uint32(closedState)) }

// IsClosed reports the ring's lifecycle state.
func (r *MPMC) IsClosed() bool { return r.isClosed() }

// Destroy closes the ring, waits for every outstanding producer and
// consumer to close, then frees the backing storage.
func (r *MPMC) Destroy() {
	r.Close()
	for r.producersAlive.Load() != 0 || r.consumersAlive.Load() != 0 {
		cpuRelax()
	}
	r.slots = nil
	r.buf = nil
}

// MPMCSender is one of possibly many producer handles onto an MPMC
// ring.
type MPMCSender struct {
	r      *MPMC
	closed atomic.Bool
}

// GetSender returns a new producer handle, incrementing the ring's
// live-producer count.
func (r *MPMC) GetSender() *MPMCSender {
	r.producersAlive.Add(1)
	return &MPMCSender{r: r}
}

// MPMCReceiver is one of possibly many consumer handles onto an MPMC
// ring.
type MPMCReceiver struct {
	r      *MPMC
	closed atomic.Bool
}

// GetReceiver returns a new consumer handle, incrementing the ring's
// live-consumer count.
func (r *MPMC) GetReceiver() *MPMCReceiver {
	r.consumersAlive.Add(1)
	return &MPMCReceiver{r: r}
}

// CloseSender marks the sender handle closed and decrements the
// ring's live-producer count.
func (s *MPMCSender) CloseSender() {
	if s.closed.CompareAndSwap(false, true) {
		s.r.producersAlive.Add(-1)
	}
}

// CloseReceiver marks the receiver handle closed and decrements the
// ring's live-consumer count.
func (c *MPMCReceiver) CloseReceiver() {
	if c.closed.CompareAndSwap(false, true) {
		c.r.consumersAlive.Add(-1)
	}
}

// Send publishes e at the next producer cursor, spinning until the
// target slot is free.
//
//go:nosplit
//go:inline
//go:registerparams
func (s *MPMCSender) Send(e []byte) Code {
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

// TrySend is Send's non-blocking sibling: it reports Full instead of
// spinning when the target slot isn't free yet. The scheduler and
// worker pool never use it (they rely on Send's bounded spin), but a
// caller that wants backpressure instead of a stall can.
//
//go:nosplit
//go:inline
//go:registerparams
func (s *MPMCSender) TrySend(e []byte) Code {
	if s == nil || e == nil {
		return NullArg
	}
	if s.closed.Load() {
		return Closed
	}
	r := s.r

	for {
		p := atomic.LoadUint64(&r.producer.head)
		slot := &r.slots[p%r.capacity]
		seq := loadAcquireUint64(&slot.seq)

		switch {
		case seq == p:
			if !atomic.CompareAndSwapUint64(&r.producer.head, p, p+1) {
				continue
			}
			off := (p % r.capacity) * r.elemSize
			copy(r.buf[off:off+r.elemSize], e)
			storeReleaseUint64(&slot.seq, p+1)
			return Ok
		case seq < p:
			return Full
		default:
			cpuRelax()
		}
	}
}

// Recv consumes the next message in FAA-win order, spinning until its
// slot is published.
//
//go:nosplit
//go:inline
//go:registerparams
func (c *MPMCReceiver) Recv(out []byte) Code {
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
