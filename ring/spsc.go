// spsc.go
//
// Single-producer/single-consumer bounded ring. No per-slot metadata:
// occupancy is derived purely from head-tail, and the slot discipline
// relies entirely on the SPSC contract (exactly one producer, exactly
// one consumer, enforced by convention, not by the type system).
//
// Indexing is plain head%capacity; capacity need not be a power of two.

package ring

import "sync/atomic"

// SPSC is a fixed-capacity single-producer/single-consumer ring of
// elemSize-byte elements.
type SPSC struct {
	producer producerCursor
	consumer consumerCursor

	buf      []byte
	capacity uint64
	elemSize uint64
	st       atomic.Uint32
}

// NewSPSC allocates a ring of capacity elements, each elemSize bytes.
func NewSPSC(capacity, elemSize int) (*SPSC, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if elemSize <= 0 {
		return nil, ErrInvalidElemSize
	}
	return &SPSC{
		buf:      make([]byte, capacity*elemSize),
		capacity: uint64(capacity),
		elemSize: uint64(elemSize),
	}, nil
}

// TrySend copies elemSize bytes from e into the next free slot.
// Never overwrites unread data.
//
//go:nosplit
//go:inline
//go:registerparams
func (r *SPSC) TrySend(e []byte) Code {
	if e == nil {
		return NullArg
	}
	if state(r.st.Load()) == closedState {
		return Closed
	}

	head := atomic.LoadUint64(&r.producer.head)
	tail := loadAcquireUint64(&r.consumer.tail)
	if head-tail == r.capacity {
		return Full
	}

	off := (head % r.capacity) * r.elemSize
	copy(r.buf[off:off+r.elemSize], e)

	storeReleaseUint64(&r.producer.head, head+1)
	return Ok
}

// Recv copies the next available element into out.
//
//go:nosplit
//go:inline
//go:registerparams
func (r *SPSC) Recv(out []byte) Code {
	if out == nil {
		return NullArg
	}

	tail := atomic.LoadUint64(&r.consumer.tail)
	head := loadAcquireUint64(&r.producer.head)
	if head == tail {
		return Empty
	}

	off := (tail % r.capacity) * r.elemSize
	copy(out, r.buf[off:off+r.elemSize])

	storeReleaseUint64(&r.consumer.tail, tail+1)
	return Ok
}

// Close is sticky: once closed, TrySend always reports Closed. The
// consumer may keep draining until Recv reports Empty.
func (r *SPSC) Close() {
	r.st.Store(uint32(closedState))
}

// IsClosed reports the ring's lifecycle state.
func (r *SPSC) IsClosed() bool {
	return state(r.st.Load()) == closedState
}

// Destroy releases the backing buffer. The caller must ensure no
// concurrent Send/Recv is in flight; SPSC has no endpoint count to
// wait on.
func (r *SPSC) Destroy() {
	r.Close()
	r.buf = nil
}
