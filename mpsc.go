// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/zenshosan/ringq/internal/futex"
)

// MPSC is a many-producer/single-consumer bounded ring holding fixed-size
// elements of type E. Producers push one element at a time under a
// reservation scheme that lets them run fully concurrently; the single
// consumer drains contiguous runs of already-published elements with
// Peek/CommitPop, avoiding a per-element atomic operation on the read
// side.
//
// Any number of goroutines may call Push/TryPush concurrently. Exactly
// one goroutine may call Peek/TryPeek/CommitPop. Cancel may be called
// from any goroutine.
type MPSC[E any] struct {
	_ pad
	// writeIndex is the next slot a producer may reserve, mod capacity.
	// Mutated by every producer via a reservation CAS.
	writeIndex atomix.Int64
	rNotify    *futex.Notifier

	_ pad
	// readMaxIndex is the highest index up to which producers have
	// finished publishing their data. A producer only advances it past
	// its own reservation once every producer that reserved an earlier
	// slot has published, which is what the publish-CAS chain below
	// enforces: each producer retries with expected pinned to its own
	// write_index, so publication happens in strict reservation order
	// even though the writes themselves may finish out of order.
	readMaxIndex atomix.Int64
	wNotify      *futex.Notifier

	_ pad
	// readIndex is mutated only by the consumer, via CommitPop.
	readIndex atomix.Int64
	// pScratch holds the state Peek computed for the region it last
	// handed to the (single) consumer; CommitPop consumes it.
	pScratch struct {
		expected int64
		desired  int64
	}

	_        pad
	maxQueued atomix.Int64
	waitCount atomix.Int64

	buf      []E
	capacity int64
}

// Stats is a snapshot of an MPSC ring's lifetime write-side activity.
type Stats struct {
	// MaxQueued is the highest number of elements the ring has ever held
	// at once.
	MaxQueued int32
	// WaitCount is the number of times a blocking Push found the ring
	// full and had to wait.
	WaitCount int32
}

// NewMPSC constructs an empty ring of the given capacity holding elements
// of type E. capacity must be at least 2; one slot is always reserved to
// disambiguate empty from full, so the ring holds at most capacity-1
// elements at a time.
func NewMPSC[E any](capacity int) *MPSC[E] {
	if capacity < 2 {
		panic("ringq: MPSC capacity must be >= 2")
	}
	q := &MPSC[E]{
		buf:      make([]E, capacity),
		capacity: int64(capacity),
	}
	q.rNotify = futex.New()
	q.wNotify = futex.New()
	return q
}

// Push adds one element, blocking while the ring is full. It returns
// ErrCancelled if the ring is or becomes cancelled while waiting.
func (q *MPSC[E]) Push(elem E) error {
	return q.pushCommon(elem, true)
}

// TryPush adds one element without blocking, returning ErrFull if the
// ring is currently full.
func (q *MPSC[E]) TryPush(elem E) error {
	return q.pushCommon(elem, false)
}

func (q *MPSC[E]) pushCommon(elem E, wait bool) error {
	sw := spin.Wait{}
	var writeIndex, newWriteIndex, queueSize int64
	for {
		writeIndex = q.writeIndex.LoadRelaxed()
		if writeIndex < 0 {
			return ErrCancelled
		}
		readIndex := q.readIndex.LoadAcquire()
		if readIndex < 0 {
			return ErrCancelled
		}

		newWriteIndex = (writeIndex + 1) % q.capacity
		if newWriteIndex == readIndex {
			if !wait {
				return ErrFull
			}
			q.waitCount.AddAcqRel(1)
			q.rNotify.Wait(func() bool {
				return q.readIndex.LoadRelaxed() == readIndex
			})
			continue
		}

		queueSize = (q.capacity + newWriteIndex - readIndex) % q.capacity

		if q.writeIndex.CompareAndSwapRelaxed(writeIndex, newWriteIndex) {
			break
		}
		sw.Once()
	}

	q.buf[writeIndex] = elem

	for {
		maxQueued := q.maxQueued.LoadRelaxed()
		if maxQueued >= queueSize {
			break
		}
		if q.maxQueued.CompareAndSwapRelaxed(maxQueued, queueSize) {
			break
		}
	}

	for {
		if !q.readMaxIndex.CompareAndSwapAcqRel(writeIndex, newWriteIndex) {
			cur := q.readMaxIndex.LoadRelaxed()
			if cur < 0 {
				return ErrCancelled
			}
			// A different producer holding an earlier reservation has
			// not published yet; retry against the same expected value
			// until it does, which serializes publication into
			// reservation order without a mutex.
			continue
		}
		q.wNotify.WakeOne()
		return nil
	}
}

// readAvail returns how many published elements are readable starting at
// readIndex before the physical end of the buffer is reached.
func readAvail(readMaxIndex, readIndex, capacity int64) int64 {
	if readIndex <= readMaxIndex {
		return readMaxIndex - readIndex
	}
	return capacity - readIndex
}

// Peek returns a contiguous slice of up to num already-published elements
// for the consumer to read in place, blocking while the ring is empty.
// The returned slice is only valid until the matching CommitPop and must
// not be mutated. It returns ErrCancelled if the ring is or becomes
// cancelled while waiting.
func (q *MPSC[E]) Peek(num int) ([]E, error) {
	return q.peekCommon(num, true)
}

// TryPeek is the non-blocking form of Peek: it returns ErrEmpty
// immediately if the ring currently has nothing published.
func (q *MPSC[E]) TryPeek(num int) ([]E, error) {
	return q.peekCommon(num, false)
}

func (q *MPSC[E]) peekCommon(num int, wait bool) ([]E, error) {
	readIndex := q.readIndex.LoadRelaxed()
	if readIndex < 0 {
		return nil, ErrCancelled
	}

	var readMaxIndex int64
	for {
		readMaxIndex = q.readMaxIndex.LoadAcquire()
		if readMaxIndex < 0 {
			return nil, ErrCancelled
		}
		if readIndex != readMaxIndex {
			break
		}
		if !wait {
			return nil, ErrEmpty
		}
		q.wNotify.Wait(func() bool {
			return q.readMaxIndex.LoadRelaxed() == readMaxIndex
		})
	}

	avail := readAvail(readMaxIndex, readIndex, q.capacity)
	n := int64(num)
	if n > avail || n <= 0 {
		n = avail
	}

	q.pScratch.expected = readIndex
	q.pScratch.desired = (readIndex + n) % q.capacity
	return q.buf[readIndex : readIndex+n : readIndex+n], nil
}

// CommitPop releases the region most recently returned by Peek/TryPeek
// back to the producers.
func (q *MPSC[E]) CommitPop() error {
	newReadIndex := q.pScratch.desired
	for {
		if q.readIndex.CompareAndSwapAcqRel(q.pScratch.expected, newReadIndex) {
			q.rNotify.WakeOne()
			return nil
		}
		cur := q.readIndex.LoadRelaxed()
		if cur < 0 {
			return ErrCancelled
		}
	}
}

// WriteStats returns a snapshot of the ring's lifetime write-side
// activity.
func (q *MPSC[E]) WriteStats() Stats {
	return Stats{
		MaxQueued: int32(q.maxQueued.LoadRelaxed()),
		WaitCount: int32(q.waitCount.LoadRelaxed()),
	}
}

// Cancel permanently and idempotently cancels the ring: every subsequent
// operation, and every operation currently blocked, returns ErrCancelled.
// Safe to call from any goroutine, any number of times.
func (q *MPSC[E]) Cancel() {
	for {
		idx := q.writeIndex.LoadRelaxed()
		if idx < 0 {
			break
		}
		if q.writeIndex.CompareAndSwapRelaxed(idx, -1) {
			break
		}
	}
	for {
		idx := q.readMaxIndex.LoadRelaxed()
		if idx < 0 {
			break
		}
		if q.readMaxIndex.CompareAndSwapRelaxed(idx, -1) {
			q.wNotify.WakeAll()
			break
		}
	}
	for {
		idx := q.readIndex.LoadRelaxed()
		if idx < 0 {
			break
		}
		if q.readIndex.CompareAndSwapRelaxed(idx, -1) {
			q.rNotify.WakeAll()
			break
		}
	}
}

// Cap returns the ring's capacity in elements, including the one slot
// always reserved to disambiguate empty from full.
func (q *MPSC[E]) Cap() int {
	return int(q.capacity)
}
