// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"

	"github.com/zenshosan/ringq/internal/futex"
)

// SPSCZC is a single-producer/single-consumer bounded ring of elements of
// type E supporting zero-copy in-place production and consumption: the
// producer writes directly into a borrowed slice of the ring's own
// storage, and the consumer reads directly out of it, with no
// intermediate copy.
//
// Exactly one goroutine may call AcquireWrite/CommitWrite/WaitUntilEmpty;
// exactly one (possibly different) goroutine may call
// AcquireRead/CommitRead. Cancel may be called from any goroutine.
//
// The ring is always in one of two geometric phases: front phase, where
// the read cursor is at or behind the write cursor, and back phase, where
// the write cursor has wrapped past the read cursor.
type SPSCZC[E any] struct {
	_ pad
	// writeCtx packs (write_index int32, read_end_index int32) into a
	// single word so both fields move together under one CAS. Mutated
	// only by the producer.
	writeCtx atomix.Uint64
	wNotify  *futex.Notifier
	// wScratch holds the state AcquireWrite computed for the region it
	// last handed to the (single) producer; CommitWrite consumes it.
	wScratch struct {
		ctx          uint64
		writeIndex   int32
		readEndIndex int32
		readIndex    int32
		avail        int32
	}

	_ pad
	// readIndex is mutated only by the consumer.
	readIndex atomix.Int32
	rNotify   *futex.Notifier
	rScratch  struct {
		readIndex     int32
		nextReadIndex int32
		writeIndex    int32
		readEndIndex  int32
		avail         int32
	}

	_        pad
	buf      []E
	capacity int32
}

// NewSPSCZC constructs an empty ring of the given capacity holding
// elements of type E, with the backing storage starting at an address
// aligned to elemAlign bytes (elemAlign may be 0 or less than E's natural
// alignment, in which case E's natural alignment is used). Only element 0
// is guaranteed that alignment: a region returned by AcquireWrite starts
// at the current write index, which is not rounded to elemAlign. capacity
// must be at least 2 and at most 2^30.
func NewSPSCZC[E any](capacity int, elemAlign uintptr) *SPSCZC[E] {
	if capacity < 2 {
		panic("ringq: SPSC-ZC capacity must be >= 2")
	}
	if capacity > 1<<30 {
		panic("ringq: SPSC-ZC capacity must be <= 2^30")
	}
	q := &SPSCZC[E]{
		buf:      alignedSlice[E](capacity, elemAlign),
		capacity: int32(capacity),
	}
	q.wNotify = futex.New()
	q.rNotify = futex.New()
	return q
}

func encodeCtx(writeIndex, readEndIndex int32) uint64 {
	return uint64(uint32(writeIndex)) | uint64(uint32(readEndIndex))<<32
}

func decodeCtx(ctx uint64) (writeIndex, readEndIndex int32) {
	return int32(uint32(ctx)), int32(uint32(ctx >> 32))
}

func spscFrontPhase(writeIndex, readIndex int32) bool {
	return readIndex <= writeIndex
}

// checkWriteAvailable returns the currently free element count and, if the
// free prefix before read_index is larger than the free suffix after
// write_index (so the writer flips to back phase), the tentative new
// write_index (or -1 if no flip is chosen).
func checkWriteAvailable(writeIndex, readIndex, capacity int32) (avail, flippedWriteIndex int32) {
	if spscFrontPhase(writeIndex, readIndex) {
		suffix := capacity - writeIndex
		prefix := readIndex - 1
		if suffix >= prefix || prefix <= 0 {
			return suffix, -1
		}
		return prefix, 0
	}
	return readIndex - writeIndex - 1, -1
}

// checkReadAvailable returns the currently readable element count and, if
// the reader must flip to front phase to keep reading, the tentative new
// read_index (or -1 if no flip is needed).
func checkReadAvailable(writeIndex, readEndIndex, readIndex int32) (avail, flippedReadIndex int32) {
	if spscFrontPhase(writeIndex, readIndex) {
		return writeIndex - readIndex, -1
	}
	avail = readEndIndex - readIndex
	if avail == 0 {
		return writeIndex, 0
	}
	return avail, -1
}

func spscIsEmpty(writeIndex, readEndIndex, readIndex int32) bool {
	if spscFrontPhase(writeIndex, readIndex) {
		return writeIndex == readIndex
	}
	return readEndIndex == readIndex
}

// publishWriteCtx CAS-publishes a new writeCtx with release ordering. It
// is only ever called by the producer against a value it just loaded, so
// a failure means the ring was concurrently cancelled.
func (q *SPSCZC[E]) publishWriteCtx(expected, desired uint64) bool {
	if q.writeCtx.CompareAndSwapAcqRel(expected, desired) {
		q.wNotify.WakeOne()
		return true
	}
	return false
}

// publishReadIndex is the read-side analogue of publishWriteCtx.
func (q *SPSCZC[E]) publishReadIndex(expected, desired int32) bool {
	if q.readIndex.CompareAndSwapAcqRel(expected, desired) {
		q.rNotify.WakeOne()
		return true
	}
	return false
}

// AcquireWrite reserves a mutable region of at least want elements for
// the producer to fill in place; it is aligned to the constructor's
// elemAlign only when it starts at element 0. want == 0 means
// non-blocking: it returns ErrEmpty immediately instead of waiting.
// Requesting more than capacity/2 returns ErrTooLarge. The returned
// region is only valid until the matching CommitWrite.
func (q *SPSCZC[E]) AcquireWrite(want int32) ([]E, error) {
	if want > q.capacity/2 {
		return nil, ErrTooLarge
	}

	for {
		ctx := q.writeCtx.LoadRelaxed()
		writeIndex, readEndIndex := decodeCtx(ctx)
		if writeIndex < 0 {
			return nil, ErrCancelled
		}

		readIndex := q.readIndex.LoadAcquire()
		if readIndex < 0 {
			return nil, ErrCancelled
		}

		avail, flipped := checkWriteAvailable(writeIndex, readIndex, q.capacity)
		if avail > 0 && want <= avail {
			startIndex := writeIndex
			newReadEndIndex := readEndIndex
			if flipped >= 0 {
				startIndex, newReadEndIndex = flipped, writeIndex
			}
			q.wScratch.ctx = ctx
			q.wScratch.writeIndex = startIndex
			q.wScratch.readEndIndex = newReadEndIndex
			q.wScratch.readIndex = readIndex
			q.wScratch.avail = avail
			return q.buf[startIndex : startIndex+avail : startIndex+avail], nil
		}

		if flipped >= 0 {
			// Publish the flip before waiting: the consumer must be
			// able to observe the new read_end_index and drain the
			// exposed tail, or a large request could deadlock forever
			// waiting on a phase it never announced.
			newCtx := encodeCtx(flipped, writeIndex)
			if !q.publishWriteCtx(ctx, newCtx) {
				return nil, ErrCancelled
			}
			continue
		}

		if want <= 0 {
			return nil, ErrEmpty
		}
		q.rNotify.Wait(func() bool {
			return q.readIndex.LoadRelaxed() == readIndex
		})
	}
}

// CommitWrite publishes the first n elements of the most recently
// acquired write region as readable. n must not exceed the length
// returned by AcquireWrite. Returns n on success.
func (q *SPSCZC[E]) CommitWrite(n int32) (int32, error) {
	if n > q.wScratch.avail {
		return 0, ErrOvercommit
	}
	newWriteIndex := q.wScratch.writeIndex + n
	newReadEndIndex := q.wScratch.readEndIndex
	if spscFrontPhase(newWriteIndex, q.wScratch.readIndex) {
		newReadEndIndex = newWriteIndex
	}
	newCtx := encodeCtx(newWriteIndex, newReadEndIndex)
	if !q.publishWriteCtx(q.wScratch.ctx, newCtx) {
		return 0, ErrCancelled
	}
	q.wScratch.avail = 0
	return n, nil
}

// AcquireRead returns a slice of at least want elements the consumer may
// read (never crossing the wrap seam). want == 0 means non-blocking: it
// returns ErrEmpty immediately instead of waiting. Requesting more than
// capacity/2 returns ErrTooLarge. The returned slice is only valid until
// the matching CommitRead and must not be mutated.
func (q *SPSCZC[E]) AcquireRead(want int32) ([]E, error) {
	if want > q.capacity/2 {
		return nil, ErrTooLarge
	}

	for {
		readIndex := q.readIndex.LoadRelaxed()
		if readIndex < 0 {
			return nil, ErrCancelled
		}

		ctx := q.writeCtx.LoadAcquire()
		writeIndex, readEndIndex := decodeCtx(ctx)
		if writeIndex < 0 {
			return nil, ErrCancelled
		}

		avail, flipped := checkReadAvailable(writeIndex, readEndIndex, readIndex)
		if avail > 0 && want <= avail {
			startIndex := readIndex
			if flipped >= 0 {
				startIndex = flipped
			}
			q.rScratch.readIndex = readIndex
			q.rScratch.nextReadIndex = startIndex
			q.rScratch.writeIndex = writeIndex
			q.rScratch.readEndIndex = readEndIndex
			q.rScratch.avail = avail
			return q.buf[startIndex : startIndex+avail : startIndex+avail], nil
		}

		if flipped >= 0 {
			if !q.publishReadIndex(readIndex, flipped) {
				return nil, ErrCancelled
			}
			continue
		}

		if want <= 0 {
			return nil, ErrEmpty
		}
		q.wNotify.Wait(func() bool {
			return q.writeCtx.LoadRelaxed() == ctx
		})
	}
}

// CommitRead releases the first n elements of the most recently acquired
// read region back to the producer. n must not exceed the length returned
// by AcquireRead. Returns n on success.
func (q *SPSCZC[E]) CommitRead(n int32) (int32, error) {
	if n > q.rScratch.avail {
		return 0, ErrOvercommit
	}
	newReadIndex := q.rScratch.nextReadIndex + n
	if !spscFrontPhase(q.rScratch.writeIndex, q.rScratch.nextReadIndex) && newReadIndex >= q.rScratch.readEndIndex {
		newReadIndex = 0
	}
	if !q.publishReadIndex(q.rScratch.readIndex, newReadIndex) {
		return 0, ErrCancelled
	}
	q.rScratch.avail = 0
	return n, nil
}

// WaitUntilEmpty blocks (producer side only) until the consumer has
// drained every committed element, or the ring is cancelled.
func (q *SPSCZC[E]) WaitUntilEmpty() {
	for {
		ctx := q.writeCtx.LoadRelaxed()
		writeIndex, readEndIndex := decodeCtx(ctx)
		if writeIndex < 0 {
			return
		}
		readIndex := q.readIndex.LoadAcquire()
		if readIndex < 0 {
			return
		}
		if spscIsEmpty(writeIndex, readEndIndex, readIndex) {
			return
		}
		q.rNotify.Wait(func() bool {
			return q.readIndex.LoadRelaxed() == readIndex
		})
	}
}

// Cancel permanently and idempotently cancels the ring: every subsequent
// operation, and every operation currently blocked, returns ErrCancelled.
// Safe to call from any goroutine, any number of times.
func (q *SPSCZC[E]) Cancel() {
	for {
		ctx := q.writeCtx.LoadRelaxed()
		if int64(ctx) < 0 {
			break
		}
		if q.writeCtx.CompareAndSwapRelaxed(ctx, encodeCtx(-1, -1)) {
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

// Cap returns the ring's capacity in elements.
func (q *SPSCZC[E]) Cap() int32 {
	return q.capacity
}
