// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringq provides bounded, lock-free ring buffers for two
// producer/consumer shapes:
//
//   - SPSCZC: Single-Producer Single-Consumer, zero-copy region API
//   - MPSC:   Multi-Producer Single-Consumer, contiguous peek API
//
// Both coordinate their indices without channels, and cross-goroutine
// visibility of the data is established through
// [code.hybscloud.com/atomix] loads, stores and CASes with explicit
// memory ordering. The one lock is the mutex inside internal/futex's
// notifier: a commit or push takes it briefly to wake a waiter, and no
// goroutine holds it while parked.
//
// # Quick Start
//
// SPSCZC borrows a slice of its own storage for in-place writes and
// reads, avoiding a copy in and out of the ring:
//
//	q := ringq.NewSPSCZC[byte](4096, 0)
//
//	go func() { // producer
//	    for {
//	        region, err := q.AcquireWrite(256) // blocks until space exists
//	        if ringq.IsCancelled(err) {
//	            return
//	        }
//	        n := fill(region)
//	        q.CommitWrite(int32(n))
//	    }
//	}()
//
//	go func() { // consumer
//	    for {
//	        region, err := q.AcquireRead(1)
//	        if ringq.IsCancelled(err) {
//	            return
//	        }
//	        n := consume(region)
//	        q.CommitRead(int32(n))
//	    }
//	}()
//
// MPSC lets any number of producers push one fixed-size element at a
// time, and a single consumer drain contiguous runs of them:
//
//	q := ringq.NewMPSC[Event](4096)
//
//	for range numProducers {
//	    go func() {
//	        for ev := range source {
//	            q.Push(ev) // blocks while the ring is full
//	        }
//	    }()
//	}
//
//	go func() { // single consumer
//	    for {
//	        batch, err := q.Peek(64)
//	        if ringq.IsCancelled(err) {
//	            return
//	        }
//	        for _, ev := range batch {
//	            handle(ev)
//	        }
//	        q.CommitPop()
//	    }
//	}()
//
// # Non-blocking variants
//
// Every blocking call has a non-blocking counterpart that returns
// [ErrEmpty] or [ErrFull] instead of parking: AcquireWrite/AcquireRead
// accept want == 0 for this; TryPush and TryPeek are the MPSC
// equivalents.
//
//	err := q.Push(ev)         // blocks
//	err := q.TryPush(ev)      // returns ErrFull immediately
//
//	region, err := q.AcquireWrite(1) // blocks
//	region, err := q.AcquireWrite(0) // returns ErrEmpty immediately
//
// # Error Handling
//
// Both rings source [ErrEmpty] and [ErrFull] from
// [code.hybscloud.com/iox]'s ErrWouldBlock for ecosystem consistency, so
// [IsWouldBlock] and [code.hybscloud.com/iox.IsWouldBlock] agree on
// either ring's errors:
//
//	region, err := q.AcquireRead(0)
//	if ringq.IsWouldBlock(err) {
//	    // nothing to read yet
//	}
//
// Requesting more than half the ring's capacity in a single acquire
// returns [ErrTooLarge]; committing more than the last acquire returned
// returns [ErrOvercommit]. Both are programmer errors and leave the
// ring's state untouched.
//
// # Cancellation
//
// Cancel is safe to call from any goroutine, any number of times, and is
// terminal: once cancelled, every blocked call wakes and every
// subsequent call returns [ErrCancelled], forever. There is no way to
// un-cancel a ring; construct a new one instead.
//
// # Capacity
//
// SPSCZC never rounds capacity; the constructor's argument is exact.
// Regions never straddle the physical end of the backing array, so a
// request that would otherwise wrap is instead satisfied starting at
// index 0 once the tail is drained — callers that need every byte
// contiguous should size the ring generously relative to their typical
// AcquireWrite size.
//
// MPSC always reserves one slot to disambiguate empty from full: a ring
// constructed with capacity n holds at most n-1 elements at once.
//
// Length is intentionally not exposed on either ring: an accurate count
// under concurrent producers and consumers requires synchronization this
// package is specifically designed to avoid. [MPSC.WriteStats] exposes a
// best-effort high-water mark instead.
//
// # Thread Safety
//
// SPSCZC: exactly one goroutine may call AcquireWrite/CommitWrite/
// WaitUntilEmpty; exactly one (possibly different) goroutine may call
// AcquireRead/CommitRead. Violating this causes data corruption, not a
// detectable error.
//
// MPSC: any number of goroutines may call Push/TryPush concurrently;
// exactly one goroutine may call Peek/TryPeek/CommitPop.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channel, WaitGroup) but not the acquire-release orderings these rings
// establish through atomix. The iteration-heavy stress tests skip
// themselves when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions
// during a producer's reservation retry. The wait/notify rendezvous
// backing every blocking call lives in this module's internal/futex
// package.
package ringq
