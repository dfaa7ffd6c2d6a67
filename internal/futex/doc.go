// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package futex implements a futex-like atomic wait/notify wrapper: a
// goroutine parks while a caller-supplied condition holds, and wakes when
// another goroutine calls WakeOne or WakeAll after mutating the word the condition
// watches. Spurious wakeups are permitted; every caller re-checks its own
// condition after Wait returns.
//
// Unlike a real futex, Wait does not take the address of the watched word
// directly (Go offers no portable way to block a goroutine on an arbitrary
// memory address). Instead each independently-waited-on word gets its own
// *Notifier, and the condition closure performs the atomic load and
// comparison the caller would otherwise pass as (addr, expected). This
// keeps a futex's (addr, expected) wait contract while staying pure Go:
// no cgo, no OS-specific syscalls, and correct on every platform Go
// supports.
//
// No mutex is ever held while a goroutine is parked: Wait relies on
// sync.Cond, whose Wait atomically drops the lock before sleeping and
// reacquires it on wake.
package futex
