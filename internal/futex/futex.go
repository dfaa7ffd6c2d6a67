// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package futex

import "sync"

// Notifier is a single watched word's wait/notify rendezvous point. The
// zero value is not usable; construct with New.
type Notifier struct {
	mu   sync.Mutex
	cond sync.Cond
}

// New returns a ready-to-use Notifier.
func New() *Notifier {
	n := &Notifier{}
	n.cond.L = &n.mu
	return n
}

// Wait blocks while stillWaiting reports true, re-evaluating it after every
// wakeup (spurious or real). stillWaiting is called with the Notifier's
// internal lock held, so it must not block or call back into this
// Notifier; it should simply load the watched atomic word and compare it
// to the value the caller is waiting to see change.
func (n *Notifier) Wait(stillWaiting func() bool) {
	n.mu.Lock()
	for stillWaiting() {
		n.cond.Wait()
	}
	n.mu.Unlock()
}

// WakeOne wakes at most one goroutine parked in Wait.
//
// Callers must publish the state change stillWaiting observes (a
// release-store or release-CAS on the watched word) before calling
// WakeOne, and must not hold any lock of their own across the call. The
// Lock/Unlock pair below is not protecting any data of WakeOne's own; it
// serializes with a waiter that is between evaluating stillWaiting and
// entering cond.Wait, which otherwise could observe the pre-update value,
// decide to park, and never see this wakeup (a lost wakeup).
func (n *Notifier) WakeOne() {
	n.mu.Lock()
	n.mu.Unlock()
	n.cond.Signal()
}

// WakeAll wakes every goroutine parked in Wait. Same publication
// requirement as WakeOne.
func (n *Notifier) WakeAll() {
	n.mu.Lock()
	n.mu.Unlock()
	n.cond.Broadcast()
}
