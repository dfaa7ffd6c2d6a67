// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package futex

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNotifierWakeOne(t *testing.T) {
	n := New()
	var word atomic.Int64
	done := make(chan struct{})

	go func() {
		n.Wait(func() bool { return word.Load() == 0 })
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("waiter returned before wake")
	case <-time.After(20 * time.Millisecond):
	}

	word.Store(1)
	n.WakeOne()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter did not wake within timeout")
	}
}

func TestNotifierWakeAll(t *testing.T) {
	n := New()
	var word atomic.Int64
	const waiters = 8
	done := make(chan struct{}, waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			n.Wait(func() bool { return word.Load() == 0 })
			done <- struct{}{}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	word.Store(1)
	n.WakeAll()

	for i := 0; i < waiters; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("waiter %d did not wake within timeout", i)
		}
	}
}

func TestNotifierSpuriousWakeupRechecks(t *testing.T) {
	n := New()
	var word atomic.Int64
	returned := make(chan struct{})

	go func() {
		n.Wait(func() bool { return word.Load() == 0 })
		close(returned)
	}()

	// Wake without changing the watched word: a correct waiter must
	// re-check its condition and go back to sleep instead of returning.
	time.Sleep(10 * time.Millisecond)
	n.WakeAll()

	select {
	case <-returned:
		t.Fatal("waiter returned on a spurious wakeup without a state change")
	case <-time.After(20 * time.Millisecond):
	}

	word.Store(1)
	n.WakeAll()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("waiter did not wake after the real state change")
	}
}

func TestNotifierWaitReturnsImmediatelyWhenAlreadySatisfied(t *testing.T) {
	n := New()
	done := make(chan struct{})
	go func() {
		n.Wait(func() bool { return false })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked despite an already-false condition")
	}
}
