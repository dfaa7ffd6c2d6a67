// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrEmpty is returned by a non-blocking read-side call when the ring has
// nothing available yet, and by a non-blocking SPSCZC.AcquireWrite (want
// == 0) when the ring has no free space. It wraps [iox.ErrWouldBlock] for ecosystem
// consistency with other iox-based components: callers should retry
// later rather than treat it as a failure.
var ErrEmpty = fmt.Errorf("ringq: read: %w", iox.ErrWouldBlock)

// ErrFull is returned by MPSC.TryPush when the ring has no space
// available yet. It wraps [iox.ErrWouldBlock] for the same
// reason as ErrEmpty.
var ErrFull = fmt.Errorf("ringq: write: %w", iox.ErrWouldBlock)

// ErrTooLarge is returned when a caller requests more than capacity/2 in
// a single acquire_write or acquire_read. It is a programmer error: the
// ring's state is left unchanged and the call should not be retried with
// the same want.
var ErrTooLarge = errors.New("ringq: requested size exceeds capacity/2")

// ErrOvercommit is returned when CommitWrite or CommitRead is called
// with a size greater than the most recent acquire returned. It is a
// programmer error; the ring's indices are left unchanged.
var ErrOvercommit = errors.New("ringq: commit exceeds last acquired size")

// ErrCancelled is returned by every operation once Cancel has been
// called, or if the ring is cancelled while the operation was blocked
// waiting. It is terminal: no further operation on the ring will ever
// succeed.
var ErrCancelled = errors.New("ringq: cancelled")

// IsWouldBlock reports whether err indicates a non-blocking call could
// not proceed immediately (ErrEmpty or ErrFull). Delegates to
// [iox.IsWouldBlock] for wrapped-error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsCancelled reports whether err is or wraps [ErrCancelled].
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
