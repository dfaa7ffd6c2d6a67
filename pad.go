// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// pad is cache-line padding placed around a hot atomic word to keep the
// producer's and the consumer's words on distinct cache lines. 64 bytes
// covers every mainstream architecture this package targets.
type pad [64]byte
