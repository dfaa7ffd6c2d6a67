// ©Zenshosan 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"testing"
	"unsafe"
)

type cacheLineElem struct {
	a, b, c, d, e, f, g, h int64
}

func TestAlignedSliceRespectsRequestedAlignment(t *testing.T) {
	const align = 64
	s := alignedSlice[cacheLineElem](100, align)
	if len(s) != 100 {
		t.Fatalf("len = %d, want 100", len(s))
	}
	addr := uintptr(unsafe.Pointer(&s[0]))
	if addr%align != 0 {
		t.Fatalf("first element address %#x is not %d-byte aligned", addr, align)
	}
}

func TestAlignedSliceFallsBackToNaturalAlignment(t *testing.T) {
	s := alignedSlice[byte](16, 0)
	if len(s) != 16 {
		t.Fatalf("len = %d, want 16", len(s))
	}
}

func TestAlignedSliceNoStricterThanNatural(t *testing.T) {
	s := alignedSlice[int64](8, unsafe.Alignof(int64(0)))
	if len(s) != 8 {
		t.Fatalf("len = %d, want 8", len(s))
	}
}
