// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "math/bits"

// bitmapSet, bitmapClr and bitmapTest maintain the 64-bit availability
// bitmap as an exact mirror of slot-list emptiness.
func (h *Heap) bitmapSet(slot int)       { h.bitmap |= uint64(1) << uint(slot) }
func (h *Heap) bitmapClr(slot int)       { h.bitmap &^= uint64(1) << uint(slot) }
func (h *Heap) bitmapTest(slot int) bool { return h.bitmap&(uint64(1)<<uint(slot)) != 0 }

// nextNonEmpty returns the smallest slot j > i with bit j set in the
// availability bitmap, or ok == false if none exists. cznic/memory reaches
// for mathutil.BitLen for this kind of log2 work, but that helper takes a
// plain int and the top bit of a uint64 mask doesn't fit one on a 32-bit
// build, so the bit count here uses math/bits instead (see DESIGN.md).
func (h *Heap) nextNonEmpty(i int) (slot int, ok bool) {
	if i >= numSlots-1 {
		return 0, false
	}
	masked := h.bitmap & (^uint64(0) << uint(i+1))
	if masked == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(masked), true
}
