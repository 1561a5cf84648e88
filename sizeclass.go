// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

// numSlots is the size of the availability bitmap and the slot-head array.
const numSlots = 64

// maxServicedSize is the largest request the segregated-fit engine is
// designed around; larger requests still work (served from slot 63's list,
// or by growing the heap when nothing there fits) but are not a
// performance target.
const maxServicedSize = 65536

// indexOf maps a chunk size (already clamped to >= 32, a multiple of 8) to
// one of the 64 size-class slots. It is total over [32, +inf) and
// monotonic non-decreasing; sizes above maxServicedSize clamp to slot 63.
func indexOf(size int) int {
	var slot int
	switch {
	case size == 32:
		slot = 1
	case size <= 512:
		slot = (size - 1) / 16
	case size <= 640:
		slot = (size + 1535) / 64
	case size <= 4096:
		slot = 34 + (size-513)/256
	case size < 6144:
		slot = 48
	default:
		slot = 48 + (size-1)/4096
	}
	if slot > numSlots-1 {
		slot = numSlots - 1
	}
	return slot
}

// isFixedSlot reports whether slot is a fixed-size class (slots 1..31), one
// whose allocations are always carved at exactly classSize(slot). Free
// chunks 8 bytes short of the class size can also land on such a slot.
func isFixedSlot(slot int) bool { return slot >= 1 && slot <= 31 }

// classSize returns the exact chunk size of a fixed slot. It is undefined
// for dynamic slots (0, 32..63), which hold a range of sizes rather than a
// single one.
func classSize(slot int) int {
	if slot == 1 {
		return 32
	}
	return 16*slot + 16
}

// targetSize returns the chunk size that should actually be carved out for
// a request whose minimum acceptable size is s: the class's fixed size
// when s lands in a fixed slot, or s unchanged for dynamic slots.
func targetSize(s int) int {
	if slot := indexOf(s); isFixedSlot(slot) {
		return classSize(slot)
	}
	return s
}

// chunkSizeFor computes the chunk size (header + payload, 8-byte aligned,
// clamped to the 32-byte minimum) malloc(n) must satisfy.
func chunkSizeFor(n int) int {
	s := align8(n) + headerSize
	if s < minChunk {
		s = minChunk
	}
	return s
}
