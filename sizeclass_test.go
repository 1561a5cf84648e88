// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "testing"

func TestIndexOfMonotonic(t *testing.T) {
	prev := indexOf(32)
	for s := 40; s <= 1<<20; s += 8 {
		slot := indexOf(s)
		if slot < prev {
			t.Fatalf("indexOf regressed at size %d: %d < %d", s, slot, prev)
		}
		if slot < 0 || slot >= numSlots {
			t.Fatalf("indexOf(%d) = %d out of range", s, slot)
		}
		prev = slot
	}
}

func TestIndexOfExactFastSlot(t *testing.T) {
	if got := indexOf(32); got != 1 {
		t.Fatalf("indexOf(32) = %d, want 1", got)
	}
}

func TestClassSizeRoundTrip(t *testing.T) {
	for slot := 1; slot <= 31; slot++ {
		size := classSize(slot)
		if size%8 != 0 {
			t.Fatalf("classSize(%d) = %d not 8-byte aligned", slot, size)
		}
		if got := indexOf(size); got != slot {
			t.Fatalf("indexOf(classSize(%d)=%d) = %d, want %d", slot, size, got, slot)
		}
	}
}

func TestTargetSizeNeverShrinksBelowRequest(t *testing.T) {
	for s := 32; s <= 8192; s += 8 {
		if got := targetSize(s); got < s {
			t.Fatalf("targetSize(%d) = %d is smaller than the request", s, got)
		}
	}
}

func TestChunkSizeForMinimum(t *testing.T) {
	if got := chunkSizeFor(0); got != minChunk {
		t.Fatalf("chunkSizeFor(0) = %d, want %d", got, minChunk)
	}
	if got := chunkSizeFor(1); got != minChunk {
		t.Fatalf("chunkSizeFor(1) = %d, want %d", got, minChunk)
	}
}

func TestChunkSizeForAlignment(t *testing.T) {
	for n := 0; n < 200; n++ {
		if got := chunkSizeFor(n); got%8 != 0 {
			t.Fatalf("chunkSizeFor(%d) = %d not 8-byte aligned", n, got)
		}
	}
}

func TestSplitNeverLeavesA32ByteRemainder(t *testing.T) {
	// A remainder of exactly minChunk would collide with the fast bin's
	// dedicated slot; splitOrTake only splits when S > 2*need, which
	// forces remain > need >= 32, and sizes are 8-byte aligned, so the
	// smallest possible remainder is 40.
	for need := 32; need <= 256; need += 8 {
		for S := 2*need + 8; S <= 2*need+64; S += 8 {
			remain := S - need
			if remain == minChunk {
				t.Fatalf("need=%d S=%d produces a %d-byte remainder", need, S, minChunk)
			}
		}
	}
}
