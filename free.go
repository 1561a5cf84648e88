// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"fmt"
	"os"
)

// coalesceBackward merges c into its predecessor if the predecessor is
// free, returning a cursor for the (possibly merged) chunk. Pure
// boundary-tag driven, no scanning.
func (h *Heap) coalesceBackward(c chunkRef) chunkRef {
	if !c.hasPrev() || c.prevInUse() {
		return c
	}
	p := c.prev()
	h.removeFromSlot(indexOf(p.size()), addr(p.off))
	p.setSize(p.size() + c.size())
	p.markFree()
	return p
}

// coalesceForward merges c's successor into c if the successor is free,
// returning a cursor for the (possibly merged) chunk.
func (h *Heap) coalesceForward(c chunkRef) chunkRef {
	succ := c.next()
	if succ.isTail() || succ.thisInUse() {
		return c
	}
	h.removeFromSlot(indexOf(succ.size()), addr(succ.off))
	c.setSize(c.size() + succ.size())
	c.markFree()
	return c
}

// Free deallocates the block at p. p must have been
// returned by Malloc or Realloc on the same Heap, or be the null pointer,
// which is a no-op.
func (h *Heap) Free(p uintptr) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Free(%#x)\n", p) }()
	}
	if p == 0 {
		return
	}

	if h.fastBinEnabled() {
		if c, ok := h.findFastBackingChunk(p); ok {
			h.fastFree(c, p)
			h.allocs--
			return
		}
	}

	off := h.offsetOfPayload(p)
	c := h.chunkAt(off)
	c.markFree()
	merged := h.coalesceBackward(c)
	merged = h.coalesceForward(merged)
	h.pushSlot(indexOf(merged.size()), addr(merged.off))
	h.allocs--
}
