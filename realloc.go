// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"fmt"
	"os"
)

// Realloc resizes the block at p to n bytes, preserving the lesser of its
// old and new sizes' worth of content, and returns a pointer to the
// (possibly relocated) block. Realloc(0, n) behaves like Malloc(n);
// Realloc(p, 0) frees p and returns 0.
func (h *Heap) Realloc(p uintptr, n int) (r uintptr, err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Realloc(%#x, %#x) %#x, %v\n", p, n, r, err) }()
	}
	if !h.inited {
		return 0, &NotInitializedError{Op: "Realloc"}
	}
	if n < 0 {
		panic("brkalloc: invalid realloc size")
	}

	if p == 0 {
		return h.Malloc(n)
	}
	if n == 0 {
		h.Free(p)
		return 0, nil
	}

	old := h.Bytes(p)
	// A fast-bin cell can never be grown or shrunk in place: it has a
	// fixed 32-byte capacity, so any size change must hand back a chunk
	// from the general allocator.
	if h.fastBinEnabled() {
		if _, ok := h.findFastBackingChunk(p); ok {
			return h.relocate(p, old, n)
		}
	}

	off := h.offsetOfPayload(p)
	c := h.chunkAt(off)
	have := c.size() - headerSize
	need := targetSize(chunkSizeFor(n))

	if need <= c.size() {
		h.shrinkInPlace(c, need)
		return p, nil
	}

	if h.growInPlace(c, need) {
		return p, nil
	}

	return h.relocate(p, old[:min(have, n)], n)
}

// shrinkInPlace carves c down to need bytes, splitting off the leftover tail
// whenever it's at least one minimum-sized chunk (unlike splitOrTake's
// more-than-double threshold: a shrink must give back everything the caller
// no longer needs, not just the surplus worth keeping on allocation). The
// leftover is coalesced forward with its successor, if free, before being
// listed, since the successor of an in-use block is under no obligation to
// be in use itself and two free chunks may never sit adjacent. As in
// Malloc, a 32-byte need is served by the 48-byte class, and with the fast
// bin enabled a leftover of exactly 32 bytes stays part of c, so slot 1
// never receives a general chunk.
func (h *Heap) shrinkInPlace(c chunkRef, need int) {
	if need == minChunk {
		need = classSize(2)
	}
	S := c.size()
	remain := S - need
	if remain < minChunk || remain == minChunk && h.fastBinEnabled() {
		return
	}

	c.setHeader(need, c.flags()|flagThisInUse)
	rest := c.next()
	rest.setHeader(remain, flagPrevInUse)
	succ := rest.next()
	succ.setPrevSize(remain)
	succ.setFlag(flagPrevInUse, false)

	merged := h.coalesceForward(rest)
	h.pushSlot(indexOf(merged.size()), addr(merged.off))
}

// growInPlace attempts to extend c by coalescing forward into its
// immediate successor, without moving the block. Reports whether it
// succeeded.
func (h *Heap) growInPlace(c chunkRef, need int) bool {
	succ := c.next()
	if succ.isTail() || succ.thisInUse() {
		return false
	}
	if c.size()+succ.size() < need {
		return false
	}
	h.removeFromSlot(indexOf(succ.size()), addr(succ.off))
	c.setHeader(c.size()+succ.size(), c.flags()|flagThisInUse)
	h.splitOrTake(c, need)
	return true
}

// relocate allocates a fresh n-byte block, copies old into it, and frees
// the original.
func (h *Heap) relocate(p uintptr, old []byte, n int) (uintptr, error) {
	q, err := h.Malloc(n)
	if err != nil {
		return 0, err
	}
	copy(h.Bytes(q), old)
	h.Free(p)
	return q, nil
}
