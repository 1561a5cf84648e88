// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"fmt"
	"os"
)

// Bounded-traversal budgets for the middle and huge allocation paths: caps
// worst-case per-call work while giving dynamic classes a chance at
// best-fit within the class.
const (
	middleTraversal = 4
	hugeTraversal   = 8
)

// Malloc allocates n bytes and returns a pointer into the heap's arena, or
// an error if the underlying break could not be extended. Malloc(0) is
// valid and returns a freeable pointer: a 32-byte fast-bin cell, or a
// 48-byte chunk when the fast bin is disabled.
func (h *Heap) Malloc(n int) (r uintptr, err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Malloc(%#x) %#x, %v\n", n, r, err) }()
	}
	if !h.inited {
		return 0, &NotInitializedError{Op: "Malloc"}
	}
	if n < 0 {
		panic("brkalloc: invalid malloc size")
	}

	s := chunkSizeFor(n)
	if s == minChunk && h.fastBinEnabled() {
		p, err := h.fastAlloc()
		if err != nil {
			return 0, err
		}
		h.allocs++
		return p, nil
	}

	need := targetSize(s)
	if s == minChunk && !h.fastBinEnabled() {
		need = classSize(2) // route 32-byte requests into the 48-byte class
	}

	a, err := h.allocRaw(need)
	if err != nil {
		return 0, err
	}
	h.allocs++
	return h.payloadAddr(int(a)), nil
}

// allocRaw satisfies an internal request for a chunk of at least need
// bytes (need already class-rounded by the caller), marking it in-use and
// returning its header offset. Tiny requests take the head of their
// fixed-size slot when it is at least need bytes (a fixed slot can also hold
// free chunks 8 bytes short of its class size, left over by splits);
// middle and huge requests walk a bounded number of list nodes for a
// first fit, falling back to the next non-empty larger slot and finally to
// growing the heap when nothing fits.
func (h *Heap) allocRaw(need int) (addr, error) {
	slot := indexOf(need)
	switch {
	case need <= 512:
		if a, ok := h.takeFirstFit(slot, need, 1); ok {
			c := h.chunkAt(int(a))
			c.markInUse()
			return a, nil
		}
	case need <= 4096:
		if a, ok := h.takeFirstFit(slot, need, middleTraversal); ok {
			return addr(h.splitOrTake(h.chunkAt(int(a)), need).off), nil
		}
	default:
		if a, ok := h.takeFirstFit(slot, need, hugeTraversal); ok {
			return addr(h.splitOrTake(h.chunkAt(int(a)), need).off), nil
		}
	}

	if j, ok := h.nextNonEmpty(slot); ok {
		a, _ := h.popSlot(j)
		return addr(h.splitOrTake(h.chunkAt(int(a)), need).off), nil
	}

	if err := h.growHeap(need); err != nil {
		return 0, err
	}
	return h.allocRaw(need)
}

// takeFirstFit walks up to limit nodes of slot's list looking for a chunk
// of at least need bytes, removing and returning the first one found. ok
// is false (and the list untouched) if no such chunk exists within the
// traversal budget.
func (h *Heap) takeFirstFit(slot, need, limit int) (a addr, ok bool) {
	sentinel := slotSentinel(slot)
	cur := h.nodeAt(sentinel).next
	for i := 0; i < limit && cur != sentinel; i++ {
		c := h.chunkAt(int(cur))
		if c.size() >= need {
			h.removeFromSlot(slot, cur)
			return cur, true
		}
		cur = h.nodeAt(cur).next
	}
	return 0, false
}

// splitOrTake marks free chunk c (whose size is >= need) in use. It carves
// c down to exactly need bytes and lists the rest as a free remainder chunk
// only when that remainder would itself be more than need bytes; otherwise
// the whole chunk is taken unsplit. Returns a cursor for the in-use chunk.
func (h *Heap) splitOrTake(c chunkRef, need int) chunkRef {
	S := c.size()
	if S > 2*need {
		remain := S - need
		c.setHeader(need, c.flags()|flagThisInUse)

		rest := c.next()
		rest.setHeader(remain, flagPrevInUse)
		tail := rest.next()
		tail.setPrevSize(remain)
		tail.setFlag(flagPrevInUse, false)
		h.pushSlot(indexOf(remain), addr(rest.off))
		return c
	}

	c.setHeader(S, c.flags()|flagThisInUse)
	c.next().setFlag(flagPrevInUse, true)
	return c
}
