// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

// Chunk header flags, packed into the low 3 bits of the header's size word
// (chunkHeader.size). Size is
// always a multiple of 8 so the bits never collide with the magnitude.
const (
	flagPrevInUse = 1 << 0
	flagThisInUse = 1 << 1
	flagReserved  = 1 << 2 // marks the fast-bin backing chunk, see fastbin.go
	flagMask      = flagPrevInUse | flagThisInUse | flagReserved
)

const (
	headerSize = 8  // prevSize(u32) + sizeAndFlags(u32)
	nodeSize   = 16 // prev(i64) + next(i64), overlays the first 16 payload bytes of a free chunk
	minChunk   = 32 // headerSize + nodeSize (24), rounded up to 32
)

// align8 rounds n up to the next multiple of 8.
func align8(n int) int { return (n + 7) &^ 7 }

// chunkHeader overlays the first 8 bytes of every chunk. It is only ever
// reached through a chunkRef, which is bounds-checked against the arena it
// belongs to.
type chunkHeader struct {
	prevSize uint32
	size     uint32
}

// chunkRef is a validated cursor into a Heap's arena: a heap plus a byte
// offset, never a raw pointer, so a chunk reference can never outlive (or
// point past) the arena slice backing it.
type chunkRef struct {
	h   *Heap
	off int
}

// chunkAt returns a cursor for the chunk whose header starts at off. It
// panics if off is not a valid header position within the current arena,
// which would indicate heap corruption or a logic error upstream.
func (h *Heap) chunkAt(off int) chunkRef {
	if off < 0 || off+headerSize > len(h.arena) {
		panic("brkalloc: chunk offset out of range")
	}
	return chunkRef{h: h, off: off}
}

func (c chunkRef) header() *chunkHeader {
	return (*chunkHeader)(unsafe.Pointer(&c.h.arena[c.off]))
}

func (c chunkRef) prevSize() int { return int(c.header().prevSize) }
func (c chunkRef) setPrevSize(v int) { c.header().prevSize = uint32(v) }

func (c chunkRef) size() int { return int(c.header().size &^ uint32(flagMask)) }

func (c chunkRef) flags() uint32 { return c.header().size & flagMask }

func (c chunkRef) prevInUse() bool { return c.flags()&flagPrevInUse != 0 }
func (c chunkRef) thisInUse() bool { return c.flags()&flagThisInUse != 0 }
func (c chunkRef) reserved() bool  { return c.flags()&flagReserved != 0 }

// setHeader writes size and flags together; size must already be a multiple
// of 8.
func (c chunkRef) setHeader(size int, flags uint32) {
	c.header().size = uint32(size) | (flags & flagMask)
}

func (c chunkRef) setSize(size int) { c.setHeader(size, c.flags()) }

func (c chunkRef) setFlag(f uint32, v bool) {
	h := c.header()
	if v {
		h.size |= f
	} else {
		h.size &^= f
	}
}

// payload returns the offset of the first payload byte.
func (c chunkRef) payload() int { return c.off + headerSize }

// node overlays the first 16 payload bytes; valid only while c is free.
func (c chunkRef) node() *node {
	return (*node)(unsafe.Pointer(&c.h.arena[c.off+headerSize]))
}

// next returns a cursor for the chunk immediately following c in address
// order. Always valid: the tail sentinel guarantees there is always a next
// chunk to land on.
func (c chunkRef) next() chunkRef { return c.h.chunkAt(c.off + c.size()) }

// hasPrev reports whether c has a live predecessor chunk (false only for
// the head sentinel).
func (c chunkRef) hasPrev() bool { return c.off > 0 }

// prev returns a cursor for the chunk immediately preceding c in address
// order. Only valid when c.prevInUse() is false, or when c is otherwise
// known to have a free predecessor.
func (c chunkRef) prev() chunkRef { return c.h.chunkAt(c.off - c.prevSize()) }

func (c chunkRef) isTail() bool { return c.size() == 0 }

// markFree clears THIS_INUSE on c and refreshes the boundary tag on its
// successor (prevSize + PREV_INUSE) to match, so the next chunk can always
// find c's size without consulting c itself.
func (c chunkRef) markFree() {
	c.setFlag(flagThisInUse, false)
	succ := c.next()
	succ.setPrevSize(c.size())
	succ.setFlag(flagPrevInUse, false)
}

// markInUse sets THIS_INUSE on c and updates its successor's PREV_INUSE
// flag to match.
func (c chunkRef) markInUse() {
	c.setFlag(flagThisInUse, true)
	succ := c.next()
	succ.setFlag(flagPrevInUse, true)
}
