// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"math/bits"
	"unsafe"
)

// The fast bin is a bitmap-indexed slab of 32-byte cells embedded in one
// backing chunk, reserved for the common case of many same-size tiny
// objects. Its backing chunk's payload layout:
//
//	[0:16)   intrusive list node (reused from list.go: lets the backing
//	         chunk itself sit on slot 1's free list or the fastFull list)
//	[16:40)  fastBinMeta{avail, bitmapLo, bitmapHi}
//	[40:4136) 128 cells of 32 bytes each
//
// Slot 1 of the size-class table is never used by the general allocator
// (a 32-byte request goes to the fast bin, splitOrTake never produces a
// 32-byte remainder — see alloc.go — and Realloc's shrinkInPlace neither
// carves nor leaves a 32-byte chunk while the fast bin is enabled);
// when the fast bin is enabled it is entirely repurposed to track backing
// chunks that still have free cells. Exhausted backing chunks migrate to
// the fastFull list and back once a cell in them is freed.
const (
	fastBinCells   = 128
	fastBinMetaOff = nodeSize // meta sits right after the reused list node
	fastBinDataOff = fastBinMetaOff + 24
	fastBinRegion  = fastBinCells * minChunk // 4096
	fastBinBacking = headerSize + fastBinDataOff + fastBinRegion
)

type fastBinMeta struct {
	avail    uint64
	bitmapLo uint64
	bitmapHi uint64
}

func (c chunkRef) fastMeta() *fastBinMeta {
	return (*fastBinMeta)(unsafe.Pointer(&c.h.arena[c.off+headerSize+fastBinMetaOff]))
}

func (c chunkRef) fastCellsBase() int { return c.off + headerSize + fastBinDataOff }

// newFastBackingChunk allocates (via the ordinary huge path) a fresh
// fastBinBacking-byte chunk, initializes its slab metadata, flags it
// RESERVED, and lists it on slot 1.
func (h *Heap) newFastBackingChunk() (addr, error) {
	a, err := h.allocRaw(fastBinBacking)
	if err != nil {
		return 0, err
	}
	c := h.chunkAt(int(a))
	c.setFlag(flagReserved, true)
	m := c.fastMeta()
	m.avail = fastBinCells
	m.bitmapLo = ^uint64(0)
	m.bitmapHi = ^uint64(0)
	h.pushSlot(1, a)
	return a, nil
}

// fastAlloc returns a fresh 32-byte cell, creating a new backing chunk if
// none has room.
func (h *Heap) fastAlloc() (uintptr, error) {
	bAddr, ok := h.peekSlot(1)
	if !ok {
		var err error
		bAddr, err = h.newFastBackingChunk()
		if err != nil {
			return 0, err
		}
	}

	c := h.chunkAt(int(bAddr))
	m := c.fastMeta()
	var idx int
	switch {
	case m.bitmapLo != 0:
		idx = bits.TrailingZeros64(m.bitmapLo)
		m.bitmapLo &^= uint64(1) << uint(idx)
	case m.bitmapHi != 0:
		idx = bits.TrailingZeros64(m.bitmapHi)
		m.bitmapHi &^= uint64(1) << uint(idx)
		idx += 64
	default:
		panic("brkalloc: fast-bin backing chunk on slot 1 with no free cells")
	}
	m.avail--
	if m.avail == 0 {
		h.removeFromSlot(1, bAddr)
		h.listInsert(fastFullSentinel, bAddr)
	}

	return h.addrAt(c.fastCellsBase() + idx*minChunk), nil
}

// fastFree returns cell p to its backing chunk c, moving the chunk back
// onto slot 1 if it had been full.
func (h *Heap) fastFree(c chunkRef, p uintptr) {
	m := c.fastMeta()
	idx := int(p-h.addrAt(c.fastCellsBase())) / minChunk
	wasFull := m.avail == 0
	if idx < 64 {
		m.bitmapLo |= uint64(1) << uint(idx)
	} else {
		m.bitmapHi |= uint64(1) << uint(idx-64)
	}
	m.avail++
	if wasFull {
		h.listRemove(addr(c.off))
		h.pushSlot(1, addr(c.off))
	}
}

// findFastBackingChunk reports whether p falls within some fast-bin
// backing chunk's cell region, searching both the available (slot 1) and
// full (fastFull) lists.
func (h *Heap) findFastBackingChunk(p uintptr) (chunkRef, bool) {
	scan := func(head addr) (chunkRef, bool) {
		cur := h.nodeAt(head).next
		for cur != head {
			c := h.chunkAt(int(cur))
			base := h.addrAt(c.fastCellsBase())
			if p >= base && p < base+fastBinRegion && (p-base)%minChunk == 0 {
				return c, true
			}
			cur = h.nodeAt(cur).next
		}
		return chunkRef{}, false
	}
	if c, ok := scan(slotSentinel(1)); ok {
		return c, true
	}
	return scan(fastFullSentinel)
}
