// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

// node is the intrusive doubly-linked list node living inside a free
// chunk's payload (cznic/memory's node{prev, next *node}, adapted so its
// members are heap-relative addresses rather than raw pointers: a node can
// then describe either a real chunk or one of the virtual slot-head /
// fast-full sentinels below).
type node struct {
	prev, next addr
}

// addr identifies a member of a free list: either a real chunk (its byte
// offset into the arena, always >= 0) or a virtual sentinel (negative).
type addr int64

const fastFullSentinel addr = -65

// slotSentinel returns the virtual address of slot i's list-head sentinel.
func slotSentinel(slot int) addr { return addr(-1 - int64(slot)) }

func (h *Heap) nodeAt(a addr) *node {
	if a < 0 {
		if a == fastFullSentinel {
			return &h.fastFull
		}
		return &h.heads[-1-int64(a)]
	}
	return h.chunkAt(int(a)).node()
}

// listInsert splices addr in as the new first element after headAddr's
// sentinel.
func (h *Heap) listInsert(headAddr, a addr) {
	head := h.nodeAt(headAddr)
	first := head.next
	n := h.nodeAt(a)
	n.prev = headAddr
	n.next = first
	h.nodeAt(first).prev = a
	head.next = a
}

// listRemove unlinks addr from whatever list it is currently on.
func (h *Heap) listRemove(a addr) {
	n := h.nodeAt(a)
	p, nx := n.prev, n.next
	h.nodeAt(p).next = nx
	h.nodeAt(nx).prev = p
}

// pushSlot inserts a free chunk at the front of slot's list and marks the
// slot non-empty in the bitmap.
func (h *Heap) pushSlot(slot int, a addr) {
	h.listInsert(slotSentinel(slot), a)
	h.bitmapSet(slot)
}

// popSlot removes and returns the first chunk of slot's list, or false if
// the list is empty. Clears the bitmap bit when the list becomes empty.
func (h *Heap) popSlot(slot int) (addr, bool) {
	sentinel := slotSentinel(slot)
	head := &h.heads[slot]
	if head.next == sentinel {
		return 0, false
	}
	a := head.next
	h.listRemove(a)
	if head.next == sentinel {
		h.bitmapClr(slot)
	}
	return a, true
}

// peekSlot returns the first chunk of slot's list without removing it, or
// false if the list is empty.
func (h *Heap) peekSlot(slot int) (addr, bool) {
	sentinel := slotSentinel(slot)
	head := &h.heads[slot]
	if head.next == sentinel {
		return 0, false
	}
	return head.next, true
}

// removeFromSlot removes a known member of slot's list (used by coalescing,
// which must remove an arbitrary neighbor, not just the head).
func (h *Heap) removeFromSlot(slot int, a addr) {
	h.listRemove(a)
	sentinel := slotSentinel(slot)
	if h.heads[slot].next == sentinel {
		h.bitmapClr(slot)
	}
}

// slotEmpty reports whether slot's list currently holds no chunks.
func (h *Heap) slotEmpty(slot int) bool {
	sentinel := slotSentinel(slot)
	return h.heads[slot].next == sentinel
}
