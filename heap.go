// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

const (
	defaultPageSize  = 4096
	defaultArenaSize = 256 << 20 // 256MiB reservation, plenty for a 64KiB-class allocator
)

// Options configures a Heap. The zero value is valid: PageSize and
// ArenaSize default to sensible sizes and Sbrk defaults to an OS-backed
// implementation (see sbrk.go).
type Options struct {
	// PageSize is the granularity of brk growth. Must be
	// a power of two (see roundup); defaults to 4096.
	PageSize int

	// ArenaSize bounds how much address space the default OS-backed Sbrk
	// reserves up front. Ignored if Sbrk is set. Defaults to 256MiB.
	ArenaSize int

	// Sbrk overrides the break primitive entirely. Tests use this to
	// mock OOM or to run against a plain Go byte
	// slice instead of OS memory.
	Sbrk SbrkFunc

	// DisableFastBin routes 32-byte requests through the 48-byte class
	// (slot 2) instead of the fast-bin slab. Default false (fast bin enabled).
	DisableFastBin bool
}

// Heap is a segregated-fit allocator over a single brk-grown arena. Its
// zero value is not ready for use; call Init first.
type Heap struct {
	opts  Options
	sbrk  SbrkFunc
	base  uintptr
	arena []byte

	heads    [numSlots]node
	bitmap   uint64
	fastFull node

	allocs int // outstanding allocations, for diagnostics/tests
	bytes  int // bytes obtained from Sbrk by growHeap (Init's 16 sentinel bytes not counted)

	inited bool
}

func (h *Heap) fastBinEnabled() bool { return !h.opts.DisableFastBin }

// Init prepares h for use: reserves (or accepts) a break primitive, lays
// down the head and tail sentinels, and grows the heap to hold at least one
// page of usable space.
func (h *Heap) Init(opts Options) error {
	if opts.PageSize < 0 {
		return &InvalidSizeError{Op: "Init.PageSize", Size: opts.PageSize}
	}
	if opts.ArenaSize < 0 {
		return &InvalidSizeError{Op: "Init.ArenaSize", Size: opts.ArenaSize}
	}
	if opts.PageSize == 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.ArenaSize == 0 {
		opts.ArenaSize = defaultArenaSize
	}

	sbrk := opts.Sbrk
	if sbrk == nil {
		var err error
		sbrk, err = newOSSbrk(opts.ArenaSize)
		if err != nil {
			return &OutOfMemoryError{Op: "init", Err: err}
		}
	}

	base, err := sbrk(0)
	if err != nil {
		return &OutOfMemoryError{Op: "init", Err: err}
	}

	*h = Heap{opts: opts, sbrk: sbrk, base: base}
	for i := range h.heads {
		s := slotSentinel(i)
		h.heads[i] = node{prev: s, next: s}
	}
	h.fastFull = node{prev: fastFullSentinel, next: fastFullSentinel}

	// Lay down the head sentinel and a zero-size placeholder tail so
	// growHeap's bookkeeping (which always assumes a live tail at the end
	// of the arena) has something to extend from.
	if _, err := sbrk(2 * headerSize); err != nil {
		return &OutOfMemoryError{Op: "init", Err: err}
	}
	h.arena = unsafe.Slice((*byte)(unsafe.Pointer(h.base)), 2*headerSize)
	head := h.chunkAt(0)
	head.setHeader(headerSize, flagPrevInUse|flagThisInUse)
	tail := h.chunkAt(headerSize)
	// The head sentinel is permanently in use, so the placeholder tail's
	// PREV_INUSE must be set too, or the first growHeap's "inherited"
	// flags computation (which reads them off this placeholder) hands the
	// first real free chunk a false PREV_INUSE=false and sends
	// coalesceBackward chasing a bogus predecessor.
	tail.setHeader(0, flagThisInUse|flagPrevInUse)

	if err := h.growHeap(opts.PageSize - 2*headerSize); err != nil {
		return err
	}
	h.inited = true
	return nil
}

// roundup returns the smallest multiple of m (a power of 2) that is >= n.
func roundup(n, m int) int { return (n + m - 1) &^ (m - 1) }

// growHeap extends the arena by at least minBytes (rounded up to the page
// size), places a new free chunk where the old tail sentinel sat, emits a
// fresh tail sentinel at the new high water mark, and attempts to coalesce
// the new free space backward before listing it.
func (h *Heap) growHeap(minBytes int) error {
	rounded := roundup(minBytes, h.opts.PageSize)
	if rounded <= 0 {
		rounded = h.opts.PageSize
	}

	oldLen := len(h.arena)
	oldTailOff := oldLen - headerSize

	if _, err := h.sbrk(rounded); err != nil {
		return &OutOfMemoryError{Op: "malloc", Requested: rounded, Err: err}
	}
	newLen := oldLen + rounded
	h.arena = unsafe.Slice((*byte)(unsafe.Pointer(h.base)), newLen)
	h.bytes += rounded

	newChunk := h.chunkAt(oldTailOff)
	inherited := newChunk.flags() &^ flagThisInUse
	newChunk.setHeader(rounded, inherited)

	newTail := h.chunkAt(oldTailOff + rounded)
	newTail.setHeader(0, flagThisInUse)
	newTail.setPrevSize(rounded)

	merged := h.coalesceBackward(newChunk)
	h.pushSlot(indexOf(merged.size()), addr(merged.off))
	return nil
}

// offsetOfPayload converts a payload pointer back to its chunk's header
// offset.
func (h *Heap) offsetOfPayload(p uintptr) int { return int(p-h.base) - headerSize }

// payloadAddr returns the payload pointer of the chunk whose header starts
// at off.
func (h *Heap) payloadAddr(off int) uintptr { return h.base + uintptr(off+headerSize) }

// addrAt returns the absolute address of arbitrary byte offset off, with no
// header adjustment (used by the fast bin, whose cells carry no per-cell
// header).
func (h *Heap) addrAt(off int) uintptr { return h.base + uintptr(off) }

// Bytes returns a slice over the payload of the chunk (or fast-bin cell)
// that p points to, sized to its usable capacity. p must have been
// returned by Malloc/Realloc on this Heap; a p whose chunk header would lie
// outside the arena makes it panic, and other invalid pointers are not
// detected.
func (h *Heap) Bytes(p uintptr) []byte {
	if h.fastBinEnabled() {
		if _, ok := h.findFastBackingChunk(p); ok {
			off := int(p - h.base)
			return h.arena[off : off+32]
		}
	}
	off := h.offsetOfPayload(p)
	c := h.chunkAt(off)
	return h.arena[c.payload() : c.payload()+c.size()-headerSize]
}

// Close resets h to its zero value. It does not unmap or otherwise return
// the arena's memory reservation to the OS. Not necessary to call before
// process exit.
func (h *Heap) Close() error {
	*h = Heap{}
	return nil
}
