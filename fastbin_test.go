// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "testing"

func TestFastAllocServesExactly32Bytes(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	defer h.checkClean(t)

	p, err := h.Malloc(1)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(h.Bytes(p)); got != 32 {
		t.Fatalf("fast-bin Bytes length = %d, want 32", got)
	}
	h.Free(p)
}

func TestFastBinSlotOneOnlyHoldsBackingChunks(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	defer h.checkClean(t)

	// Cycle a variety of sizes through the general allocator, including
	// one 32-byte fast-bin request to populate slot 1 for real.
	var ps []uintptr
	for _, n := range []int{40, 48, 64, 100, 256, 1000, 1} {
		p, err := h.Malloc(n)
		if err != nil {
			t.Fatal(err)
		}
		ps = append(ps, p)
	}

	sentinel := slotSentinel(1)
	cur := h.nodeAt(sentinel).next
	for cur != sentinel {
		c := h.chunkAt(int(cur))
		if !c.reserved() {
			t.Fatalf("chunk at offset %d on slot 1 is not a fast-bin backing chunk", c.off)
		}
		cur = h.nodeAt(cur).next
	}

	for _, p := range ps {
		h.Free(p)
	}
}

func TestFastAllocReusesFreedCells(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	defer h.checkClean(t)

	var cells []uintptr
	for i := 0; i < fastBinCells; i++ {
		p, err := h.Malloc(1)
		if err != nil {
			t.Fatal(err)
		}
		cells = append(cells, p)
	}

	if _, ok := h.peekSlot(1); ok {
		t.Fatal("backing chunk should have migrated to fastFull once exhausted")
	}

	h.Free(cells[0])
	if _, ok := h.peekSlot(1); !ok {
		t.Fatal("freeing a cell must return its backing chunk to slot 1")
	}

	p, err := h.Malloc(1)
	if err != nil {
		t.Fatal(err)
	}
	if p != cells[0] {
		t.Fatalf("expected the freed cell %#x to be reused, got %#x", cells[0], p)
	}

	for _, c := range cells[1:] {
		h.Free(c)
	}
	h.Free(p)
}

func TestFastBinDisabledRoutesThroughGeneralAllocator(t *testing.T) {
	h := &Heap{}
	if err := h.Init(Options{PageSize: 4096, Sbrk: newMockSbrk(1 << 20), DisableFastBin: true}); err != nil {
		t.Fatal(err)
	}
	defer h.checkClean(t)

	p, err := h.Malloc(1)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(h.Bytes(p)), classSize(2)-headerSize; got < want {
		t.Fatalf("Bytes length = %d, want at least %d (the 48-byte class's payload)", got, want)
	}
	h.Free(p)
}
