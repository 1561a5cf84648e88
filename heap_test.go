// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "testing"

func TestRoundup(t *testing.T) {
	cases := []struct{ n, m, want int }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{4096, 4096, 4096},
		{4097, 4096, 8192},
	}
	for _, c := range cases {
		if g := roundup(c.n, c.m); g != c.want {
			t.Errorf("roundup(%d, %d) = %d, want %d", c.n, c.m, g, c.want)
		}
	}
}

func TestInitLaysDownSentinels(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	defer h.checkClean(t)

	head := h.chunkAt(0)
	if !head.thisInUse() || !head.prevInUse() {
		t.Fatal("head sentinel must read as in-use with no predecessor")
	}
	if head.hasPrev() {
		t.Fatal("head sentinel must report no predecessor")
	}

	// Walking forward from the head must reach exactly one tail chunk
	// (size 0, in-use) and nothing past it.
	cur := head
	steps := 0
	for !cur.isTail() {
		cur = cur.next()
		steps++
		if steps > 10000 {
			t.Fatal("walked too far without finding a tail sentinel")
		}
	}
	if !cur.thisInUse() {
		t.Fatal("tail sentinel must read as in-use")
	}

	// The first free chunk's PREV_INUSE must reflect the permanently
	// in-use head sentinel, or the heap is corrupt before a single
	// allocation has happened.
	first := h.chunkAt(headerSize)
	if !first.prevInUse() {
		t.Fatal("first chunk after the head sentinel must read PREV_INUSE=true")
	}
	h.checkInvariants(t)
}

func TestInitRejectsNegativeSizes(t *testing.T) {
	var h Heap
	if err := h.Init(Options{PageSize: -1}); err == nil {
		t.Fatal("expected error for negative PageSize")
	}
	var h2 Heap
	if err := h2.Init(Options{ArenaSize: -1}); err == nil {
		t.Fatal("expected error for negative ArenaSize")
	}
}

func TestGrowHeapExtendsTail(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	defer h.checkClean(t)

	before := len(h.arena)
	if err := h.growHeap(1); err != nil {
		t.Fatal(err)
	}
	if len(h.arena) <= before {
		t.Fatalf("arena did not grow: before=%d after=%d", before, len(h.arena))
	}

	// The new tail must still be a valid zero-size, in-use sentinel.
	tail := h.chunkAt(len(h.arena) - headerSize)
	if !tail.isTail() || !tail.thisInUse() {
		t.Fatal("growHeap left an invalid tail sentinel")
	}
}

func TestUninitializedHeapRejectsOps(t *testing.T) {
	var h Heap
	if _, err := h.Malloc(8); err == nil {
		t.Fatal("expected NotInitializedError from Malloc")
	}
	if _, err := h.Realloc(1, 8); err == nil {
		t.Fatal("expected NotInitializedError from Realloc")
	}
}
