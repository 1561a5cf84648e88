// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "testing"

// newTestHeap returns a Heap backed by a mock, in-process Sbrk (no real OS
// memory reservation), sized generously enough for the fuzz-style tests in
// this package while staying small enough to keep them fast.
func newTestHeap(t *testing.T, arenaSize int) *Heap {
	t.Helper()
	h := &Heap{}
	opts := Options{
		PageSize: 4096,
		Sbrk:     newMockSbrk(arenaSize),
	}
	if err := h.Init(opts); err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *Heap) checkClean(t *testing.T) {
	t.Helper()
	if h.allocs != 0 {
		t.Fatalf("heap not empty at end of test: %d outstanding allocations", h.allocs)
	}
}
