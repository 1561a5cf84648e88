// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

// SbrkFunc is the break primitive the Heap consumes: it
// extends the break by delta bytes and returns the *previous* break.
// delta == 0 returns the current break without growing anything. Returning
// an error signals OOM, surfaced to callers as a NULL/error return from
// Malloc/Realloc.
//
// Tests substitute a mock SbrkFunc (a closure over a plain byte slice) to
// exercise the OOM seed scenario without depending on real
// memory pressure.
type SbrkFunc func(delta int) (uintptr, error)

// reservedArena backs the default OS Sbrk implementation. A real sbrk(2)
// hands out contiguous, non-moving addresses; on a host with no such
// primitive the portable way to guarantee the same property is to reserve
// one large address-space region up front (mirroring the mmap reservation
// in cznic/memory's mmap_unix.go / mmap_windows.go) and serve Sbrk as bumps
// of a logical break cursor within it.
type reservedArena struct {
	mem []byte
	brk int
}

func (a *reservedArena) sbrk(delta int) (uintptr, error) {
	if delta < 0 {
		panic("brkalloc: sbrk delta must be >= 0")
	}
	base := uintptr(unsafe.Pointer(&a.mem[0]))
	prev := base + uintptr(a.brk)
	if delta == 0 {
		return prev, nil
	}
	if a.brk+delta > len(a.mem) {
		return 0, &OutOfMemoryError{Op: "sbrk", Requested: delta}
	}
	a.brk += delta
	return prev, nil
}

// newOSSbrk reserves size bytes of address space via the platform's mmap
// equivalent (reserve, in reserve_unix.go / reserve_windows.go) and returns
// an SbrkFunc bumping a break cursor within that reservation.
func newOSSbrk(size int) (SbrkFunc, error) {
	mem, err := reserve(size)
	if err != nil {
		return nil, err
	}
	a := &reservedArena{mem: mem}
	return a.sbrk, nil
}

// newMockSbrk returns an SbrkFunc over an ordinary Go byte slice, for tests
// that want deterministic, OS-independent growth (and the ability to force
// OOM by capping size).
func newMockSbrk(size int) SbrkFunc {
	a := &reservedArena{mem: make([]byte, size)}
	return a.sbrk
}
