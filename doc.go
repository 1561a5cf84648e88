// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory implements a boundary-tag, segregated-fit memory
// allocator over a manually grown heap.
//
// A Heap owns one contiguous arena obtained from an Sbrk primitive (an OS
// memory reservation by default) and hands out chunks from it through
// Malloc, Free and Realloc. Free chunks are tracked across 64 size-class
// lists: 30 fixed-size classes for small, frequently reused sizes, a
// handful of coarser dynamic classes for larger sizes, and one class
// reserved for an optional 32-byte fast bin. A 64-bit bitmap tracks which
// classes are currently non-empty so the next-larger-class fallback never
// has to scan an empty list.
//
// DefaultHeap is a package-level Heap for programs that only need one; its
// zero value must still be passed through Init before use, same as any
// other Heap.
package memory

// trace enables verbose per-call logging to stderr, useful when chasing a
// corrupted heap by hand. Off by default; flip during local debugging,
// never in committed code.
var trace = false

// DefaultHeap is a ready-to-Init, package-level Heap shared by the
// top-level Malloc/Free/Realloc/Bytes functions.
var DefaultHeap Heap

// Init prepares DefaultHeap for use.
func Init(opts Options) error { return DefaultHeap.Init(opts) }

// Malloc allocates from DefaultHeap.
func Malloc(n int) (uintptr, error) { return DefaultHeap.Malloc(n) }

// Free releases a block previously obtained from DefaultHeap.
func Free(p uintptr) { DefaultHeap.Free(p) }

// Realloc resizes a block previously obtained from DefaultHeap.
func Realloc(p uintptr, n int) (uintptr, error) { return DefaultHeap.Realloc(p, n) }

// Bytes returns a view of a block previously obtained from DefaultHeap.
func Bytes(p uintptr) []byte { return DefaultHeap.Bytes(p) }

// Close resets DefaultHeap to its zero value; its arena reservation is not
// returned to the OS.
func Close() error { return DefaultHeap.Close() }
