// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// +build darwin dragonfly freebsd linux openbsd solaris netbsd

// Modifications (c) 2017 The Memory Authors.

package memory

import "syscall"

// reserve carves out size bytes of fresh, zeroed address space via an
// anonymous mmap, the same call cznic/memory's mmap_unix.go uses to back
// its own page allocations.
func reserve(size int) ([]byte, error) {
	flags := syscall.MAP_SHARED | syscall.MAP_ANON
	prot := syscall.PROT_READ | syscall.PROT_WRITE
	return syscall.Mmap(-1, 0, size, prot, flags)
}
