// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mmap provides page-aligned anonymous memory regions, suitable
// as destination buffers for DMA transfers.
package mmap // import "github.com/go-lpc/alazar/internal/mmap"

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// Handle is a page-aligned anonymous memory mapping.
type Handle struct {
	data []byte // full mapping, a multiple of the page size
	n    int    // requested size
}

// Anon creates a private anonymous mapping of at least size bytes.
// The mapping is rounded up to a multiple of the page size.
func Anon(size int) (*Handle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmap: invalid mapping size %d", size)
	}

	var (
		page = os.Getpagesize()
		sz   = ((size + page - 1) / page) * page
	)

	data, err := unix.Mmap(-1, 0, sz, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap: could not map %d bytes: %w", sz, err)
	}

	h := &Handle{data: data, n: size}
	runtime.SetFinalizer(h, (*Handle).Close)
	return h, nil
}

// Close unmaps the memory region.
func (h *Handle) Close() error {
	if h == nil {
		return os.ErrInvalid
	}

	if h.data == nil {
		return nil
	}
	data := h.data
	h.data = nil
	h.n = 0
	runtime.SetFinalizer(h, nil)

	return unix.Munmap(data)
}

// Bytes returns the requested region of the mapping.
// Bytes returns nil once the handle has been closed.
func (h *Handle) Bytes() []byte {
	if h == nil || h.data == nil {
		return nil
	}
	return h.data[:h.n:h.n]
}
