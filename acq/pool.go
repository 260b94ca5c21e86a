// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"fmt"
	"io"

	"github.com/go-lpc/alazar/internal/mmap"
	"github.com/hashicorp/go-multierror"
)

type slotState uint8

const (
	slotOwned  slotState = iota // safe to read, the device may not write into it
	slotPosted                  // handed to the device
)

func (s slotState) String() string {
	switch s {
	case slotOwned:
		return "owned"
	case slotPosted:
		return "posted"
	}
	return fmt.Sprintf("slotState(%d)", uint8(s))
}

// Slot is a fixed-size buffer of a Pool.
type Slot struct {
	idx    int
	buf    []byte
	state  slotState
	unread bool // content filled by the device, not yet copied out
}

// Index returns the position of the slot in its pool.
func (s *Slot) Index() int { return s.idx }

// Bytes returns the memory region of the slot.
// Devices write into it between Post and Wait.
func (s *Slot) Bytes() []byte { return s.buf }

// Pool is a fixed-size ring of buffer slots, allocated once per
// acquisition.
type Pool struct {
	slots []Slot
	mem   []io.Closer
}

type allocator func(size int) ([]byte, io.Closer, error)

func heapAlloc(size int) ([]byte, io.Closer, error) {
	return make([]byte, size), nil, nil
}

func mmapAlloc(size int) ([]byte, io.Closer, error) {
	h, err := mmap.Anon(size)
	if err != nil {
		return nil, nil, err
	}
	return h.Bytes(), h, nil
}

func newPool(n, size int, alloc allocator) (*Pool, error) {
	if n < 2 {
		return nil, fmt.Errorf("acq: buffer count must be >= 2 (got=%d): %w", n, ErrInvalidParameter)
	}
	if size <= 0 {
		return nil, fmt.Errorf("acq: invalid buffer size %d: %w", size, ErrInvalidParameter)
	}
	if alloc == nil {
		alloc = heapAlloc
	}

	pool := &Pool{slots: make([]Slot, n)}
	for i := range pool.slots {
		buf, mem, err := alloc(size)
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("acq: could not allocate buffer %d (size=%d): %w", i, size, err)
		}
		if mem != nil {
			pool.mem = append(pool.mem, mem)
		}
		pool.slots[i] = Slot{idx: i, buf: buf}
	}

	return pool, nil
}

// Len returns the number of slots in the pool.
func (pool *Pool) Len() int { return len(pool.slots) }

// Slot returns the slot used for the i-th buffer of an acquisition.
func (pool *Pool) Slot(i int) *Slot {
	return &pool.slots[i%len(pool.slots)]
}

// Close releases the memory of the pool.
func (pool *Pool) Close() error {
	var err error
	for _, mem := range pool.mem {
		if e := mem.Close(); e != nil {
			err = multierror.Append(err, e)
		}
	}
	pool.mem = nil
	if err != nil {
		return fmt.Errorf("acq: could not release buffer pool: %w", err)
	}
	return nil
}

// post marks a slot as handed to the device.
// Slots holding data not yet copied out can not be posted.
func (pool *Pool) post(s *Slot) error {
	switch {
	case s.state != slotOwned:
		return fmt.Errorf("acq: could not post slot %d (state=%v)", s.idx, s.state)
	case s.unread:
		return fmt.Errorf("acq: could not post slot %d: content not copied out", s.idx)
	}
	s.state = slotPosted
	return nil
}

// fill marks a slot as filled by the device and owned by the engine.
func (pool *Pool) fill(s *Slot) error {
	if s.state != slotPosted {
		return fmt.Errorf("acq: could not take back slot %d (state=%v)", s.idx, s.state)
	}
	s.state = slotOwned
	s.unread = true
	return nil
}

// read copies the content of a filled slot out.
func (pool *Pool) read(s *Slot) ([]byte, error) {
	if s.state != slotOwned {
		return nil, fmt.Errorf("acq: could not read slot %d (state=%v)", s.idx, s.state)
	}
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	s.unread = false
	return out, nil
}
