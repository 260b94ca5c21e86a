// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"fmt"
	"time"
)

// fakeDevice simulates a board filling buffers with a known pattern.
type fakeDevice struct {
	armErr   error
	startErr error
	abortErr error
	waitErr  map[int]error // indexed by wait call number
	postErr  map[int]error // indexed by post call number
	panicAt  int           // wait call number panicking, or -1

	// scribble overwrites posted slots, as a device writing into them would.
	scribble bool

	armed  bool
	queue  []*Slot
	calls  []string
	nwait  int
	npost  int
	nabort int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		waitErr: make(map[int]error),
		postErr: make(map[int]error),
		panicAt: -1,
	}
}

// fill is the content of the n-th filled buffer.
func fill(n int, buf []byte) {
	for i := range buf {
		buf[i] = byte((n*31 + i) % 251)
	}
}

func (dev *fakeDevice) Arm(p Params, mask uint32) error {
	dev.calls = append(dev.calls, "arm")
	if dev.armErr != nil {
		return dev.armErr
	}
	if dev.armed {
		return &DeviceError{Op: "arm", Code: 1, Err: fmt.Errorf("already armed")}
	}
	dev.armed = true
	return nil
}

func (dev *fakeDevice) Post(s *Slot) error {
	n := dev.npost
	dev.npost++
	dev.calls = append(dev.calls, fmt.Sprintf("post:%d", s.Index()))
	if err := dev.postErr[n]; err != nil {
		return err
	}
	if dev.scribble {
		buf := s.Bytes()
		for i := range buf {
			buf[i] = 0xff
		}
	}
	dev.queue = append(dev.queue, s)
	return nil
}

func (dev *fakeDevice) Start() error {
	dev.calls = append(dev.calls, "start")
	return dev.startErr
}

func (dev *fakeDevice) Wait(s *Slot, timeout time.Duration) error {
	n := dev.nwait
	dev.nwait++
	dev.calls = append(dev.calls, fmt.Sprintf("wait:%d", s.Index()))
	if n == dev.panicAt {
		panic("device exploded")
	}
	if err := dev.waitErr[n]; err != nil {
		return err
	}
	if len(dev.queue) == 0 || dev.queue[0] != s {
		return &DeviceError{Op: "wait", Code: 2, Err: fmt.Errorf("slot %d not at head of queue", s.Index())}
	}
	dev.queue = dev.queue[1:]
	fill(n, s.Bytes())
	return nil
}

func (dev *fakeDevice) Abort() error {
	dev.nabort++
	dev.calls = append(dev.calls, "abort")
	dev.armed = false
	dev.queue = dev.queue[:0]
	return dev.abortErr
}

func (dev *fakeDevice) count(name string) int {
	n := 0
	for _, c := range dev.calls {
		if c == name || (len(c) > len(name) && c[:len(name)+1] == name+":") {
			n++
		}
	}
	return n
}
