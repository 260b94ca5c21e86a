// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"math/bits"
	"time"
)

// Device is the streaming contract of a digitizer board.
//
// Arm configures the board for an acquisition described by p on the
// channels selected by mask. Post hands a slot to the device so it may be
// filled. Start begins the capture. Wait blocks until the given slot, which
// must be the oldest posted one, has been filled or until timeout elapsed.
// Abort cancels any pending capture and releases every posted slot; it is
// safe to call when nothing is active.
//
// Failures are reported as *DeviceError values. A wait timeout is reported
// as a *DeviceError wrapping ErrTimeout.
type Device interface {
	Arm(p Params, mask uint32) error
	Post(s *Slot) error
	Start() error
	Wait(s *Slot, timeout time.Duration) error
	Abort() error
}

// ChannelCount returns the number of channels selected by mask.
func ChannelCount(mask uint32) int {
	return bits.OnesCount32(mask)
}
