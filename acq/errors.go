// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a caller-supplied value is out
	// of contract. It is always detected before any device interaction.
	ErrInvalidParameter = errors.New("acq: invalid parameter")

	// ErrTimeout is wrapped by the DeviceError returned when waiting for
	// a buffer exceeded its timeout.
	ErrTimeout = errors.New("acq: wait timeout")

	// ErrEngineUsed is returned when an engine is asked to run more than
	// one acquisition.
	ErrEngineUsed = errors.New("acq: engine already used")

	// ErrStreamClosed is recorded by the processing stage when its input
	// stream ended before the expected number of buffers was received.
	ErrStreamClosed = errors.New("acq: buffer stream closed")
)

// DeviceError describes a failure of the underlying device.
type DeviceError struct {
	Op   string // operation that failed (arm, post, start, wait, abort)
	Code int    // device specific error code
	Err  error  // device error description
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("acq: device %s failed (code=%d): %+v", e.Op, e.Code, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ProcessorError describes a failure of a processor while handling
// a buffer. It is only ever recorded against that processor.
type ProcessorError struct {
	Name string // processor name
	Op   string // init, process or finish
	Buf  int    // buffer number, or -1
	Err  error
}

func (e *ProcessorError) Error() string {
	if e.Buf < 0 {
		return fmt.Sprintf("acq: processor %q could not %s: %+v", e.Name, e.Op, e.Err)
	}
	return fmt.Sprintf("acq: processor %q could not %s buffer %d: %+v", e.Name, e.Op, e.Buf, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// AbortError is recorded against every processor of a failed acquisition.
type AbortError struct {
	Err error // cause of the abort
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("acq: acquisition aborted: %+v", e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }
