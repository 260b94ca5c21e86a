// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package acq implements the streaming acquisition engine for digitizer
// boards.
//
// An acquisition posts a small fixed pool of buffers to a device, waits for
// the device to fill them, copies their content to a processing stage
// running in its own goroutine and posts them back for reuse, until the
// requested number of buffers has been captured.
// The device is always aborted at the end of an acquisition, whether it
// succeeded or not.
package acq // import "github.com/go-lpc/alazar/acq"

import (
	"fmt"
)

// Limits describes the record-length constraints of a board model.
type Limits struct {
	MinRecordLength int // minimum number of samples per record
	Alignment       int // samples per record must be a multiple of Alignment
}

// Params describes the shape of one acquisition.
// Params values are created with NewParams and are read-only.
type Params struct {
	spr    int // samples per record
	rpa    int // records per acquisition
	rpb    int // records per buffer
	nchans int // number of channels
	width  int // sample width in bytes

	spb   int // samples per buffer
	bpb   int // bytes per buffer
	nbufs int // buffers per acquisition
	chunk int // samples of one channel in one buffer
}

// NewParams validates and creates the parameters of an acquisition.
func NewParams(lim Limits, samplesPerRecord, recordsPerAcq, recordsPerBuffer, channels, sampleWidth int) (Params, error) {
	var p Params
	switch {
	case recordsPerAcq < 1:
		return p, fmt.Errorf("acq: records per acquisition must be >= 1 (got=%d): %w",
			recordsPerAcq, ErrInvalidParameter,
		)
	case recordsPerBuffer < 1:
		return p, fmt.Errorf("acq: records per buffer must be >= 1 (got=%d): %w",
			recordsPerBuffer, ErrInvalidParameter,
		)
	case recordsPerAcq%recordsPerBuffer != 0:
		return p, fmt.Errorf(
			"acq: records per acquisition (%d) is not a multiple of records per buffer (%d): %w",
			recordsPerAcq, recordsPerBuffer, ErrInvalidParameter,
		)
	case samplesPerRecord < lim.MinRecordLength:
		return p, fmt.Errorf("acq: samples per record %d below minimum record length %d: %w",
			samplesPerRecord, lim.MinRecordLength, ErrInvalidParameter,
		)
	case lim.Alignment > 0 && samplesPerRecord%lim.Alignment != 0:
		return p, fmt.Errorf("acq: samples per record %d not a multiple of %d: %w",
			samplesPerRecord, lim.Alignment, ErrInvalidParameter,
		)
	case channels != 1 && channels != 2:
		return p, fmt.Errorf("acq: invalid number of channels %d: %w",
			channels, ErrInvalidParameter,
		)
	case sampleWidth != 1 && sampleWidth != 2:
		return p, fmt.Errorf("acq: invalid sample width %d: %w",
			sampleWidth, ErrInvalidParameter,
		)
	}

	p = Params{
		spr:    samplesPerRecord,
		rpa:    recordsPerAcq,
		rpb:    recordsPerBuffer,
		nchans: channels,
		width:  sampleWidth,
	}
	p.chunk = p.rpb * p.spr
	p.spb = p.chunk * p.nchans
	p.bpb = p.spb * p.width
	p.nbufs = p.rpa / p.rpb
	return p, nil
}

func (p Params) SamplesPerRecord() int      { return p.spr }
func (p Params) RecordsPerAcquisition() int { return p.rpa }
func (p Params) RecordsPerBuffer() int      { return p.rpb }
func (p Params) Channels() int              { return p.nchans }

// SampleWidth returns the size of a sample, in bytes.
func (p Params) SampleWidth() int { return p.width }

func (p Params) SamplesPerBuffer() int      { return p.spb }
func (p Params) BytesPerBuffer() int        { return p.bpb }
func (p Params) BuffersPerAcquisition() int { return p.nbufs }

// ChannelChunk returns the number of samples of a single channel held
// in one buffer.
func (p Params) ChannelChunk() int { return p.chunk }

func (p Params) String() string {
	return fmt.Sprintf(
		"Params{samples/rec=%d, recs/acq=%d, recs/buf=%d, chans=%d, width=%d, bufs/acq=%d, bytes/buf=%d}",
		p.spr, p.rpa, p.rpb, p.nchans, p.width, p.nbufs, p.bpb,
	)
}
