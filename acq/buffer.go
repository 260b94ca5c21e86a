// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"encoding/binary"
)

// Buffer is a copy of the content of one device buffer, handed to
// processors. Data is shared by all the processors of an acquisition and
// must be treated as read-only. Processors may keep references to it.
//
// Data is laid out channel after channel: the samples of channel c
// occupy the range [c*ChannelChunk, (c+1)*ChannelChunk), each channel
// holding RecordsPerBuffer records of SamplesPerRecord samples.
type Buffer struct {
	Num    int    // buffer number within the acquisition
	Data   []byte // raw sample codes
	Params Params
}

// Channel returns the bytes of the i-th selected channel.
func (buf Buffer) Channel(i int) []byte {
	n := buf.Params.chunk * buf.Params.width
	return buf.Data[i*n : (i+1)*n]
}

// Record returns the bytes of record rec of the i-th selected channel.
func (buf Buffer) Record(i, rec int) []byte {
	var (
		data = buf.Channel(i)
		n    = buf.Params.spr * buf.Params.width
	)
	return data[rec*n : (rec+1)*n]
}

// Sample returns the code of sample j of record rec of the i-th channel.
func (buf Buffer) Sample(i, rec, j int) uint16 {
	raw := buf.Record(i, rec)
	return decode(raw, buf.Params.width, j)
}

// Samples decodes record rec of the i-th channel into dst.
// Samples panics if dst is shorter than SamplesPerRecord.
func (buf Buffer) Samples(i, rec int, dst []float64) {
	var (
		raw   = buf.Record(i, rec)
		width = buf.Params.width
	)
	dst = dst[:buf.Params.spr]
	for j := range dst {
		dst[j] = float64(decode(raw, width, j))
	}
}

func decode(raw []byte, width, i int) uint16 {
	if width == 1 {
		return uint16(raw[i])
	}
	return binary.LittleEndian.Uint16(raw[2*i:])
}
