// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proc

import (
	"github.com/go-lpc/alazar/acq"
)

// Stats describes the buffers seen by a Count processor.
type Stats struct {
	Buffers int   // number of buffers
	Records int   // number of records, summed over channels
	Samples int   // number of samples, summed over channels
	Nums    []int // buffer numbers, in arrival order
}

// Count counts buffers, records and samples.
// Its result is a Stats value.
type Count struct {
	base
	stats Stats
}

func NewCount(name string) *Count {
	return &Count{base: base{name: name}}
}

func (c *Count) Init(p acq.Params) error {
	c.reset(p)
	c.stats = Stats{Nums: make([]int, 0, p.BuffersPerAcquisition())}
	return nil
}

func (c *Count) Process(buf acq.Buffer) error {
	p := buf.Params
	c.stats.Buffers++
	c.stats.Records += p.RecordsPerBuffer() * p.Channels()
	c.stats.Samples += len(buf.Data) / p.SampleWidth()
	c.stats.Nums = append(c.stats.Nums, buf.Num)
	return nil
}

func (c *Count) Result() (interface{}, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.stats, nil
}

// Concat concatenates the raw content of every buffer.
// Its result is a []byte.
type Concat struct {
	base
	data []byte
}

func NewConcat(name string) *Concat {
	return &Concat{base: base{name: name}}
}

func (c *Concat) Init(p acq.Params) error {
	c.reset(p)
	c.data = make([]byte, 0, p.BuffersPerAcquisition()*p.BytesPerBuffer())
	return nil
}

func (c *Concat) Process(buf acq.Buffer) error {
	c.data = append(c.data, buf.Data...)
	return nil
}

func (c *Concat) Result() (interface{}, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.data, nil
}

var (
	_ acq.Processor = (*Count)(nil)
	_ acq.Processor = (*Concat)(nil)
)
