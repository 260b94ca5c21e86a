// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proc

import (
	"fmt"

	"github.com/go-lpc/alazar/acq"
	"gonum.org/v1/gonum/floats"
)

// Average computes the mean record of each channel.
// Its result is a [channel][sample] slice.
type Average struct {
	base
	sums [][]float64
	dst  []float64
}

func NewAverage(name string) *Average {
	return &Average{base: base{name: name}}
}

func (avg *Average) Init(p acq.Params) error {
	avg.reset(p)
	avg.dst = make([]float64, p.SamplesPerRecord())
	avg.sums = alloc2D(p.Channels(), p.SamplesPerRecord())
	return nil
}

func (avg *Average) Process(buf acq.Buffer) error {
	records(buf, avg.dst, func(ch, _ int, samples []float64) {
		floats.Add(avg.sums[ch], samples)
	})
	return nil
}

func (avg *Average) Finish() error {
	norm := 1 / float64(avg.p.RecordsPerAcquisition())
	for _, sum := range avg.sums {
		floats.Scale(norm, sum)
	}
	return nil
}

func (avg *Average) Result() (interface{}, error) {
	if err := avg.check(); err != nil {
		return nil, err
	}
	return avg.sums, nil
}

// AverageN computes the mean record of n interleaved record types.
// Record i of an acquisition is of type i%n.
// Its result is a [channel][type][sample] slice.
type AverageN struct {
	base
	n    int
	sums [][][]float64
	dst  []float64
}

func NewAverageN(name string, n int) (*AverageN, error) {
	if n < 1 {
		return nil, fmt.Errorf("proc: invalid number of record types %d", n)
	}
	return &AverageN{base: base{name: name}, n: n}, nil
}

func (avg *AverageN) Init(p acq.Params) error {
	if p.RecordsPerAcquisition()%avg.n != 0 {
		return fmt.Errorf(
			"proc: records per acquisition (%d) not a multiple of the number of record types (%d)",
			p.RecordsPerAcquisition(), avg.n,
		)
	}

	avg.reset(p)
	avg.dst = make([]float64, p.SamplesPerRecord())
	avg.sums = make([][][]float64, p.Channels())
	for i := range avg.sums {
		avg.sums[i] = alloc2D(avg.n, p.SamplesPerRecord())
	}
	return nil
}

func (avg *AverageN) Process(buf acq.Buffer) error {
	records(buf, avg.dst, func(ch, rec int, samples []float64) {
		floats.Add(avg.sums[ch][rec%avg.n], samples)
	})
	return nil
}

func (avg *AverageN) Finish() error {
	norm := float64(avg.n) / float64(avg.p.RecordsPerAcquisition())
	for _, types := range avg.sums {
		for _, sum := range types {
			floats.Scale(norm, sum)
		}
	}
	return nil
}

func (avg *AverageN) Result() (interface{}, error) {
	if err := avg.check(); err != nil {
		return nil, err
	}
	return avg.sums, nil
}

// Chunk computes, for each record, the mean of the samples in
// [start, stop). Record i of an acquisition is of type i%n.
// Its result is a [channel][type][record] slice.
type Chunk struct {
	base
	n     int
	start int
	stop  int
	data  [][][]float64
	dst   []float64
}

func NewChunk(name string, n, start, stop int) (*Chunk, error) {
	switch {
	case n < 1:
		return nil, fmt.Errorf("proc: invalid number of record types %d", n)
	case start < 0 || stop <= start:
		return nil, fmt.Errorf("proc: invalid chunk range [%d, %d)", start, stop)
	}
	return &Chunk{base: base{name: name}, n: n, start: start, stop: stop}, nil
}

func (c *Chunk) Init(p acq.Params) error {
	switch {
	case c.stop > p.SamplesPerRecord():
		return fmt.Errorf("proc: chunk stop %d larger than record length %d",
			c.stop, p.SamplesPerRecord(),
		)
	case p.RecordsPerAcquisition()%c.n != 0:
		return fmt.Errorf(
			"proc: records per acquisition (%d) not a multiple of the number of record types (%d)",
			p.RecordsPerAcquisition(), c.n,
		)
	}

	c.reset(p)
	c.dst = make([]float64, p.SamplesPerRecord())
	c.data = make([][][]float64, p.Channels())
	for i := range c.data {
		c.data[i] = alloc2D(c.n, p.RecordsPerAcquisition()/c.n)
	}
	return nil
}

func (c *Chunk) Process(buf acq.Buffer) error {
	norm := 1 / float64(c.stop-c.start)
	records(buf, c.dst, func(ch, rec int, samples []float64) {
		c.data[ch][rec%c.n][rec/c.n] = floats.Sum(samples[c.start:c.stop]) * norm
	})
	return nil
}

func (c *Chunk) Result() (interface{}, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.data, nil
}

var (
	_ acq.Processor = (*Average)(nil)
	_ acq.Processor = (*AverageN)(nil)
	_ acq.Processor = (*Chunk)(nil)
)
