// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proc

import (
	"github.com/go-lpc/alazar/acq"
)

// Raw keeps a copy of every record of an acquisition.
// Its result is a [channel][record][sample] slice of sample codes.
type Raw struct {
	base
	data [][][]float64
	dst  []float64
}

func NewRaw(name string) *Raw {
	return &Raw{base: base{name: name}}
}

func (r *Raw) Init(p acq.Params) error {
	r.reset(p)
	r.dst = make([]float64, p.SamplesPerRecord())
	r.data = make([][][]float64, p.Channels())
	for i := range r.data {
		r.data[i] = alloc2D(p.RecordsPerAcquisition(), p.SamplesPerRecord())
	}
	return nil
}

func (r *Raw) Process(buf acq.Buffer) error {
	records(buf, r.dst, func(ch, rec int, samples []float64) {
		copy(r.data[ch][rec], samples)
	})
	return nil
}

func (r *Raw) Result() (interface{}, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.data, nil
}

var (
	_ acq.Processor = (*Raw)(nil)
	_ acq.Aborter   = (*Raw)(nil)
)
