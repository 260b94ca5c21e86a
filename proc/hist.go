// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proc

import (
	"fmt"

	"github.com/go-lpc/alazar/acq"
	"go-hep.org/x/hep/hbook"
)

// Hist fills, for each channel, a histogram of the sample codes.
// Its result is a []*hbook.H1D, one histogram per channel.
type Hist struct {
	base
	bits int
	hs   []*hbook.H1D
	dst  []float64
}

// NewHist creates a histogram processor for a digitizer with the provided
// resolution, in bits.
func NewHist(name string, bits int) (*Hist, error) {
	if bits < 1 || bits > 16 {
		return nil, fmt.Errorf("proc: invalid sample resolution %d", bits)
	}
	return &Hist{base: base{name: name}, bits: bits}, nil
}

func (h *Hist) Init(p acq.Params) error {
	h.reset(p)
	h.dst = make([]float64, p.SamplesPerRecord())

	n := 1 << h.bits
	h.hs = make([]*hbook.H1D, p.Channels())
	for i := range h.hs {
		h.hs[i] = hbook.NewH1D(n, 0, float64(n))
		h.hs[i].Annotation()["name"] = fmt.Sprintf("%s-ch%d", h.name, i)
	}
	return nil
}

func (h *Hist) Process(buf acq.Buffer) error {
	records(buf, h.dst, func(ch, _ int, samples []float64) {
		hh := h.hs[ch]
		for _, v := range samples {
			hh.Fill(v, 1)
		}
	})
	return nil
}

func (h *Hist) Result() (interface{}, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	return h.hs, nil
}

var _ acq.Processor = (*Hist)(nil)
