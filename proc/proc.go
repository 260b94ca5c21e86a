// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proc provides processors consuming the buffers of streaming
// acquisitions.
//
// Processors can be reused for several acquisitions: Init resets their
// state.
package proc // import "github.com/go-lpc/alazar/proc"

import (
	"errors"
	"fmt"

	"github.com/go-lpc/alazar/acq"
)

var errNotInit = errors.New("proc: processor not initialized")

type base struct {
	name string
	p    acq.Params
	init bool
	err  error // abort cause
}

func (b *base) Name() string { return b.name }

func (b *base) reset(p acq.Params) {
	b.p = p
	b.init = true
	b.err = nil
}

func (b *base) Finish() error { return nil }

func (b *base) Abort(err error) {
	if err == nil {
		err = errors.New("proc: unknown abort cause")
	}
	b.err = err
}

func (b *base) check() error {
	switch {
	case b.err != nil:
		return fmt.Errorf("proc: acquisition failed: %w", b.err)
	case !b.init:
		return errNotInit
	}
	return nil
}

// records calls f for every record of buf.
// rec is the index of the record within the acquisition.
func records(buf acq.Buffer, dst []float64, f func(ch, rec int, samples []float64)) {
	var (
		p   = buf.Params
		beg = buf.Num * p.RecordsPerBuffer()
	)
	for ch := 0; ch < p.Channels(); ch++ {
		for i := 0; i < p.RecordsPerBuffer(); i++ {
			buf.Samples(ch, i, dst)
			f(ch, beg+i, dst)
		}
	}
}

func alloc2D(n, m int) [][]float64 {
	var (
		data = make([]float64, n*m)
		out  = make([][]float64, n)
	)
	for i := range out {
		out[i] = data[i*m : (i+1)*m : (i+1)*m]
	}
	return out
}
