// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proc

import (
	"fmt"

	"github.com/go-lpc/alazar/acq"
	"go-hep.org/x/hep/lcio"
)

// LCIO writes every buffer of an acquisition as an event of an LCIO file.
//
// Each event holds one collection per channel, named CH0, CH1, made of
// a generic object with one entry per record.
// Its result is the number of events written.
type LCIO struct {
	base
	fname string
	run   int32
	w     *lcio.Writer
	objs  []*lcio.GenericObject
	nevts int
}

// NewLCIO creates a processor writing to fname, with run as run number.
func NewLCIO(name, fname string, run int32) *LCIO {
	return &LCIO{base: base{name: name}, fname: fname, run: run}
}

// CollectionName returns the name of the collection holding channel i.
func CollectionName(i int) string {
	return fmt.Sprintf("CH%d", i)
}

func (l *LCIO) Init(p acq.Params) error {
	if l.w != nil {
		_ = l.w.Close()
		l.w = nil
	}

	w, err := lcio.Create(l.fname)
	if err != nil {
		return fmt.Errorf("proc: could not create LCIO file %q: %w", l.fname, err)
	}

	err = w.WriteRunHeader(&lcio.RunHeader{
		RunNumber: l.run,
		Detector:  "ATS",
		Params: lcio.Params{
			Ints: map[string][]int32{
				"SamplesPerRecord":      {int32(p.SamplesPerRecord())},
				"RecordsPerBuffer":      {int32(p.RecordsPerBuffer())},
				"RecordsPerAcquisition": {int32(p.RecordsPerAcquisition())},
				"Channels":              {int32(p.Channels())},
				"SampleWidth":           {int32(p.SampleWidth())},
			},
		},
	})
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("proc: could not write LCIO run header: %w", err)
	}

	l.reset(p)
	l.w = w
	l.nevts = 0
	l.objs = make([]*lcio.GenericObject, p.Channels())
	for i := range l.objs {
		data := make([]lcio.GenericObjectData, p.RecordsPerBuffer())
		for j := range data {
			data[j].I32s = make([]int32, p.SamplesPerRecord())
		}
		l.objs[i] = &lcio.GenericObject{Data: data}
	}
	return nil
}

func (l *LCIO) Process(buf acq.Buffer) error {
	evt := lcio.Event{
		RunNumber:   l.run,
		EventNumber: int32(buf.Num),
		Detector:    "ATS",
	}

	p := buf.Params
	for ch, obj := range l.objs {
		for rec := range obj.Data {
			i32s := obj.Data[rec].I32s
			for i := range i32s {
				i32s[i] = int32(buf.Sample(ch, rec, i))
			}
		}
		evt.Add(CollectionName(ch), obj)
	}

	err := l.w.WriteEvent(&evt)
	if err != nil {
		return fmt.Errorf("proc: could not write LCIO event %d (%v): %w", buf.Num, p, err)
	}
	l.nevts++
	return nil
}

func (l *LCIO) Finish() error {
	return l.close()
}

func (l *LCIO) Abort(err error) {
	l.base.Abort(err)
	_ = l.close()
}

func (l *LCIO) close() error {
	if l.w == nil {
		return nil
	}
	err := l.w.Close()
	l.w = nil
	if err != nil {
		return fmt.Errorf("proc: could not close LCIO file %q: %w", l.fname, err)
	}
	return nil
}

func (l *LCIO) Result() (interface{}, error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	return l.nevts, nil
}

var (
	_ acq.Processor = (*LCIO)(nil)
	_ acq.Aborter   = (*LCIO)(nil)
)
