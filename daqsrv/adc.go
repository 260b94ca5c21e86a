// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daqsrv

import (
	"bytes"
	"fmt"

	"github.com/go-daq/tdaq"
)

// ADC is the payload of an /adc frame: the mean record of each channel
// over one acquisition.
type ADC struct {
	Num     uint32      // acquisition number within the run
	Records uint32      // records averaged per channel
	Means   [][]float64 // [channel][sample]
}

func (adc ADC) MarshalTDAQ() ([]byte, error) {
	var (
		buf = new(bytes.Buffer)
		enc = tdaq.NewEncoder(buf)
		spr = 0
	)
	if len(adc.Means) > 0 {
		spr = len(adc.Means[0])
	}

	enc.WriteU32(adc.Num)
	enc.WriteU32(adc.Records)
	enc.WriteU32(uint32(len(adc.Means)))
	enc.WriteU32(uint32(spr))
	for ch, vs := range adc.Means {
		if len(vs) != spr {
			return nil, fmt.Errorf("daqsrv: channel %d has %d samples, want %d", ch, len(vs), spr)
		}
		for _, v := range vs {
			enc.WriteF64(v)
		}
	}

	if err := enc.Err(); err != nil {
		return nil, fmt.Errorf("daqsrv: could not encode adc frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (adc *ADC) UnmarshalTDAQ(p []byte) error {
	dec := tdaq.NewDecoder(bytes.NewReader(p))
	adc.Num = dec.ReadU32()
	adc.Records = dec.ReadU32()
	nchans := int(dec.ReadU32())
	spr := int(dec.ReadU32())
	if err := dec.Err(); err != nil {
		return fmt.Errorf("daqsrv: could not decode adc header: %w", err)
	}

	if want := 16 + 8*nchans*spr; len(p) != want {
		return fmt.Errorf("daqsrv: invalid adc frame size (got=%d, want=%d)", len(p), want)
	}

	adc.Means = make([][]float64, nchans)
	for ch := range adc.Means {
		adc.Means[ch] = make([]float64, spr)
		for i := range adc.Means[ch] {
			adc.Means[ch][i] = dec.ReadF64()
		}
	}

	if err := dec.Err(); err != nil {
		return fmt.Errorf("daqsrv: could not decode adc frame: %w", err)
	}
	return nil
}
