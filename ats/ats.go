// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ats configures AlazarTech ATS digitizer boards and exposes them
// as acquisition devices.
package ats // import "github.com/go-lpc/alazar/ats"

import (
	"errors"
	"fmt"

	"github.com/go-lpc/alazar/acq"
)

// ErrConfig is returned when a board configuration name or value is
// invalid for the board model.
var ErrConfig = errors.New("ats: invalid configuration")

// Model is the numeric board type reported by the driver.
type Model uint32

const (
	ATS9870 Model = 13
	ATS9360 Model = 25
)

func (m Model) String() string {
	switch m {
	case ATS9870:
		return "ATS9870"
	case ATS9360:
		return "ATS9360"
	}
	return fmt.Sprintf("Model(%d)", uint32(m))
}

// ParseModel returns the model with the provided name.
func ParseModel(name string) (Model, error) {
	for _, m := range []Model{ATS9870, ATS9360} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("ats: unknown board model %q: %w", name, ErrConfig)
}

func (m Model) valid() bool {
	return m == ATS9870 || m == ATS9360
}

// BitsPerSample returns the resolution of the digitizer.
func (m Model) BitsPerSample() int {
	switch m {
	case ATS9870:
		return 8
	case ATS9360:
		return 12
	}
	return 0
}

// SampleWidth returns the size in bytes of a sample in DMA buffers.
func (m Model) SampleWidth() int {
	return (m.BitsPerSample() + 7) / 8
}

// Limits returns the record length constraints of the model.
func (m Model) Limits() acq.Limits {
	switch m {
	case ATS9870:
		return acq.Limits{MinRecordLength: 256, Alignment: 64}
	case ATS9360:
		return acq.Limits{MinRecordLength: 256, Alignment: 128}
	}
	return acq.Limits{}
}

// AutoDMA flags.
const (
	admaExternalStartCapture = 0x001
	admaNPT                  = 0x200
	admaFIFOOnlyStreaming    = 0x800
)

// AutoDMAFlags returns the DMA mode used for streaming acquisitions.
func (m Model) AutoDMAFlags() uint32 {
	flags := uint32(admaNPT | admaExternalStartCapture)
	if m == ATS9360 {
		flags |= admaFIFOOnlyStreaming
	}
	return flags
}
