// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ats

import (
	"fmt"
)

// Entry associates a configuration name with its driver code.
type Entry struct {
	Name string
	Code uint32
}

// Table is an ordered list of named driver codes.
type Table []Entry

// Lookup returns the driver code associated with name.
func (tbl Table) Lookup(name string) (uint32, bool) {
	for _, e := range tbl {
		if e.Name == name {
			return e.Code, true
		}
	}
	return 0, false
}

// Names returns the names of the table, in order.
func (tbl Table) Names() []string {
	names := make([]string, len(tbl))
	for i, e := range tbl {
		names[i] = e.Name
	}
	return names
}

func (tbl Table) code(kind, name string) (uint32, error) {
	v, ok := tbl.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("ats: invalid %s %q (valid: %q): %w", kind, name, tbl.Names(), ErrConfig)
	}
	return v, nil
}

var (
	channels = Table{
		{"A", 1},
		{"B", 2},
	}

	trigSources = Table{
		{"A", 0x0},
		{"B", 0x1},
		{"ext", 0x2},
	}

	clockSources = Table{
		{"internal", 1},
		{"external slow", 4},
		{"external fast", 5},
		{"external 10 MHz ref", 7},
	}

	clockEdges = Table{
		{"rising", 0},
		{"falling", 1},
	}

	trigSlopes = Table{
		{"rising", 1},
		{"falling", 2},
	}

	impedances = Table{
		{"1Mohm", 1},
		{"50ohm", 2},
	}

	bandwidths = Table{
		{"open", 0},
		{"limit", 1},
	}

	extCouplings = Table{
		{"ac", 1},
		{"dc", 2},
	}

	sampleRates9870 = Table{
		{"1 kS/s", 0x1},
		{"2 kS/s", 0x2},
		{"5 kS/s", 0x4},
		{"10 kS/s", 0x8},
		{"20 kS/s", 0xA},
		{"50 kS/s", 0xC},
		{"100 kS/s", 0xE},
		{"200 kS/s", 0x10},
		{"500 kS/s", 0x12},
		{"1 MS/s", 0x14},
		{"2 MS/s", 0x18},
		{"5 MS/s", 0x1A},
		{"10 MS/s", 0x1C},
		{"20 MS/s", 0x1E},
		{"50 MS/s", 0x22},
		{"100 MS/s", 0x24},
		{"250 MS/s", 0x2B},
		{"500 MS/s", 0x30},
		{"1 GS/s", 0x35},
		{"user-defined", 0x40},
		{"10 MHz ref", 1000000000},
	}

	sampleRates9360 = Table{
		{"1 kS/s", 0x1},
		{"2 kS/s", 0x2},
		{"5 kS/s", 0x4},
		{"10 kS/s", 0x8},
		{"20 kS/s", 0xA},
		{"50 kS/s", 0xC},
		{"100 kS/s", 0xE},
		{"200 kS/s", 0x10},
		{"500 kS/s", 0x12},
		{"1 MS/s", 0x14},
		{"2 MS/s", 0x18},
		{"5 MS/s", 0x1A},
		{"10 MS/s", 0x1C},
		{"20 MS/s", 0x1E},
		{"50 MS/s", 0x22},
		{"100 MS/s", 0x24},
		{"200 MS/s", 0x28},
		{"500 MS/s", 0x30},
		{"800 MS/s", 0x32},
		{"1 GS/s", 0x35},
		{"1.2 GS/s", 0x37},
		{"1.5 GS/s", 0x3A},
		{"1.8 GS/s", 0x3D},
		{"user-defined", 0x40},
	}

	ranges9870 = Table{
		{"40 mV", 0x2},
		{"100 mV", 0x5},
		{"200 mV", 0x6},
		{"400 mV", 0x7},
		{"1 V", 0xA},
		{"2 V", 0xB},
	}

	ranges9360 = Table{
		{"400 mV", 0x7},
	}

	couplings9870 = Table{
		{"ac", 1},
		{"dc", 2},
	}

	couplings9360 = Table{
		{"dc", 2},
	}

	trigRanges9870 = Table{
		{"5 V", 0},
	}

	trigRanges9360 = Table{
		{"2.5 V", 0x3},
		{"TTL", 0x2},
	}
)

// Channels returns the input channels of a board.
func Channels() Table { return channels }

// TriggerSources returns the sources of the trigger engine.
func TriggerSources() Table { return trigSources }

// ClockSources returns the capture clock sources.
func ClockSources() Table { return clockSources }

// SampleRates returns the sample rates supported by the model.
func (m Model) SampleRates() Table {
	switch m {
	case ATS9870:
		return sampleRates9870
	case ATS9360:
		return sampleRates9360
	}
	return nil
}

// InputRanges returns the input ranges supported by the model.
func (m Model) InputRanges() Table {
	switch m {
	case ATS9870:
		return ranges9870
	case ATS9360:
		return ranges9360
	}
	return nil
}

// Couplings returns the input couplings supported by the model.
func (m Model) Couplings() Table {
	switch m {
	case ATS9870:
		return couplings9870
	case ATS9360:
		return couplings9360
	}
	return nil
}

// TriggerRanges returns the external trigger ranges supported by the model.
func (m Model) TriggerRanges() Table {
	switch m {
	case ATS9870:
		return trigRanges9870
	case ATS9360:
		return trigRanges9360
	}
	return nil
}

// CheckDecimation reports whether dec is a valid decimation factor for the
// provided clock source.
func CheckDecimation(source string, dec int) bool {
	switch source {
	case "external 10 MHz ref":
		switch dec {
		case 1, 2, 4:
			return true
		}
		return dec > 0 && dec%10 == 0
	case "internal":
		return dec == 0
	}
	return dec >= 0
}
