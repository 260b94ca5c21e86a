// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ats

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-lpc/alazar/acq"
)

func TestModel(t *testing.T) {
	for _, tc := range []struct {
		m     Model
		name  string
		bits  int
		width int
		lim   acq.Limits
		flags uint32
	}{
		{ATS9870, "ATS9870", 8, 1, acq.Limits{MinRecordLength: 256, Alignment: 64}, 0x201},
		{ATS9360, "ATS9360", 12, 2, acq.Limits{MinRecordLength: 256, Alignment: 128}, 0xa01},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := tc.m.String(), tc.name; got != want {
				t.Fatalf("invalid name: got=%q, want=%q", got, want)
			}
			if got, want := tc.m.BitsPerSample(), tc.bits; got != want {
				t.Fatalf("invalid bits: got=%d, want=%d", got, want)
			}
			if got, want := tc.m.SampleWidth(), tc.width; got != want {
				t.Fatalf("invalid width: got=%d, want=%d", got, want)
			}
			if got, want := tc.m.Limits(), tc.lim; got != want {
				t.Fatalf("invalid limits: got=%+v, want=%+v", got, want)
			}
			if got, want := tc.m.AutoDMAFlags(), tc.flags; got != want {
				t.Fatalf("invalid flags: got=0x%x, want=0x%x", got, want)
			}

			m, err := ParseModel(tc.name)
			if err != nil {
				t.Fatalf("could not parse model: %+v", err)
			}
			if m != tc.m {
				t.Fatalf("invalid parsed model: got=%v, want=%v", m, tc.m)
			}
		})
	}

	if got, want := Model(42).String(), "Model(42)"; got != want {
		t.Fatalf("invalid name: got=%q, want=%q", got, want)
	}
	if _, err := ParseModel("ATS9999"); !errors.Is(err, ErrConfig) {
		t.Fatalf("invalid error: %+v", err)
	}
	if Model(42).SampleRates() != nil || Model(42).InputRanges() != nil {
		t.Fatalf("unknown model has tables")
	}
}

func TestTables(t *testing.T) {
	for _, tc := range []struct {
		name string
		tbl  Table
		key  string
		want uint32
	}{
		{"channels", Channels(), "B", 2},
		{"trig-sources", TriggerSources(), "ext", 2},
		{"clock-sources", ClockSources(), "external 10 MHz ref", 7},
		{"rates-9870", ATS9870.SampleRates(), "1 GS/s", 0x35},
		{"rates-9870-ref", ATS9870.SampleRates(), "10 MHz ref", 1000000000},
		{"rates-9360", ATS9360.SampleRates(), "1.8 GS/s", 0x3D},
		{"ranges-9870", ATS9870.InputRanges(), "40 mV", 0x2},
		{"ranges-9360", ATS9360.InputRanges(), "400 mV", 0x7},
		{"couplings-9870", ATS9870.Couplings(), "ac", 1},
		{"couplings-9360", ATS9360.Couplings(), "dc", 2},
		{"trig-ranges-9870", ATS9870.TriggerRanges(), "5 V", 0},
		{"trig-ranges-9360", ATS9360.TriggerRanges(), "TTL", 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.tbl.Lookup(tc.key)
			if !ok {
				t.Fatalf("could not find %q", tc.key)
			}
			if got != tc.want {
				t.Fatalf("invalid code: got=0x%x, want=0x%x", got, tc.want)
			}
		})
	}

	if _, ok := ATS9360.Couplings().Lookup("ac"); ok {
		t.Fatalf("ATS9360 does not support AC coupling")
	}
	if _, ok := ATS9360.SampleRates().Lookup("10 MHz ref"); ok {
		t.Fatalf("ATS9360 has no 10 MHz ref sample rate")
	}

	want := []string{"internal", "external slow", "external fast", "external 10 MHz ref"}
	if got := ClockSources().Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid names:\ngot= %q\nwant=%q", got, want)
	}
}

func TestCheckDecimation(t *testing.T) {
	for dec := -1; dec < 31; dec++ {
		want := dec == 1 || dec == 2 || dec == 4 || (dec > 0 && dec%10 == 0)
		if got := CheckDecimation("external 10 MHz ref", dec); got != want {
			t.Fatalf("invalid decimation check for %d: got=%v, want=%v", dec, got, want)
		}
	}

	for _, tc := range []struct {
		src  string
		dec  int
		want bool
	}{
		{"internal", 0, true},
		{"internal", 1, false},
		{"external fast", 0, true},
		{"external fast", 3, true},
		{"external slow", -1, false},
	} {
		if got := CheckDecimation(tc.src, tc.dec); got != tc.want {
			t.Fatalf("invalid decimation check for (%q, %d): got=%v, want=%v", tc.src, tc.dec, got, tc.want)
		}
	}
}

func TestRetCode(t *testing.T) {
	for _, tc := range []struct {
		rc   RetCode
		want string
	}{
		{ApiSuccess, "ApiSuccess"},
		{ApiWaitTimeout, "ApiWaitTimeout"},
		{ApiBufferOverflow, "ApiBufferOverflow"},
		{RetCode(1), "RetCode(1)"},
	} {
		if got := tc.rc.String(); got != tc.want {
			t.Fatalf("invalid retcode name: got=%q, want=%q", got, tc.want)
		}
	}

	if got, want := ApiFailed.Error(), "ats: ApiFailed"; got != want {
		t.Fatalf("invalid error: got=%q, want=%q", got, want)
	}
}
