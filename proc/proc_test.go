// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proc

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/go-lpc/alazar/acq"
)

func newParams(t *testing.T, spr, rpa, rpb, nchans, width int) acq.Params {
	t.Helper()
	p, err := acq.NewParams(acq.Limits{}, spr, rpa, rpb, nchans, width)
	if err != nil {
		t.Fatalf("could not create parameters: %+v", err)
	}
	return p
}

// randData returns [channel][record][sample] random sample codes.
func randData(p acq.Params, seed int64) [][][]uint16 {
	var (
		rnd = rand.New(rand.NewSource(seed))
		hi  = 256
	)
	if p.SampleWidth() == 2 {
		hi = 4096
	}
	data := make([][][]uint16, p.Channels())
	for ch := range data {
		data[ch] = make([][]uint16, p.RecordsPerAcquisition())
		for rec := range data[ch] {
			data[ch][rec] = make([]uint16, p.SamplesPerRecord())
			for i := range data[ch][rec] {
				data[ch][rec][i] = uint16(rnd.Intn(hi))
			}
		}
	}
	return data
}

// buffers lays data out as the device would.
func buffers(p acq.Params, data [][][]uint16) []acq.Buffer {
	var (
		rpb   = p.RecordsPerBuffer()
		spr   = p.SamplesPerRecord()
		width = p.SampleWidth()
		bufs  = make([]acq.Buffer, p.BuffersPerAcquisition())
	)
	for n := range bufs {
		raw := make([]byte, 0, p.BytesPerBuffer())
		for ch := 0; ch < p.Channels(); ch++ {
			for rec := n * rpb; rec < (n+1)*rpb; rec++ {
				for i := 0; i < spr; i++ {
					v := data[ch][rec][i]
					switch width {
					case 1:
						raw = append(raw, byte(v))
					default:
						raw = binary.LittleEndian.AppendUint16(raw, v)
					}
				}
			}
		}
		bufs[n] = acq.Buffer{Num: n, Data: raw, Params: p}
	}
	return bufs
}

// emulate runs procs over data as an acquisition would.
func emulate(t *testing.T, p acq.Params, data [][][]uint16, procs ...acq.Processor) {
	t.Helper()
	for _, proc := range procs {
		err := proc.Init(p)
		if err != nil {
			t.Fatalf("could not initialize %q: %+v", proc.Name(), err)
		}
	}
	for _, buf := range buffers(p, data) {
		for _, proc := range procs {
			err := proc.Process(buf)
			if err != nil {
				t.Fatalf("could not process buffer %d with %q: %+v", buf.Num, proc.Name(), err)
			}
		}
	}
	for _, proc := range procs {
		err := proc.Finish()
		if err != nil {
			t.Fatalf("could not finish %q: %+v", proc.Name(), err)
		}
	}
}

func result(t *testing.T, proc acq.Processor) interface{} {
	t.Helper()
	v, err := proc.Result()
	if err != nil {
		t.Fatalf("could not retrieve result of %q: %+v", proc.Name(), err)
	}
	return v
}

func TestAbort(t *testing.T) {
	avgn, err := NewAverageN("avgn", 1)
	if err != nil {
		t.Fatalf("could not create processor: %+v", err)
	}
	chunk, err := NewChunk("chunk", 1, 0, 1)
	if err != nil {
		t.Fatalf("could not create processor: %+v", err)
	}
	hist, err := NewHist("hist", 8)
	if err != nil {
		t.Fatalf("could not create processor: %+v", err)
	}

	p := newParams(t, 16, 4, 2, 1, 1)
	errAbort := errors.New("no trigger")

	for _, proc := range []acq.Processor{
		NewRaw("raw"),
		NewAverage("avg"),
		avgn,
		chunk,
		NewCount("count"),
		NewConcat("concat"),
		hist,
		NewLCIO("lcio", t.TempDir()+"/abort.lcio", 1),
	} {
		t.Run(proc.Name(), func(t *testing.T) {
			err := proc.Init(p)
			if err != nil {
				t.Fatalf("could not initialize: %+v", err)
			}
			proc.(acq.Aborter).Abort(errAbort)

			_, err = proc.Result()
			if !errors.Is(err, errAbort) {
				t.Fatalf("invalid error: %+v", err)
			}

			// re-initialization resets the processor.
			emulate(t, p, randData(p, 1), proc)
			if _, err := proc.Result(); err != nil {
				t.Fatalf("could not reuse processor: %+v", err)
			}
		})
	}
}

func TestNotInitialized(t *testing.T) {
	_, err := NewRaw("raw").Result()
	if !errors.Is(err, errNotInit) {
		t.Fatalf("invalid error: %+v", err)
	}
}

func TestRaw(t *testing.T) {
	for _, width := range []int{1, 2} {
		var (
			p    = newParams(t, 1024, 128, 64, 2, width)
			data = randData(p, 1234)
			raw  = NewRaw("raw")
		)
		emulate(t, p, data, raw)

		got := result(t, raw).([][][]float64)
		for ch := range data {
			for rec := range data[ch] {
				for i, v := range data[ch][rec] {
					if got[ch][rec][i] != float64(v) {
						t.Fatalf("width=%d: invalid sample (%d,%d,%d): got=%v, want=%d",
							width, ch, rec, i, got[ch][rec][i], v,
						)
					}
				}
			}
		}
	}
}

func TestAverage(t *testing.T) {
	p := newParams(t, 1024, 128, 64, 2, 1)
	avg := NewAverage("avg")

	same := make([][][]uint16, 2)
	for ch := range same {
		same[ch] = make([][]uint16, 128)
		for rec := range same[ch] {
			same[ch][rec] = make([]uint16, 1024)
			for i := range same[ch][rec] {
				same[ch][rec][i] = 1
			}
		}
	}
	emulate(t, p, same, avg)
	for ch, ave := range result(t, avg).([][]float64) {
		for i, v := range ave {
			if v != 1 {
				t.Fatalf("invalid average (%d,%d): got=%v, want=1", ch, i, v)
			}
		}
	}

	// reuse with random data.
	data := randData(p, 42)
	emulate(t, p, data, avg)
	got := result(t, avg).([][]float64)
	norm := 1 / float64(p.RecordsPerAcquisition())
	for ch := range data {
		for i := 0; i < p.SamplesPerRecord(); i++ {
			sum := 0.0
			for rec := range data[ch] {
				sum += float64(data[ch][rec][i])
			}
			if want := sum * norm; got[ch][i] != want {
				t.Fatalf("invalid average (%d,%d): got=%v, want=%v", ch, i, got[ch][i], want)
			}
		}
	}
}

func TestAverageN(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := NewAverageN("avgn", n)
		if err == nil {
			t.Fatalf("expected an error for n=%d", n)
		}
	}

	p := newParams(t, 1024, 128, 64, 2, 1)

	avg3, err := NewAverageN("avg3", 3)
	if err != nil {
		t.Fatalf("could not create processor: %+v", err)
	}
	if err := avg3.Init(p); err == nil {
		t.Fatalf("expected an error for records not divisible by 3")
	}

	for _, n := range []int{1, 2, 16} {
		var (
			data = randData(p, int64(n))
			avg  *AverageN
		)
		avg, err = NewAverageN("avgn", n)
		if err != nil {
			t.Fatalf("could not create processor: %+v", err)
		}
		emulate(t, p, data, avg)

		got := result(t, avg).([][][]float64)
		norm := float64(n) / float64(p.RecordsPerAcquisition())
		for ch := range data {
			for typ := 0; typ < n; typ++ {
				for i := 0; i < p.SamplesPerRecord(); i++ {
					sum := 0.0
					for rec := typ; rec < p.RecordsPerAcquisition(); rec += n {
						sum += float64(data[ch][rec][i])
					}
					if want := sum * norm; got[ch][typ][i] != want {
						t.Fatalf("n=%d: invalid average (%d,%d,%d): got=%v, want=%v",
							n, ch, typ, i, got[ch][typ][i], want,
						)
					}
				}
			}
		}
	}
}

func TestChunk(t *testing.T) {
	for _, tc := range []struct {
		n, start, stop int
	}{
		{0, 0, 1}, {1, -1, 1}, {1, 2, 2}, {1, 3, 2},
	} {
		_, err := NewChunk("chunk", tc.n, tc.start, tc.stop)
		if err == nil {
			t.Fatalf("expected an error for %+v", tc)
		}
	}

	p := newParams(t, 1024, 128, 64, 2, 1)

	for _, tc := range []struct {
		name           string
		n, start, stop int
	}{
		{"not-divisible", 3, 0, 1},
		{"stop-too-large", 1, 0, 1025},
	} {
		c, err := NewChunk(tc.name, tc.n, tc.start, tc.stop)
		if err != nil {
			t.Fatalf("could not create processor: %+v", err)
		}
		if err := c.Init(p); err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}

	for _, n := range []int{1, 2, 4, 16} {
		const start, stop = 0, 10
		data := randData(p, int64(n))
		c, err := NewChunk("chunk", n, start, stop)
		if err != nil {
			t.Fatalf("could not create processor: %+v", err)
		}
		emulate(t, p, data, c)

		got := result(t, c).([][][]float64)
		for ch := range data {
			if got, want := len(got[ch]), n; got != want {
				t.Fatalf("invalid number of record types: got=%d, want=%d", got, want)
			}
			for rec := range data[ch] {
				sum := 0.0
				for _, v := range data[ch][rec][start:stop] {
					sum += float64(v)
				}
				want := sum * (1 / float64(stop-start))
				if got := got[ch][rec%n][rec/n]; got != want {
					t.Fatalf("n=%d: invalid chunk (%d,%d): got=%v, want=%v", n, ch, rec, got, want)
				}
			}
		}
	}
}

func TestCountConcat(t *testing.T) {
	var (
		p      = newParams(t, 256, 12, 3, 2, 2)
		data   = randData(p, 7)
		count  = NewCount("count")
		concat = NewConcat("concat")
	)
	emulate(t, p, data, count, concat)

	want := Stats{
		Buffers: 4,
		Records: 24,
		Samples: 24 * 256,
		Nums:    []int{0, 1, 2, 3},
	}
	if got := result(t, count).(Stats); !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid stats:\ngot= %+v\nwant=%+v", got, want)
	}

	var exp []byte
	for _, buf := range buffers(p, data) {
		exp = append(exp, buf.Data...)
	}
	if got := result(t, concat).([]byte); !reflect.DeepEqual(got, exp) {
		t.Fatalf("invalid concatenation")
	}
}
