// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ats-lcio-dump displays digitizer records stored in LCIO files.
//
// Usage: ats-lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> ats-lcio-dump ./run-001.slcio
//	=== run 1 (ATS) ===
//	samples/rec: 1024, recs/buf: 5, recs/acq: 10, chans: 2, width: 1
//	--- event 0 ---
//	CH0: records=5 min=0 max=255 mean=127.500
//	CH1: records=5 min=0 max=255 mean=127.500
//	[...]
package main // import "github.com/go-lpc/alazar/cmd/ats-lcio-dump"

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/go-lpc/alazar/proc"
	"go-hep.org/x/hep/lcio"
	"gonum.org/v1/gonum/floats"
)

const usage = `ats-lcio-dump displays digitizer records stored in LCIO files.

Usage: ats-lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> ats-lcio-dump ./run-001.slcio
 === run 1 (ATS) ===
 samples/rec: 1024, recs/buf: 5, recs/acq: 10, chans: 2, width: 1
 --- event 0 ---
 CH0: records=5 min=0 max=255 mean=127.500
 CH1: records=5 min=0 max=255 mean=127.500
 [...]

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("ats-lcio-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("ats-lcio-dump", flag.ExitOnError)

		nmax = fset.Int("n", -1, "maximum number of events to display (-1: all)")
		recs = fset.Bool("records", false, "display the samples of every record")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input LCIO file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *nmax, *recs)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, nmax int, recs bool) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	nchans := -1
	for i := 0; r.Next() && (nmax < 0 || i < nmax); i++ {
		if i == 0 {
			rhdr := r.RunHeader()
			nchans = header(wbuf, rhdr)
		}

		evt := r.Event()
		fmt.Fprintf(wbuf, "--- event %d ---\n", evt.EventNumber)
		for ch := 0; nchans < 0 || ch < nchans; ch++ {
			name := proc.CollectionName(ch)
			if !evt.Has(name) {
				if nchans < 0 {
					break
				}
				return fmt.Errorf("event %d has no collection %q", evt.EventNumber, name)
			}
			obj, ok := evt.Get(name).(*lcio.GenericObject)
			if !ok {
				return fmt.Errorf("event %d: invalid collection %q type %T", evt.EventNumber, name, evt.Get(name))
			}
			channel(wbuf, name, obj, recs)
		}
	}

	err = r.Err()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not read LCIO file: %w", err)
	}

	return nil
}

// header displays the run header and returns the number of channels,
// or -1 if the header does not carry it.
func header(w io.Writer, rhdr lcio.RunHeader) int {
	fmt.Fprintf(w, "=== run %d (%s) ===\n", rhdr.RunNumber, rhdr.Detector)

	get := func(k string) int32 {
		v, ok := rhdr.Params.Ints[k]
		if !ok || len(v) == 0 {
			return -1
		}
		return v[0]
	}
	fmt.Fprintf(w, "samples/rec: %d, recs/buf: %d, recs/acq: %d, chans: %d, width: %d\n",
		get("SamplesPerRecord"), get("RecordsPerBuffer"), get("RecordsPerAcquisition"),
		get("Channels"), get("SampleWidth"),
	)
	return int(get("Channels"))
}

func channel(w io.Writer, name string, obj *lcio.GenericObject, recs bool) {
	var (
		n   = 0
		sum = 0.0
		lo  = 0.0
		hi  = 0.0
	)
	for _, rec := range obj.Data {
		vs := make([]float64, len(rec.I32s))
		for i, v := range rec.I32s {
			vs[i] = float64(v)
		}
		if len(vs) == 0 {
			continue
		}
		if n == 0 {
			lo, hi = vs[0], vs[0]
		}
		lo = math.Min(lo, floats.Min(vs))
		hi = math.Max(hi, floats.Max(vs))
		sum += floats.Sum(vs)
		n += len(vs)
	}

	mean := 0.0
	if n > 0 {
		mean = sum / float64(n)
	}
	fmt.Fprintf(w, "%s: records=%d min=%g max=%g mean=%.3f\n", name, len(obj.Data), lo, hi, mean)

	if !recs {
		return
	}
	for i, rec := range obj.Data {
		fmt.Fprintf(w, "  rec=%03d %v\n", i, rec.I32s)
	}
}
