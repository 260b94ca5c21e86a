// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ats-srv starts a TDAQ server streaming acquisitions out of a
// simulated digitizer board.
package main // import "github.com/go-lpc/alazar/cmd/ats-srv"

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/alazar/acq"
	"github.com/go-lpc/alazar/ats"
	"github.com/go-lpc/alazar/conddb"
	"github.com/go-lpc/alazar/daqsrv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	model   = flag.String("model", "ATS9870", "model of the simulated board (ATS9870, ATS9360)")
	dbname  = flag.String("db", "", "name of the board configuration database")
	nbufs   = flag.Int("bufs", 64, "number of DMA buffers")
	timeout = flag.Duration("timeout", 5*time.Second, "buffer wait timeout")
	mmap    = flag.Bool("mmap", false, "allocate DMA buffers with mmap")
	alert   = flag.Bool("mail", false, "send a mail alert on failed acquisitions")
	metrics = flag.String("metrics", "", "[addr]:port of the prometheus metrics end-point")
)

func main() {
	cmd := flags.New()

	log.SetPrefix("ats-srv: ")
	log.SetFlags(0)

	m, err := ats.ParseModel(*model)
	if err != nil {
		log.Fatalf("could not parse board model: %+v", err)
	}

	board, err := ats.NewBoard(ats.NewMockDriver(m))
	if err != nil {
		log.Fatalf("could not create board: %+v", err)
	}

	reg := prometheus.NewRegistry()
	mon, err := acq.NewMetrics(reg)
	if err != nil {
		log.Fatalf("could not create metrics: %+v", err)
	}

	opts := []daqsrv.Option{
		daqsrv.WithAcqOptions(
			acq.WithBufferCount(*nbufs),
			acq.WithTimeout(*timeout),
			acq.WithMmap(*mmap),
			acq.WithMetrics(mon),
		),
	}

	if *dbname != "" {
		db, err := conddb.Open(*dbname)
		if err != nil {
			log.Fatalf("could not open board configuration db: %+v", err)
		}
		defer db.Close()
		opts = append(opts, daqsrv.WithConfigDB(db))
	}

	if *alert {
		opts = append(opts, daqsrv.WithMailAlert(daqsrv.MailConfigFromEnv()))
	}

	if *metrics != "" {
		go func() {
			err := http.ListenAndServe(*metrics, newMetricsMux(reg))
			if err != nil {
				log.Printf("could not serve metrics: %+v", err)
			}
		}()
	}

	name := "ats-srv"
	if len(cmd.Args) > 0 {
		name = cmd.Args[0]
	}

	srv := tdaq.New(cmd, os.Stdout)
	daqsrv.New(name, board, opts...).Register(srv)

	err = srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

func newMetricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "ats-srv metrics: ", 0),
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
	return mux
}
