// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ats-sql displays a board configuration stored in the
// configuration database and checks it against a board model.
package main // import "github.com/go-lpc/alazar/cmd/ats-sql"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tlog "github.com/go-daq/tdaq/log"
	"github.com/go-lpc/alazar/ats"
	"github.com/go-lpc/alazar/conddb"
)

type configDB interface {
	LastBoardConfig(ctx context.Context) (string, error)
	BoardConfig(ctx context.Context, name string) (ats.Config, error)
}

func main() {
	log.SetPrefix("ats-sql: ")
	log.SetFlags(0)

	var (
		dbname = flag.String("db", "ats", "name of the board configuration database")
		cfg    = flag.String("cfg", "", "board configuration to inspect (default: most recent)")
		model  = flag.String("model", "ATS9870", "board model to check the configuration against")
	)

	flag.Parse()

	m, err := ats.ParseModel(*model)
	if err != nil {
		log.Fatalf("could not parse board model: %+v", err)
	}

	db, err := conddb.Open(*dbname)
	if err != nil {
		log.Fatalf("could not open board configuration db: %+v", err)
	}
	defer db.Close()

	err = doQuery(os.Stdout, db, *cfg, m)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(w io.Writer, db configDB, name string, m ats.Model) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if name == "" {
		v, err := db.LastBoardConfig(ctx)
		if err != nil {
			return fmt.Errorf("could not get last board cfg name: %w", err)
		}
		name = v
	}

	cfg, err := db.BoardConfig(ctx, name)
	if err != nil {
		return fmt.Errorf("could not get board cfg %q: %w", name, err)
	}

	fmt.Fprintf(w, "board cfg:    %q\n", name)
	fmt.Fprintf(w, "clock:        source=%q rate=%q decimation=%d edge=%q\n",
		cfg.ClockSource, cfg.SampleRate, cfg.Decimation, cfg.ClockEdge,
	)
	fmt.Fprintf(w, "inputs:       channel=%q range=%q coupling=%q impedance=%q bw=%q\n",
		cfg.Channel, cfg.InputRange, cfg.Coupling, cfg.Impedance, cfg.Bandwidth,
	)
	fmt.Fprintf(w, "trigger:      source=%q slope=%q level=%v ext=(%q, %q) delay=%d\n",
		cfg.TrigSource, cfg.TrigSlope, cfg.TrigLevel, cfg.ExtCoupling, cfg.ExtRange, cfg.TrigDelay,
	)

	// apply the configuration to a simulated board of the requested model.
	board, err := ats.NewBoard(ats.NewMockDriver(m), ats.WithMsgStream(tlog.NewMsgStream("ats", tlog.LvlError, io.Discard)))
	if err != nil {
		return fmt.Errorf("could not create %v board: %w", m, err)
	}
	err = board.Configure(cfg)
	if err != nil {
		fmt.Fprintf(w, "%-14sinvalid: %v\n", m.String()+":", err)
		return fmt.Errorf("invalid board cfg %q for %v: %w", name, m, err)
	}
	fmt.Fprintf(w, "%-14sok\n", m.String()+":")

	return nil
}
