// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package daqsrv exposes a digitizer board as a go-daq/tdaq process.
//
// The server streams, over its /adc output, the mean record of each
// channel for every completed acquisition.
package daqsrv // import "github.com/go-lpc/alazar/daqsrv"

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-daq/tdaq"
	"github.com/go-lpc/alazar/acq"
	"github.com/go-lpc/alazar/ats"
	"github.com/go-lpc/alazar/proc"
)

// ConfigDB retrieves named board configurations.
type ConfigDB interface {
	BoardConfig(ctx context.Context, name string) (ats.Config, error)
}

type state int

const (
	stateIdle state = iota
	stateConfigured
	stateInitialized
)

type shape struct {
	spr, rpa, rpb int
}

// Server runs repeated acquisitions on a board under tdaq run control.
type Server struct {
	name     string
	board    *ats.Board
	db       ConfigDB
	alert    *alerter
	opts     []acq.Option
	maxFails int

	mu    sync.Mutex
	state state
	cfg   ats.Config
	shape shape
	run   uint32 // run number, bumped on each /start
	n     uint32 // acquisitions completed during the current run
	fails int    // consecutive failed acquisitions
	data  chan []byte
}

// Option configures a Server.
type Option func(*Server)

// WithConfigDB sets the database used to resolve configuration names.
func WithConfigDB(db ConfigDB) Option {
	return func(srv *Server) {
		srv.db = db
	}
}

// WithMailAlert reports failed acquisitions by mail.
func WithMailAlert(cfg MailConfig) Option {
	return func(srv *Server) {
		srv.alert = newAlerter(cfg)
	}
}

// WithAcqOptions sets the options of every acquisition.
func WithAcqOptions(opts ...acq.Option) Option {
	return func(srv *Server) {
		srv.opts = append(srv.opts, opts...)
	}
}

// WithMaxFailures sets the number of consecutive failed acquisitions
// after which a run is ended.
func WithMaxFailures(n int) Option {
	return func(srv *Server) {
		srv.maxFails = n
	}
}

// New creates a new server for the provided board.
func New(name string, board *ats.Board, opts ...Option) *Server {
	srv := &Server{
		name:     name,
		board:    board,
		maxFails: 3,
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.maxFails < 1 {
		srv.maxFails = 1
	}
	return srv
}

// Register installs the command, output and run handlers of the server.
func (srv *Server) Register(s *tdaq.Server) {
	s.CmdHandle("/config", srv.OnConfig)
	s.CmdHandle("/init", srv.OnInit)
	s.CmdHandle("/reset", srv.OnReset)
	s.CmdHandle("/start", srv.OnStart)
	s.CmdHandle("/stop", srv.OnStop)
	s.CmdHandle("/quit", srv.OnQuit)

	s.OutputHandle("/adc", srv.adc)

	s.RunHandle(srv.loop)
}

// OnConfig applies a board configuration.
// The request holds the configuration name (empty for the board
// defaults) followed by the samples per record, the records per
// acquisition and the records per buffer.
func (srv *Server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")

	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	name := dec.ReadStr()
	shp := shape{
		spr: int(dec.ReadU32()),
		rpa: int(dec.ReadU32()),
		rpb: int(dec.ReadU32()),
	}
	if err := dec.Err(); err != nil {
		ctx.Msg.Errorf("could not decode /config request: %+v", err)
		return fmt.Errorf("daqsrv: could not decode /config request: %w", err)
	}

	cfg, err := srv.config(ctx.Ctx, name)
	if err != nil {
		ctx.Msg.Errorf("could not retrieve board configuration %q: %+v", name, err)
		return err
	}

	_, n, err := srv.board.ChannelMask(cfg.Channel)
	if err != nil {
		ctx.Msg.Errorf("could not select channels %q: %+v", cfg.Channel, err)
		return fmt.Errorf("daqsrv: could not select channels: %w", err)
	}

	p, err := srv.board.Params(shp.spr, shp.rpa, shp.rpb, n)
	if err != nil {
		ctx.Msg.Errorf("could not validate acquisition parameters: %+v", err)
		return fmt.Errorf("daqsrv: could not validate acquisition parameters: %w", err)
	}

	err = srv.board.Configure(cfg)
	if err != nil {
		ctx.Msg.Errorf("could not configure board: %+v", err)
		return fmt.Errorf("daqsrv: could not configure board: %w", err)
	}

	srv.mu.Lock()
	srv.cfg = cfg
	srv.shape = shp
	srv.state = stateConfigured
	srv.mu.Unlock()

	ctx.Msg.Infof("configured %v with %q: %v", srv.board.Model(), name, p)
	return nil
}

func (srv *Server) config(ctx context.Context, name string) (ats.Config, error) {
	if name == "" {
		return ats.DefaultConfig(srv.board.Model()), nil
	}
	if srv.db == nil {
		return ats.Config{}, fmt.Errorf("daqsrv: no configuration db to resolve %q", name)
	}
	cfg, err := srv.db.BoardConfig(ctx, name)
	if err != nil {
		return cfg, fmt.Errorf("daqsrv: could not retrieve configuration %q: %w", name, err)
	}
	return cfg, nil
}

func (srv *Server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.state < stateConfigured {
		return fmt.Errorf("daqsrv: /init before /config")
	}
	srv.data = make(chan []byte, 16)
	srv.n = 0
	srv.fails = 0
	srv.state = stateInitialized
	return nil
}

func (srv *Server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.state = stateIdle
	srv.data = nil
	srv.n = 0
	srv.fails = 0
	return nil
}

func (srv *Server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.state < stateInitialized {
		return fmt.Errorf("daqsrv: /start before /init")
	}
	srv.run++
	srv.n = 0
	srv.fails = 0
	ctx.Msg.Debugf("received /start command... -> run=%d", srv.run)
	return nil
}

func (srv *Server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	srv.mu.Lock()
	n := srv.n
	srv.mu.Unlock()
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	return nil
}

func (srv *Server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

func (srv *Server) adc(ctx tdaq.Context, dst *tdaq.Frame) error {
	srv.mu.Lock()
	data := srv.data
	srv.mu.Unlock()

	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case raw := <-data:
		dst.Body = raw
	}
	return nil
}

// loop runs acquisitions until the run is stopped.
func (srv *Server) loop(ctx tdaq.Context) error {
	srv.mu.Lock()
	var (
		st   = srv.state
		shp  = srv.shape
		sel  = srv.cfg.Channel
		run  = srv.run
		data = srv.data
	)
	srv.mu.Unlock()

	if st < stateInitialized {
		return fmt.Errorf("daqsrv: run before /init")
	}

	opts := append([]acq.Option{acq.WithMsgStream(ctx.Msg)}, srv.opts...)
	for {
		select {
		case <-ctx.Ctx.Done():
			return nil
		default:
		}

		raw, err := srv.acquire(shp, sel, opts)
		if err != nil {
			ctx.Msg.Errorf("could not run acquisition (run=%d): %+v", run, err)
			if srv.alert != nil {
				if err := srv.alert.send(srv.name, run, err); err != nil {
					ctx.Msg.Warnf("%+v", err)
				}
			}
			if errors.Is(err, acq.ErrInvalidParameter) || errors.Is(err, ats.ErrConfig) {
				return err
			}

			srv.mu.Lock()
			srv.fails++
			fails := srv.fails
			srv.mu.Unlock()
			if fails >= srv.maxFails {
				return fmt.Errorf("daqsrv: too many failed acquisitions (%d): %w", fails, err)
			}
			continue
		}

		select {
		case <-ctx.Ctx.Done():
			return nil
		case data <- raw:
		}
	}
}

// acquire runs one acquisition and encodes its /adc payload.
func (srv *Server) acquire(shp shape, sel string, opts []acq.Option) ([]byte, error) {
	procs := []acq.Processor{
		proc.NewAverage("avg"),
		proc.NewCount("count"),
	}

	rs, err := srv.board.Acquire(shp.spr, shp.rpa, shp.rpb, sel, procs, opts...)
	if err != nil {
		return nil, err
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}

	avg, ok := rs.Get("avg")
	if !ok {
		return nil, fmt.Errorf("daqsrv: missing average result")
	}
	cnt, _ := rs.Get("count")
	means := avg.Value.([][]float64)
	if len(means) == 0 {
		return nil, fmt.Errorf("daqsrv: empty average result")
	}

	srv.mu.Lock()
	srv.fails = 0
	num := srv.n
	srv.n++
	srv.mu.Unlock()

	adc := ADC{
		Num:     num,
		Records: uint32(cnt.Value.(proc.Stats).Records / len(means)),
		Means:   means,
	}
	return adc.MarshalTDAQ()
}
