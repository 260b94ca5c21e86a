// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ats

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-daq/tdaq/log"
	"github.com/go-lpc/alazar/acq"
)

// Config holds the named settings of a board.
type Config struct {
	ClockSource string // capture clock source
	SampleRate  string
	Decimation  int
	ClockEdge   string

	InputRange string
	Channel    string // "all", "A" or "B"
	Coupling   string
	Impedance  string
	Bandwidth  string

	TrigSource  string
	TrigSlope   string
	TrigLevel   float64 // fraction of the full scale, in [-1, 1]
	ExtCoupling string
	ExtRange    string
	TrigDelay   int // in samples
}

// DefaultConfig returns a configuration valid for the provided model:
// internal clock at 10 MS/s, external trigger on a rising edge.
func DefaultConfig(m Model) Config {
	cfg := Config{
		ClockSource: "internal",
		SampleRate:  "10 MS/s",
		ClockEdge:   "rising",
		InputRange:  "1 V",
		Channel:     "all",
		Coupling:    "dc",
		Impedance:   "50ohm",
		Bandwidth:   "open",
		TrigSource:  "ext",
		TrigSlope:   "rising",
		TrigLevel:   0.2,
		ExtCoupling: "dc",
		ExtRange:    "5 V",
	}
	if m == ATS9360 {
		cfg.InputRange = "400 mV"
		cfg.ExtRange = "TTL"
	}
	return cfg
}

// Board is a configured digitizer board.
// Board implements acq.Device.
type Board struct {
	drv   Driver
	model Model
	msg   log.MsgStream

	armed bool
}

// Option configures a board.
type Option func(*Board)

// WithMsgStream sets the message stream used by the board.
func WithMsgStream(msg log.MsgStream) Option {
	return func(b *Board) {
		b.msg = msg
	}
}

// NewBoard creates a board from its driver.
func NewBoard(drv Driver, opts ...Option) (*Board, error) {
	model := drv.BoardKind()
	if !model.valid() {
		return nil, fmt.Errorf("ats: unsupported board model %v: %w", model, ErrConfig)
	}

	b := &Board{
		drv:   drv,
		model: model,
		msg:   log.NewMsgStream("ats", log.LvlInfo, os.Stdout),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Model returns the model of the board.
func (b *Board) Model() Model { return b.model }

func (b *Board) check(op string, rc RetCode) error {
	switch rc {
	case ApiSuccess:
		return nil
	case ApiWaitTimeout:
		return &acq.DeviceError{Op: op, Code: int(rc), Err: acq.ErrTimeout}
	}
	return &acq.DeviceError{Op: op, Code: int(rc), Err: rc}
}

// SetupCaptureClock configures the capture clock of the board.
func (b *Board) SetupCaptureClock(source, rate string, decimation int, edge string) error {
	src, err := clockSources.code("clock source", source)
	if err != nil {
		return err
	}

	sr, err := b.model.SampleRates().code("sample rate", rate)
	if err != nil {
		return err
	}

	if (rate == "10 MHz ref") != (source == "external 10 MHz ref") && b.model == ATS9870 {
		return fmt.Errorf("ats: sample rate %q incompatible with clock source %q: %w",
			rate, source, ErrConfig,
		)
	}

	if !CheckDecimation(source, decimation) {
		return fmt.Errorf("ats: invalid decimation %d for clock source %q: %w",
			decimation, source, ErrConfig,
		)
	}

	ed, err := clockEdges.code("clock edge", edge)
	if err != nil {
		return err
	}

	err = b.check("clock", b.drv.SetCaptureClock(src, sr, ed, uint32(decimation)))
	if err != nil {
		return fmt.Errorf("ats: could not set capture clock: %w", err)
	}
	b.msg.Debugf("capture clock: source=%q, rate=%q, decimation=%d, edge=%q", source, rate, decimation, edge)
	return nil
}

// SetupInputChannels configures the input stage of the selected channels.
func (b *Board) SetupInputChannels(rng, channel, coupling, impedance, bw string) error {
	var chans []uint32
	switch channel {
	case "all":
		for _, e := range channels {
			chans = append(chans, e.Code)
		}
	default:
		ch, err := channels.code("channel", channel)
		if err != nil {
			return err
		}
		chans = append(chans, ch)
	}

	rc, err := b.model.InputRanges().code("input range", rng)
	if err != nil {
		return err
	}

	cpl, err := b.model.Couplings().code("coupling", coupling)
	if err != nil {
		return err
	}

	imp, err := impedances.code("impedance", impedance)
	if err != nil {
		return err
	}

	bwl, err := bandwidths.code("bandwidth", bw)
	if err != nil {
		return err
	}

	for _, ch := range chans {
		err = b.check("input", b.drv.InputControl(ch, cpl, rc, imp))
		if err != nil {
			return fmt.Errorf("ats: could not configure input of channel %d: %w", ch, err)
		}

		err = b.check("input", b.drv.SetBWLimit(ch, bwl))
		if err != nil {
			return fmt.Errorf("ats: could not set bandwidth of channel %d: %w", ch, err)
		}
	}
	b.msg.Debugf("input channels %q: range=%q, coupling=%q, impedance=%q, bw=%q",
		channel, rng, coupling, impedance, bw,
	)
	return nil
}

// SetupOneTrigger configures the trigger engine J on a single source.
// level is a fraction of the full scale of the source, in [-1, 1].
func (b *Board) SetupOneTrigger(source, slope string, level float64, extCoupling, extRange string, delay int) error {
	src, err := trigSources.code("trigger source", source)
	if err != nil {
		return err
	}

	slp, err := trigSlopes.code("trigger slope", slope)
	if err != nil {
		return err
	}

	if math.IsNaN(level) || level < -1 || level > 1 {
		return fmt.Errorf("ats: invalid trigger level %v: %w", level, ErrConfig)
	}
	lvl := uint32(math.Round(128 + 127*level))

	cpl, err := extCouplings.code("external trigger coupling", extCoupling)
	if err != nil {
		return err
	}

	rng, err := b.model.TriggerRanges().code("external trigger range", extRange)
	if err != nil {
		return err
	}

	if delay < 0 {
		return fmt.Errorf("ats: invalid trigger delay %d: %w", delay, ErrConfig)
	}

	err = b.check("trigger", b.drv.SetTriggerOperation(
		trigEngineOpJ,
		trigEngineJ, src, slp, lvl,
		trigEngineK, trigDisable, slp, 128,
	))
	if err != nil {
		return fmt.Errorf("ats: could not set trigger operation: %w", err)
	}

	err = b.check("trigger", b.drv.SetExternalTrigger(cpl, rng))
	if err != nil {
		return fmt.Errorf("ats: could not set external trigger: %w", err)
	}

	err = b.check("trigger", b.drv.SetTriggerDelay(uint32(delay)))
	if err != nil {
		return fmt.Errorf("ats: could not set trigger delay: %w", err)
	}

	err = b.check("trigger", b.drv.SetTriggerTimeOut(0))
	if err != nil {
		return fmt.Errorf("ats: could not set trigger timeout: %w", err)
	}

	b.msg.Debugf("trigger: source=%q, slope=%q, level=%v, ext=(%q, %q), delay=%d",
		source, slope, level, extCoupling, extRange, delay,
	)
	return nil
}

// Configure applies the full configuration to the board.
func (b *Board) Configure(cfg Config) error {
	err := b.SetupCaptureClock(cfg.ClockSource, cfg.SampleRate, cfg.Decimation, cfg.ClockEdge)
	if err != nil {
		return err
	}

	err = b.SetupInputChannels(cfg.InputRange, cfg.Channel, cfg.Coupling, cfg.Impedance, cfg.Bandwidth)
	if err != nil {
		return err
	}

	err = b.SetupOneTrigger(cfg.TrigSource, cfg.TrigSlope, cfg.TrigLevel, cfg.ExtCoupling, cfg.ExtRange, cfg.TrigDelay)
	if err != nil {
		return err
	}

	b.msg.Infof("%v configured", b.model)
	return nil
}

// ChannelMask returns the channel mask and the number of channels for
// a channel selection ("all", "A" or "B").
func (b *Board) ChannelMask(sel string) (mask uint32, n int, err error) {
	if sel == "all" {
		for _, e := range channels {
			mask |= e.Code
		}
		return mask, len(channels), nil
	}

	mask, err = channels.code("channel selection", sel)
	if err != nil {
		return 0, 0, err
	}
	return mask, 1, nil
}

// Params creates the parameters of an acquisition on this board.
func (b *Board) Params(samplesPerRecord, recordsPerAcq, recordsPerBuffer, channels int) (acq.Params, error) {
	return acq.NewParams(
		b.model.Limits(),
		samplesPerRecord, recordsPerAcq, recordsPerBuffer,
		channels, b.model.SampleWidth(),
	)
}

// Acquire runs a streaming acquisition on the channels selected by sel.
func (b *Board) Acquire(samplesPerRecord, recordsPerAcq, recordsPerBuffer int, sel string, procs []acq.Processor, opts ...acq.Option) (acq.ResultSet, error) {
	mask, n, err := b.ChannelMask(sel)
	if err != nil {
		return acq.ResultSet{}, err
	}

	p, err := b.Params(samplesPerRecord, recordsPerAcq, recordsPerBuffer, n)
	if err != nil {
		return acq.ResultSet{}, err
	}

	return acq.Acquire(b, p, mask, procs, opts...)
}

// Arm prepares the board for a streaming acquisition.
func (b *Board) Arm(p acq.Params, mask uint32) error {
	if b.armed {
		return &acq.DeviceError{Op: "arm", Code: int(ApiFailed), Err: fmt.Errorf("ats: board already armed")}
	}

	err := b.check("arm", b.drv.SetRecordSize(0, uint32(p.SamplesPerRecord())))
	if err != nil {
		return err
	}

	err = b.check("arm", b.drv.BeforeAsyncRead(
		mask, 0,
		uint32(p.SamplesPerRecord()),
		uint32(p.RecordsPerBuffer()),
		uint32(p.RecordsPerAcquisition()),
		b.model.AutoDMAFlags(),
	))
	if err != nil {
		return err
	}

	b.armed = true
	return nil
}

func (b *Board) Post(s *acq.Slot) error {
	return b.check("post", b.drv.PostAsyncBuffer(s.Bytes()))
}

func (b *Board) Start() error {
	return b.check("start", b.drv.StartCapture())
}

func (b *Board) Wait(s *acq.Slot, timeout time.Duration) error {
	ms := timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return b.check("wait", b.drv.WaitAsyncBufferComplete(s.Bytes(), uint32(ms)))
}

// Abort stops any pending acquisition. Abort is safe to call on an
// idle board.
func (b *Board) Abort() error {
	b.armed = false
	return b.check("abort", b.drv.AbortAsyncRead())
}

var _ acq.Device = (*Board)(nil)
