// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
)

// State is the state of an acquisition engine.
type State int32

const (
	Idle       State = iota // engine created, nothing started
	Configured              // device armed
	Capturing               // device capturing into the buffer pool
	Draining                // capture over, processing stage finishing
	Terminated              // acquisition over
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configured:
		return "configured"
	case Capturing:
		return "capturing"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Engine runs a single streaming acquisition on a device.
// An engine can not be reused once its acquisition has started.
type Engine struct {
	dev Device
	cfg config

	used  atomic.Bool
	state atomic.Int32

	sent bool // abort signal sent to the processing stage
}

// NewEngine creates a new acquisition engine for the provided device.
func NewEngine(dev Device, opts ...Option) *Engine {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{dev: dev, cfg: cfg}
}

// Acquire runs an acquisition with a new engine.
func Acquire(dev Device, p Params, mask uint32, procs []Processor, opts ...Option) (ResultSet, error) {
	return NewEngine(dev, opts...).Acquire(p, mask, procs)
}

// State returns the current state of the engine.
func (eng *Engine) State() State {
	return State(eng.state.Load())
}

func (eng *Engine) setState(s State) {
	eng.state.Store(int32(s))
}

// Acquire captures p.BuffersPerAcquisition buffers from the channels
// selected by mask and feeds them to procs, in order.
//
// Acquire returns once the device has been aborted and every processor
// has been drained. The returned ResultSet holds one entry per processor,
// even when the acquisition failed.
func (eng *Engine) Acquire(p Params, mask uint32, procs []Processor) (ResultSet, error) {
	err := eng.validate(p, mask, procs)
	if err != nil {
		return ResultSet{}, err
	}

	if !eng.used.CompareAndSwap(false, true) {
		return ResultSet{}, ErrEngineUsed
	}

	return eng.run(p, mask, procs)
}

func (eng *Engine) validate(p Params, mask uint32, procs []Processor) error {
	switch {
	case eng.used.Load():
		return ErrEngineUsed
	case eng.dev == nil:
		return fmt.Errorf("acq: nil device: %w", ErrInvalidParameter)
	case p.nbufs < 1:
		return fmt.Errorf("acq: uninitialized acquisition parameters: %w", ErrInvalidParameter)
	case eng.cfg.nbufs < 2:
		return fmt.Errorf("acq: buffer count must be >= 2 (got=%d): %w",
			eng.cfg.nbufs, ErrInvalidParameter,
		)
	case eng.cfg.timeout <= 0:
		return fmt.Errorf("acq: invalid wait timeout %v: %w", eng.cfg.timeout, ErrInvalidParameter)
	case ChannelCount(mask) != p.nchans:
		return fmt.Errorf("acq: channel mask 0x%x selects %d channels, parameters need %d: %w",
			mask, ChannelCount(mask), p.nchans, ErrInvalidParameter,
		)
	}
	return validateProcs(procs)
}

func (eng *Engine) run(p Params, mask uint32, procs []Processor) (rs ResultSet, err error) {
	alloc := heapAlloc
	if eng.cfg.mmap {
		alloc = mmapAlloc
	}

	pool, err := newPool(eng.cfg.nbufs, p.bpb, alloc)
	if err != nil {
		eng.setState(Terminated)
		return rs, err
	}

	queue := eng.cfg.queue
	if queue <= 0 {
		queue = pool.Len()
	}

	var (
		msg = eng.cfg.msg
		stg = newStage(p, procs, queue, msg, eng.cfg.metrics)
	)
	go stg.run()

	defer func() {
		e := recover()
		close(stg.in)
		eng.setState(Draining)

		if aerr := eng.abort(); aerr != nil {
			msg.Errorf("could not abort device: %+v", aerr)
			if err != nil {
				aerr = multierror.Append(err, aerr)
			}
			err = aerr
		}

		rs = stg.collect()

		if cerr := pool.Close(); cerr != nil {
			msg.Errorf("%+v", cerr)
		}
		eng.setState(Terminated)
		eng.cfg.metrics.acquisition(err)

		if e != nil {
			panic(e)
		}
	}()

	msg.Debugf("starting acquisition: %v (buffers=%d, mask=0x%x)", p, pool.Len(), mask)
	err = eng.capture(pool, stg, p, mask)
	if err != nil {
		msg.Errorf("acquisition failed: %+v", err)
		return rs, err
	}
	msg.Debugf("acquisition done: %d buffers", p.nbufs)
	return rs, nil
}

func (eng *Engine) capture(pool *Pool, stg *stage, p Params, mask uint32) error {
	err := eng.dev.Arm(p, mask)
	if err != nil {
		return eng.fail(stg, "arm", fmt.Errorf("acq: could not arm device: %w", err))
	}
	eng.setState(Configured)

	for i := 0; i < pool.Len(); i++ {
		err = eng.post(pool, pool.Slot(i))
		if err != nil {
			return eng.fail(stg, "post", fmt.Errorf("acq: could not post buffer %d: %w", i, err))
		}
	}

	err = eng.dev.Start()
	if err != nil {
		return eng.fail(stg, "start", fmt.Errorf("acq: could not start capture: %w", err))
	}
	eng.setState(Capturing)

	for n := 0; n < p.nbufs; n++ {
		var (
			slot = pool.Slot(n)
			beg  = time.Now()
		)
		err = eng.dev.Wait(slot, eng.cfg.timeout)
		if err != nil {
			return eng.fail(stg, "wait", fmt.Errorf("acq: could not wait for buffer %d: %w", n, err))
		}

		err = pool.fill(slot)
		if err != nil {
			return eng.fail(stg, "wait", err)
		}

		data, err := pool.read(slot)
		if err != nil {
			return eng.fail(stg, "wait", err)
		}
		eng.cfg.metrics.buffer(len(data), time.Since(beg))
		stg.send(message{buf: &Buffer{Num: n, Data: data, Params: p}})

		// only repost slots a later wait will consume.
		if n+pool.Len() >= p.nbufs {
			continue
		}
		err = eng.post(pool, slot)
		if err != nil {
			return eng.fail(stg, "post", fmt.Errorf("acq: could not repost buffer %d: %w", n, err))
		}
	}

	return nil
}

func (eng *Engine) post(pool *Pool, slot *Slot) error {
	err := pool.post(slot)
	if err != nil {
		return err
	}
	return eng.dev.Post(slot)
}

func (eng *Engine) abort() error {
	err := eng.dev.Abort()
	if err != nil {
		return fmt.Errorf("acq: could not abort device: %w", deviceError("abort", err))
	}
	return nil
}

// fail sends the abort signal to the processing stage and returns the
// capture failure as a device error.
func (eng *Engine) fail(stg *stage, op string, err error) error {
	err = deviceError(op, err)
	if !eng.sent {
		eng.sent = true
		stg.send(message{abort: err})
	}
	return err
}

func deviceError(op string, err error) error {
	var derr *DeviceError
	if errors.As(err, &derr) {
		return err
	}
	return &DeviceError{Op: op, Code: -1, Err: err}
}
