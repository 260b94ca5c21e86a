// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"fmt"

	"github.com/go-daq/tdaq/log"
)

// message is the unit sent from the capture loop to the processing stage.
// Exactly one of buf or abort is set.
type message struct {
	buf   *Buffer
	abort error
}

// stage runs the processors of an acquisition on buffers received from
// the capture loop.
type stage struct {
	p     Params
	procs []Processor
	errs  []error

	in  chan message
	out chan ResultSet

	msg     log.MsgStream
	metrics *Metrics
}

func newStage(p Params, procs []Processor, queue int, msg log.MsgStream, metrics *Metrics) *stage {
	if queue < 1 {
		queue = 1
	}
	return &stage{
		p:       p,
		procs:   procs,
		errs:    make([]error, len(procs)),
		in:      make(chan message, queue),
		out:     make(chan ResultSet, 1),
		msg:     msg,
		metrics: metrics,
	}
}

func (stg *stage) send(m message) {
	stg.in <- m
}

// collect blocks until the stage is drained and returns its results.
func (stg *stage) collect() ResultSet {
	return <-stg.out
}

// run feeds the processors until the acquisition is complete or aborted,
// then publishes the results on the out channel.
func (stg *stage) run() {
	stg.init()

	var cause error
loop:
	for i := 0; i < stg.p.nbufs; i++ {
		m, ok := <-stg.in
		switch {
		case !ok:
			cause = ErrStreamClosed
			break loop
		case m.abort != nil:
			cause = m.abort
			break loop
		}
		stg.process(*m.buf)
	}

	if cause != nil {
		stg.abort(cause)
	} else {
		stg.finish()
	}

	stg.out <- stg.results()
}

func (stg *stage) init() {
	for i, proc := range stg.procs {
		err := safeCall(func() error { return proc.Init(stg.p) })
		if err != nil {
			stg.fail(i, "init", -1, err)
		}
	}
}

func (stg *stage) process(buf Buffer) {
	for i, proc := range stg.procs {
		if stg.errs[i] != nil {
			continue
		}
		err := safeCall(func() error { return proc.Process(buf) })
		if err != nil {
			stg.fail(i, "process", buf.Num, err)
		}
	}
}

func (stg *stage) finish() {
	for i, proc := range stg.procs {
		if stg.errs[i] != nil {
			continue
		}
		err := safeCall(proc.Finish)
		if err != nil {
			stg.fail(i, "finish", -1, err)
		}
	}
}

func (stg *stage) abort(cause error) {
	stg.msg.Warnf("acquisition aborted: %+v", cause)
	for i, proc := range stg.procs {
		if stg.errs[i] == nil {
			stg.errs[i] = &AbortError{Err: cause}
		}
		if p, ok := proc.(Aborter); ok {
			err := safeCall(func() error { p.Abort(cause); return nil })
			if err != nil {
				stg.msg.Errorf("processor %q could not abort: %+v", proc.Name(), err)
			}
		}
	}
}

func (stg *stage) fail(i int, op string, buf int, err error) {
	name := stg.procs[i].Name()
	stg.errs[i] = &ProcessorError{Name: name, Op: op, Buf: buf, Err: err}
	stg.msg.Errorf("%+v", stg.errs[i])
	stg.metrics.procFailure(name, op)
}

func (stg *stage) results() ResultSet {
	set := ResultSet{rs: make([]Result, len(stg.procs))}
	for i, proc := range stg.procs {
		res := Result{Name: proc.Name(), Err: stg.errs[i]}
		if res.Err == nil {
			var v interface{}
			res.Err = safeCall(func() error {
				var err error
				v, err = proc.Result()
				return err
			})
			res.Value = v
		}
		set.rs[i] = res
	}
	return set
}

// safeCall runs f, turning a panic into an error.
func safeCall(f func() error) (err error) {
	defer func() {
		e := recover()
		if e == nil {
			return
		}
		switch e := e.(type) {
		case error:
			err = fmt.Errorf("panic: %w", e)
		default:
			err = fmt.Errorf("panic: %v", e)
		}
	}()
	return f()
}
