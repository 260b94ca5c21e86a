// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Processor consumes the buffers of an acquisition.
//
// Init is called once before the first buffer, Process once per buffer in
// buffer order and Finish once after the last buffer of a successful
// acquisition. All calls happen on the processing goroutine.
type Processor interface {
	Name() string
	Init(p Params) error
	Process(buf Buffer) error
	Finish() error
	Result() (interface{}, error)
}

// Aborter is implemented by processors that need to be notified when an
// acquisition is aborted.
type Aborter interface {
	Abort(err error)
}

// Result is the outcome of a single processor.
type Result struct {
	Name  string
	Value interface{}
	Err   error
}

// ResultSet holds the results of every processor of an acquisition,
// in registration order.
type ResultSet struct {
	rs []Result
}

// Len returns the number of results.
func (set ResultSet) Len() int { return len(set.rs) }

// At returns the i-th result.
func (set ResultSet) At(i int) Result { return set.rs[i] }

// Names returns the processor names, in registration order.
func (set ResultSet) Names() []string {
	names := make([]string, len(set.rs))
	for i, r := range set.rs {
		names[i] = r.Name
	}
	return names
}

// Get returns the result of the named processor.
func (set ResultSet) Get(name string) (Result, bool) {
	for _, r := range set.rs {
		if r.Name == name {
			return r, true
		}
	}
	return Result{}, false
}

// Err returns the failures of all processors, or nil.
func (set ResultSet) Err() error {
	var err error
	for _, r := range set.rs {
		if r.Err == nil {
			continue
		}
		err = multierror.Append(err, r.Err)
	}
	return err
}

func validateProcs(procs []Processor) error {
	names := make(map[string]int, len(procs))
	for i, p := range procs {
		if p == nil {
			return fmt.Errorf("acq: nil processor at index %d: %w", i, ErrInvalidParameter)
		}
		name := p.Name()
		if j, dup := names[name]; dup {
			return fmt.Errorf("acq: duplicate processor name %q (index %d and %d): %w",
				name, j, i, ErrInvalidParameter,
			)
		}
		names[name] = i
	}
	return nil
}
