// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// recorder records every event it observes.
type recorder struct {
	name   string
	events []string
	sizes  []int
	data   []byte

	failAt  int // buffer number failing, or -1
	panicAt int // buffer number panicking, or -1
	initErr error
}

func newRecorder(name string) *recorder {
	return &recorder{name: name, failAt: -1, panicAt: -1}
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Init(p Params) error {
	r.events = append(r.events, "init")
	return r.initErr
}

func (r *recorder) Process(buf Buffer) error {
	r.events = append(r.events, fmt.Sprintf("buf:%d", buf.Num))
	if buf.Num == r.panicAt {
		panic("boom")
	}
	if buf.Num == r.failAt {
		return fmt.Errorf("could not handle buffer %d", buf.Num)
	}
	r.sizes = append(r.sizes, len(buf.Data)/buf.Params.SampleWidth())
	r.data = append(r.data, buf.Data...)
	return nil
}

func (r *recorder) Finish() error {
	r.events = append(r.events, "finish")
	return nil
}

func (r *recorder) Abort(err error) {
	r.events = append(r.events, "abort")
}

func (r *recorder) Result() (interface{}, error) {
	return len(r.sizes), nil
}

// plain does not implement Aborter.
type plain struct{ name string }

func (p plain) Name() string                 { return p.name }
func (plain) Init(Params) error              { return nil }
func (plain) Process(Buffer) error           { return nil }
func (plain) Finish() error                  { return nil }
func (p plain) Result() (interface{}, error) { return p.name, nil }

func TestResultSet(t *testing.T) {
	errBad := errors.New("bad")
	set := ResultSet{rs: []Result{
		{Name: "p1", Value: 1},
		{Name: "p2", Err: errBad},
		{Name: "p3", Value: "v3"},
	}}

	if got, want := set.Len(), 3; got != want {
		t.Fatalf("invalid len: got=%d, want=%d", got, want)
	}

	if got, want := set.Names(), []string{"p1", "p2", "p3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid names: got=%q, want=%q", got, want)
	}

	r, ok := set.Get("p3")
	if !ok {
		t.Fatalf("could not find p3")
	}
	if got, want := r.Value, "v3"; got != want {
		t.Fatalf("invalid p3 value: got=%v, want=%v", got, want)
	}

	if _, ok := set.Get("p4"); ok {
		t.Fatalf("found non-existent result")
	}

	if got, want := set.At(1).Name, "p2"; got != want {
		t.Fatalf("invalid result: got=%q, want=%q", got, want)
	}

	err := set.Err()
	if !errors.Is(err, errBad) {
		t.Fatalf("invalid error: %+v", err)
	}

	if err := (ResultSet{}).Err(); err != nil {
		t.Fatalf("invalid error for empty set: %+v", err)
	}
}

func TestValidateProcs(t *testing.T) {
	for _, tc := range []struct {
		name  string
		procs []Processor
		ok    bool
	}{
		{name: "empty", ok: true},
		{name: "unique", procs: []Processor{plain{"a"}, plain{"b"}}, ok: true},
		{name: "nil", procs: []Processor{plain{"a"}, nil}},
		{name: "dup", procs: []Processor{plain{"a"}, plain{"b"}, plain{"a"}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := validateProcs(tc.procs)
			switch {
			case tc.ok && err != nil:
				t.Fatalf("could not validate processors: %+v", err)
			case !tc.ok && !errors.Is(err, ErrInvalidParameter):
				t.Fatalf("invalid error: %+v", err)
			}
		})
	}
}
