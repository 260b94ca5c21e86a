// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-lpc/alazar/ats"
)

type fakeDB struct {
	last string
	cfgs map[string]ats.Config
}

func (db fakeDB) LastBoardConfig(ctx context.Context) (string, error) {
	if db.last == "" {
		return "", errors.New("no board cfg")
	}
	return db.last, nil
}

func (db fakeDB) BoardConfig(ctx context.Context, name string) (ats.Config, error) {
	cfg, ok := db.cfgs[name]
	if !ok {
		return cfg, errors.New("no such board cfg")
	}
	return cfg, nil
}

func TestDoQuery(t *testing.T) {
	db := fakeDB{
		last: "lpc-9360",
		cfgs: map[string]ats.Config{
			"lpc-9870": ats.DefaultConfig(ats.ATS9870),
			"lpc-9360": ats.DefaultConfig(ats.ATS9360),
		},
	}

	for _, tc := range []struct {
		name  string
		cfg   string
		model ats.Model
		want  []string
		fail  bool
	}{
		{
			name:  "last",
			model: ats.ATS9360,
			want:  []string{`board cfg:    "lpc-9360"`, `range="400 mV"`, "ATS9360:      ok"},
		},
		{
			name:  "named",
			cfg:   "lpc-9870",
			model: ats.ATS9870,
			want:  []string{`board cfg:    "lpc-9870"`, `range="1 V"`, "ATS9870:      ok"},
		},
		{
			name:  "wrong-model",
			cfg:   "lpc-9360",
			model: ats.ATS9870,
			want:  []string{"ATS9870:      invalid"},
			fail:  true,
		},
		{
			name:  "missing",
			cfg:   "lpc-0000",
			model: ats.ATS9870,
			fail:  true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := new(bytes.Buffer)
			err := doQuery(out, db, tc.cfg, tc.model)
			switch {
			case tc.fail && err == nil:
				t.Fatalf("expected an error")
			case !tc.fail && err != nil:
				t.Fatalf("could not run query: %+v", err)
			}

			for _, want := range tc.want {
				if !strings.Contains(out.String(), want) {
					t.Fatalf("missing %q in output:\n%s", want, out.String())
				}
			}
		})
	}
}
