// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alazar holds code to stream data out of AlazarTech digitizers.
//
// The acquisition engine lives in package acq, the board facade in
// package ats and the stock processors in package proc.
package alazar // import "github.com/go-lpc/alazar"

import (
	"runtime/debug"
)

const modpath = "github.com/go-lpc/alazar"

// Version returns the version of alazar and its checksum.
// The returned values are only valid in binaries built with module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return versionOf(b)
}

func versionOf(b *debug.BuildInfo) (version, sum string) {
	if b == nil {
		return "", ""
	}

	if b.Main.Path == modpath {
		return modVersion(&b.Main)
	}

	for _, m := range b.Deps {
		if m.Path == modpath {
			return modVersion(m)
		}
	}
	return "", ""
}

func modVersion(m *debug.Module) (version, sum string) {
	r := m.Replace
	switch {
	case r == nil:
		return m.Version, m.Sum
	case r.Version != "" && r.Path != "":
		return r.Path + " " + r.Version, r.Sum
	case r.Version != "":
		return r.Version, r.Sum
	case r.Path != "":
		return r.Path, r.Sum
	}
	return m.Version + "*", ""
}
