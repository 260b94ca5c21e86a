// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"os"
	"time"

	"github.com/go-daq/tdaq/log"
)

const (
	defaultBufferCount = 64
	defaultTimeout     = 5 * time.Second
)

type config struct {
	nbufs   int           // number of buffers in the pool
	timeout time.Duration // timeout of a single wait
	queue   int           // capacity of the processing stage input queue
	mmap    bool          // back the buffer pool with anonymous mappings

	msg     log.MsgStream
	metrics *Metrics
}

func newConfig() config {
	return config{
		nbufs:   defaultBufferCount,
		timeout: defaultTimeout,
		msg:     log.NewMsgStream("acq", log.LvlInfo, os.Stdout),
	}
}

// Option configures an acquisition engine.
type Option func(*config)

// WithBufferCount sets the number of buffers of the pool.
func WithBufferCount(n int) Option {
	return func(cfg *config) {
		cfg.nbufs = n
	}
}

// WithTimeout sets the timeout of each wait for a filled buffer.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = timeout
	}
}

// WithQueueSize sets the capacity of the queue feeding the processing
// stage. The default is the number of buffers of the pool.
func WithQueueSize(n int) Option {
	return func(cfg *config) {
		cfg.queue = n
	}
}

// WithMmap backs the buffer pool with page-aligned anonymous mappings
// instead of Go heap memory.
func WithMmap(v bool) Option {
	return func(cfg *config) {
		cfg.mmap = v
	}
}

func WithMsgStream(msg log.MsgStream) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

func WithMetrics(m *Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}
