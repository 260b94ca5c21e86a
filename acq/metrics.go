// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects the acquisition metrics of one or more engines.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	buffers      prometheus.Counter
	bytes        prometheus.Counter
	acquisitions *prometheus.CounterVec // status: ok, failed
	procFailures *prometheus.CounterVec // processor, op
	waitDuration prometheus.Histogram
}

// NewMetrics creates the acquisition metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		buffers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "acq_buffers_total",
			Help: "Total number of buffers captured from the device",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "acq_bytes_total",
			Help: "Total number of bytes captured from the device",
		}),
		acquisitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acq_acquisitions_total",
				Help: "Total number of acquisitions, by final status",
			},
			[]string{"status"},
		),
		procFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acq_processor_failures_total",
				Help: "Total number of processor failures",
			},
			[]string{"processor", "op"},
		),
		waitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "acq_wait_duration_seconds",
			Help:    "Time spent waiting for the device to fill a buffer",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10), // 10us to ~2.6s
		}),
	}

	if reg != nil {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("acq: could not register metrics: %w", err)
		}
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.buffers.Describe(ch)
	m.bytes.Describe(ch)
	m.acquisitions.Describe(ch)
	m.procFailures.Describe(ch)
	m.waitDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.buffers.Collect(ch)
	m.bytes.Collect(ch)
	m.acquisitions.Collect(ch)
	m.procFailures.Collect(ch)
	m.waitDuration.Collect(ch)
}

func (m *Metrics) buffer(n int, wait time.Duration) {
	if m == nil {
		return
	}
	m.buffers.Inc()
	m.bytes.Add(float64(n))
	m.waitDuration.Observe(wait.Seconds())
}

func (m *Metrics) acquisition(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.acquisitions.WithLabelValues(status).Inc()
}

func (m *Metrics) procFailure(name, op string) {
	if m == nil {
		return
	}
	m.procFailures.WithLabelValues(name, op).Inc()
}
