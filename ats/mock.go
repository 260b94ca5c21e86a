// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ats

import (
	"encoding/binary"
	"sync"

	"github.com/go-lpc/alazar/acq"
)

// MockDriver simulates a board filling its DMA buffers.
//
// Each simulated record is a rising sawtooth: sample i holds the code
// i mod 2^bits, where bits is the resolution of the simulated model.
type MockDriver struct {
	Kind Model

	// Failure injection. A zero value disables the failure.
	WaitFailAt int     // 1-based index of the failing wait call
	WaitCode   RetCode // code returned by the failing wait
	PostFailAt int     // 1-based index of the failing post call
	AbortCode  RetCode // code returned by every abort
	ConfigCode RetCode // code returned by every configuration call

	mu    sync.Mutex
	cnt   Counters
	armed bool
	spr   int
	rpb   int
	nchan int
	queue [][]byte
	clock [4]uint32
	trig  [9]uint32
}

// Counters holds the number of calls made to a MockDriver.
type Counters struct {
	Config int
	Arm    int
	Post   int
	Start  int
	Wait   int
	Abort  int
	Filled int
}

// NewMockDriver returns a mock driver for the provided model.
func NewMockDriver(m Model) *MockDriver {
	return &MockDriver{Kind: m}
}

// Counters returns the number of calls made so far.
func (drv *MockDriver) Counters() Counters {
	drv.mu.Lock()
	defer drv.mu.Unlock()
	return drv.cnt
}

// Clock returns the last capture clock settings.
func (drv *MockDriver) Clock() (source, rate, edge, decimation uint32) {
	drv.mu.Lock()
	defer drv.mu.Unlock()
	return drv.clock[0], drv.clock[1], drv.clock[2], drv.clock[3]
}

// Trigger returns the last trigger operation settings.
func (drv *MockDriver) Trigger() [9]uint32 {
	drv.mu.Lock()
	defer drv.mu.Unlock()
	return drv.trig
}

func (drv *MockDriver) BoardKind() Model { return drv.Kind }

func (drv *MockDriver) config() RetCode {
	drv.mu.Lock()
	defer drv.mu.Unlock()
	drv.cnt.Config++
	if drv.ConfigCode != 0 {
		return drv.ConfigCode
	}
	return ApiSuccess
}

func (drv *MockDriver) SetCaptureClock(source, rate, edge, decimation uint32) RetCode {
	rc := drv.config()
	if rc == ApiSuccess {
		drv.mu.Lock()
		drv.clock = [4]uint32{source, rate, edge, decimation}
		drv.mu.Unlock()
	}
	return rc
}

func (drv *MockDriver) InputControl(channel, coupling, rng, impedance uint32) RetCode {
	return drv.config()
}

func (drv *MockDriver) SetBWLimit(channel, flag uint32) RetCode {
	return drv.config()
}

func (drv *MockDriver) SetTriggerOperation(op, engine1, source1, slope1, level1, engine2, source2, slope2, level2 uint32) RetCode {
	rc := drv.config()
	if rc == ApiSuccess {
		drv.mu.Lock()
		drv.trig = [9]uint32{op, engine1, source1, slope1, level1, engine2, source2, slope2, level2}
		drv.mu.Unlock()
	}
	return rc
}

func (drv *MockDriver) SetExternalTrigger(coupling, rng uint32) RetCode {
	return drv.config()
}

func (drv *MockDriver) SetTriggerDelay(delay uint32) RetCode {
	return drv.config()
}

func (drv *MockDriver) SetTriggerTimeOut(ticks uint32) RetCode {
	return drv.config()
}

func (drv *MockDriver) SetRecordSize(pre, post uint32) RetCode {
	drv.mu.Lock()
	defer drv.mu.Unlock()
	drv.spr = int(pre + post)
	return ApiSuccess
}

func (drv *MockDriver) BeforeAsyncRead(mask uint32, offset int32, samplesPerRecord, recordsPerBuffer, recordsPerAcq, flags uint32) RetCode {
	drv.mu.Lock()
	defer drv.mu.Unlock()

	drv.cnt.Arm++
	if drv.armed {
		return ApiFailed
	}
	drv.armed = true
	drv.spr = int(samplesPerRecord)
	drv.rpb = int(recordsPerBuffer)
	drv.nchan = acq.ChannelCount(mask)
	return ApiSuccess
}

func (drv *MockDriver) PostAsyncBuffer(buf []byte) RetCode {
	drv.mu.Lock()
	defer drv.mu.Unlock()

	drv.cnt.Post++
	switch {
	case drv.PostFailAt > 0 && drv.cnt.Post == drv.PostFailAt:
		return ApiFailed
	case !drv.armed:
		return ApiBufferNotReady
	}
	drv.queue = append(drv.queue, buf)
	return ApiSuccess
}

func (drv *MockDriver) StartCapture() RetCode {
	drv.mu.Lock()
	defer drv.mu.Unlock()

	drv.cnt.Start++
	if !drv.armed {
		return ApiFailed
	}
	return ApiSuccess
}

func (drv *MockDriver) WaitAsyncBufferComplete(buf []byte, timeout uint32) RetCode {
	drv.mu.Lock()
	defer drv.mu.Unlock()

	drv.cnt.Wait++
	if drv.WaitFailAt > 0 && drv.cnt.Wait == drv.WaitFailAt {
		if drv.WaitCode != 0 {
			return drv.WaitCode
		}
		return ApiWaitTimeout
	}

	if len(drv.queue) == 0 || len(buf) == 0 || &drv.queue[0][0] != &buf[0] {
		return ApiBufferNotReady
	}
	drv.queue = drv.queue[1:]
	drv.fill(buf)
	drv.cnt.Filled++
	return ApiSuccess
}

func (drv *MockDriver) fill(buf []byte) {
	var (
		width = drv.Kind.SampleWidth()
		mod   = 1 << drv.Kind.BitsPerSample()
		recs  = drv.nchan * drv.rpb
	)
	for r := 0; r < recs; r++ {
		rec := buf[r*drv.spr*width : (r+1)*drv.spr*width]
		for i := 0; i < drv.spr; i++ {
			v := i % mod
			switch width {
			case 1:
				rec[i] = byte(v)
			default:
				binary.LittleEndian.PutUint16(rec[2*i:], uint16(v))
			}
		}
	}
}

func (drv *MockDriver) AbortAsyncRead() RetCode {
	drv.mu.Lock()
	defer drv.mu.Unlock()

	drv.cnt.Abort++
	drv.armed = false
	drv.queue = nil
	if drv.AbortCode != 0 {
		return drv.AbortCode
	}
	return ApiSuccess
}

var _ Driver = (*MockDriver)(nil)
