// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ats

// Driver is the low-level interface to a single board.
// Its methods mirror the AlazarTech SDK entry points.
type Driver interface {
	BoardKind() Model

	SetCaptureClock(source, rate, edge, decimation uint32) RetCode
	InputControl(channel, coupling, rng, impedance uint32) RetCode
	SetBWLimit(channel, flag uint32) RetCode
	SetTriggerOperation(op, engine1, source1, slope1, level1, engine2, source2, slope2, level2 uint32) RetCode
	SetExternalTrigger(coupling, rng uint32) RetCode
	SetTriggerDelay(delay uint32) RetCode
	SetTriggerTimeOut(ticks uint32) RetCode

	SetRecordSize(pre, post uint32) RetCode
	BeforeAsyncRead(mask uint32, offset int32, samplesPerRecord, recordsPerBuffer, recordsPerAcq, flags uint32) RetCode
	PostAsyncBuffer(buf []byte) RetCode
	StartCapture() RetCode
	WaitAsyncBufferComplete(buf []byte, timeout uint32) RetCode
	AbortAsyncRead() RetCode
}

// trigger engine settings.
const (
	trigEngineOpJ = 0
	trigEngineJ   = 0
	trigEngineK   = 1
	trigDisable   = 3
)
