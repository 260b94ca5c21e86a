// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ats

import (
	"fmt"
)

// RetCode is a return code of the board driver.
type RetCode uint32

const (
	ApiSuccess        RetCode = 512
	ApiFailed         RetCode = 513
	ApiAccessDenied   RetCode = 514
	ApiBufferNotReady RetCode = 573
	ApiWaitTimeout    RetCode = 579
	ApiBufferOverflow RetCode = 582
)

var retcodes = map[RetCode]string{
	ApiSuccess:        "ApiSuccess",
	ApiFailed:         "ApiFailed",
	ApiAccessDenied:   "ApiAccessDenied",
	ApiBufferNotReady: "ApiBufferNotReady",
	ApiWaitTimeout:    "ApiWaitTimeout",
	ApiBufferOverflow: "ApiBufferOverflow",
}

func (rc RetCode) String() string {
	if name, ok := retcodes[rc]; ok {
		return name
	}
	return fmt.Sprintf("RetCode(%d)", uint32(rc))
}

func (rc RetCode) Error() string {
	return "ats: " + rc.String()
}
