// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package yac

import (
	"sync"
	"time"
)

// Timer - single cancellable delay per round
//
// cancelling is idempotent and a callback firing after cancel is a
// no-op
type Timer struct {
	sync.Mutex
	timer     *time.Timer
	cancelled bool
}

// NewTimer - arm a timer; the callback runs once unless cancelled first
func NewTimer(delay time.Duration, callback func()) *Timer {
	t := &Timer{}
	t.timer = time.AfterFunc(delay, func() {
		t.Lock()
		cancelled := t.cancelled
		t.cancelled = true
		t.Unlock()
		if !cancelled {
			callback()
		}
	})
	return t
}

// Cancel - stop the timer; safe to call repeatedly
func (t *Timer) Cancel() {
	if nil == t {
		return
	}
	t.Lock()
	t.cancelled = true
	t.Unlock()
	t.timer.Stop()
}
