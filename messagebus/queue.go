// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - the internal event queue
//
// consensus outcomes and other cross-subsystem events are queued here
// and drained by the node's single event loop, so the handlers of one
// subsystem are serialised without further locking
package messagebus

// internal constants
const (
	queueSize = 1000
)

// Message - one queued event
type Message struct {
	From string
	Item interface{}
}

var (
	// for queueing data
	queue = make(chan Message, queueSize)
)

// Send - data to queue; blocks when the consumer has fallen a full
// queue behind
func Send(from string, item interface{}) {
	queue <- Message{
		From: from,
		Item: item,
	}
}

// Chan - channel to read from
func Chan() <-chan Message {
	return queue
}

// Drain - discard everything currently queued
func Drain() {
	for {
		select {
		case <-queue:
		default:
			return
		}
	}
}
