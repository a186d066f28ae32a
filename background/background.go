// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run a set of named goroutines with a common
// shutdown
package background

import (
	"github.com/bitmark-inc/logger"
)

// Process - the type signature for a background process
//
// the process must return promptly once the shutdown channel closes
type Process func(args interface{}, shutdown <-chan struct{})

// Processes - named processes to start together
type Processes map[string]Process

// T - handle to a running set
type T struct {
	log      *logger.L
	shutdown chan struct{}
	finished chan string
	count    int
}

// Start - run every process on its own goroutine
func Start(processes Processes, args interface{}) *T {
	t := &T{
		log:      logger.New("background"),
		shutdown: make(chan struct{}),
		finished: make(chan string, len(processes)),
		count:    len(processes),
	}

	for name, p := range processes {
		go func(name string, p Process) {
			t.log.Debugf("start: %s", name)
			p(args, t.shutdown)
			t.finished <- name
		}(name, p)
	}
	return t
}

// Stop - signal shutdown and wait for every process to finish
func (t *T) Stop() {
	if nil == t {
		return
	}
	close(t.shutdown)
	for i := 0; i < t.count; i += 1 {
		name := <-t.finished
		t.log.Debugf("finished: %s", name)
	}
}
