// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethif

// Signal is a latching wakeup usable from interrupt context: setting
// an already-set signal is a no-op, never a block.
type Signal struct {
	c chan struct{}
}

func NewSignal() *Signal { return &Signal{c: make(chan struct{}, 1)} }

func (s *Signal) Set() {
	select {
	case s.c <- struct{}{}:
	default:
	}
}

// C is the wait channel; one receive consumes one wakeup.
func (s *Signal) C() <-chan struct{} { return s.c }

// Test consumes a pending wakeup without blocking.
func (s *Signal) Test() bool {
	select {
	case <-s.c:
		return true
	default:
		return false
	}
}
