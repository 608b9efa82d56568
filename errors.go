// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethif

import "errors"

var (
	// Caller misuse; reported synchronously, never retried here.
	ErrInvalidLength = errors.New("ethif: frame exceeds buffer capacity")
	ErrNoPhyDriver   = errors.New("ethif: no PHY or switch driver configured")
	ErrInvalidOpcode = errors.New("ethif: unsupported SMI opcode")

	// Transient resource exhaustion; retry after the next
	// transmitter-ready signal.
	ErrRingBusy = errors.New("ethif: no free transmit descriptor")

	// Drain-loop termination condition, not a failure.
	ErrBufferEmpty = errors.New("ethif: receive ring empty")

	// Errored frame discarded; ring resources were reclaimed.
	ErrInvalidPacket = errors.New("ethif: invalid packet")
)
