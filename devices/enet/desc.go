// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enet

import "github.com/platinasystems/ethif"

// Enhanced 8-word descriptors.  Word 0 holds control/status plus the
// byte count, word 1 the buffer address, word 2 interrupt generation
// control, word 4 the descriptor-updated flag written back by the DMA
// engine.  Every frame occupies exactly one buffer.
const (
	rbd0_empty     = 1 << 31
	rbd0_wrap      = 1 << 29
	rbd0_last      = 1 << 27
	rbd0_len_trunc = 1 << 21
	rbd0_nonoctet  = 1 << 20
	rbd0_crc_err   = 1 << 18
	rbd0_overrun   = 1 << 17
	rbd0_truncated = 1 << 16
	rbd0_len_mask  = 0xffff
	rbd0_err_mask  = rbd0_len_trunc | rbd0_nonoctet | rbd0_crc_err |
		rbd0_overrun | rbd0_truncated

	rbd2_int = 1 << 23

	tbd0_ready    = 1 << 31
	tbd0_wrap     = 1 << 29
	tbd0_last     = 1 << 27
	tbd0_send_crc = 1 << 26
	tbd0_len_mask = 0xffff

	tbd2_int = 1 << 30

	bd4_updated = 1 << 31
)

type layout struct{}

func (layout) Words() uint       { return 8 }
func (layout) Reassembles() bool { return false }

func (layout) TxInit(d ethif.Desc, addr uint32, wrap bool) {
	var s uint32
	if wrap {
		s = tbd0_wrap
	}
	d.SetWord(0, s)
	d.SetWord(1, addr)
	d.SetWord(2, tbd2_int)
	for w := uint(3); w < 8; w++ {
		d.SetWord(w, 0)
	}
}

func (layout) TxFree(d ethif.Desc) bool { return d.Word(0)&tbd0_ready == 0 }

func (layout) TxPublish(d ethif.Desc, n uint, wrap bool) {
	d.SetWord(4, 0)
	s := uint32(tbd0_ready|tbd0_last|tbd0_send_crc) | uint32(n)&tbd0_len_mask
	if wrap {
		s |= tbd0_wrap
	}
	d.SetWord(0, s)
}

func (layout) TxIsWrap(d ethif.Desc) bool { return d.Word(0)&tbd0_wrap != 0 }

func (layout) RxInit(d ethif.Desc, addr uint32, wrap bool) {
	s := uint32(rbd0_empty)
	if wrap {
		s |= rbd0_wrap
	}
	d.SetWord(0, s)
	d.SetWord(1, addr)
	d.SetWord(2, rbd2_int)
	for w := uint(3); w < 8; w++ {
		d.SetWord(w, 0)
	}
}

func (layout) RxOwned(d ethif.Desc) bool { return d.Word(0)&rbd0_empty == 0 }

func (layout) RxRelease(d ethif.Desc) {
	d.SetWord(4, 0)
	s := uint32(rbd0_empty)
	if d.Word(0)&rbd0_wrap != 0 {
		s |= rbd0_wrap
	}
	d.SetWord(0, s)
}

// Single-buffer frames: a filled slot is both start and end.
func (layout) RxIsStart(d ethif.Desc) bool { return true }
func (layout) RxIsEnd(d ethif.Desc) bool   { return d.Word(0)&rbd0_last != 0 }
func (layout) RxLen(d ethif.Desc) uint     { return uint(d.Word(0) & rbd0_len_mask) }
func (layout) RxErr(d ethif.Desc) bool     { return d.Word(0)&rbd0_err_mask != 0 }
func (layout) RxIsWrap(d ethif.Desc) bool  { return d.Word(0)&rbd0_wrap != 0 }

var Layout ethif.DescriptorLayout = layout{}
