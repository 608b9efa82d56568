// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmac

import "github.com/platinasystems/ethif"

// Compact 2-word descriptors.  The receive ownership bit lives in the
// address word; transmit ownership ("used") in the status word.
const (
	rx_desc_addr_mask = 0xfffffffc
	rx_desc_wrap      = 1 << 1
	rx_desc_ownership = 1 << 0

	rx_desc_eof      = 1 << 15
	rx_desc_sof      = 1 << 14
	rx_desc_len_mask = 0x1fff

	tx_desc_used     = 1 << 31
	tx_desc_wrap     = 1 << 30
	tx_desc_last     = 1 << 15
	tx_desc_len_mask = 0x3fff
)

// layout adapts the compact descriptor format to the generic ring
// engine.  Frames may span several receive buffers; the peripheral
// discards errored frames before writeback, so the end-of-frame
// descriptor never carries error flags.
type layout struct{}

func (layout) Words() uint       { return 2 }
func (layout) Reassembles() bool { return true }

func (layout) TxInit(d ethif.Desc, addr uint32, wrap bool) {
	d.SetWord(0, addr)
	s := uint32(tx_desc_used)
	if wrap {
		s |= tx_desc_wrap
	}
	d.SetWord(1, s)
}

func (layout) TxFree(d ethif.Desc) bool { return d.Word(1)&tx_desc_used != 0 }

func (layout) TxPublish(d ethif.Desc, n uint, wrap bool) {
	s := uint32(tx_desc_last) | uint32(n)&tx_desc_len_mask
	if wrap {
		s |= tx_desc_wrap
	}
	// Writing the status without the used bit hands the slot to
	// the DMA engine.
	d.SetWord(1, s)
}

func (layout) TxIsWrap(d ethif.Desc) bool { return d.Word(1)&tx_desc_wrap != 0 }

func (layout) RxInit(d ethif.Desc, addr uint32, wrap bool) {
	a := addr & rx_desc_addr_mask
	if wrap {
		a |= rx_desc_wrap
	}
	d.SetWord(0, a)
	d.SetWord(1, 0)
}

func (layout) RxOwned(d ethif.Desc) bool { return d.Word(0)&rx_desc_ownership != 0 }

func (layout) RxRelease(d ethif.Desc) { d.AndnotWord(0, rx_desc_ownership) }

func (layout) RxIsStart(d ethif.Desc) bool { return d.Word(1)&rx_desc_sof != 0 }
func (layout) RxIsEnd(d ethif.Desc) bool   { return d.Word(1)&rx_desc_eof != 0 }
func (layout) RxLen(d ethif.Desc) uint     { return uint(d.Word(1) & rx_desc_len_mask) }
func (layout) RxErr(d ethif.Desc) bool     { return false }
func (layout) RxIsWrap(d ethif.Desc) bool  { return d.Word(0)&rx_desc_wrap != 0 }

var Layout ethif.DescriptorLayout = layout{}
