// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enet

import "github.com/platinasystems/ethif"

// Simulator models the peripheral side of the register file: doorbell
// driven transmit, frame delivery into the receive ring and the
// management interface.  The device interrupt fires only for sources
// left unmasked, the way the hardware line would.
type Simulator struct {
	d *Dev

	// Hardware side ring cursors, independent of the driver's.
	tx_index uint
	rx_index uint

	// Receive DMA runs only between a doorbell write and the first
	// not-empty descriptor.
	rx_armed bool

	// Frames pulled out of the transmit ring.
	Sent [][]byte

	// Clause 22 register file, indexed by phy then register.
	Phy [32][32]uint16

	AutoInterrupt bool
}

func NewSimulator(d *Dev) *Simulator {
	s := &Simulator{d: d, AutoInterrupt: true}
	d.region.OnWrite = s.reg_written
	return s
}

func (s *Simulator) irq() {
	if !s.AutoInterrupt {
		return
	}
	r := s.d.region
	if r.Load32(reg_eir)&r.Load32(reg_eimr) != 0 {
		s.d.Interrupt()
	}
}

func (s *Simulator) reg_written(o uint, v uint32) {
	r := s.d.region
	switch o {
	case reg_eir:
		r.Store32(o, r.Load32(o)&^v)
	case reg_ecr:
		// Reset completes immediately.
		r.Store32(o, v&^uint32(ecr_reset))
	case reg_tdar:
		if v&tdar_active != 0 {
			s.transmit()
		}
		r.Store32(o, 0)
	case reg_rdar:
		if v&rdar_active != 0 {
			s.rx_armed = true
			r.Store32(o, rdar_active)
		}
	case reg_tdsr:
		// Writing a ring base reloads the hardware cursor.
		r.Store32(o, v)
		s.tx_index = 0
	case reg_rdsr:
		r.Store32(o, v)
		s.rx_index = 0
	case reg_mmfr:
		r.Store32(o, v)
		s.mii_frame(v)
	default:
		r.Store32(o, v)
	}
}

func (s *Simulator) mii_frame(v uint32) {
	op := ethif.SmiOpcode(v >> mmfr_op_shift & 3)
	pa := v >> mmfr_pa_shift & 0x1f
	ra := v >> mmfr_ra_shift & 0x1f
	r := s.d.region
	switch op {
	case ethif.SmiWrite:
		s.Phy[pa][ra] = uint16(v & mmfr_data_mask)
	case ethif.SmiRead:
		u := v&^uint32(mmfr_data_mask) | uint32(s.Phy[pa][ra])
		r.Store32(reg_mmfr, u)
	}
	r.Store32(reg_eir, r.Load32(reg_eir)|eir_mii)
}

func (s *Simulator) transmit() {
	d := s.d
	sent := false
	for {
		dd := d.tx.Slot(s.tx_index)
		if dd.Word(0)&tbd0_ready == 0 {
			break
		}
		n := uint(dd.Word(0) & tbd0_len_mask)
		if n > d.tx.BufBytes() {
			n = d.tx.BufBytes()
		}
		p := make([]byte, n)
		copy(p, d.tx.Buf(s.tx_index)[:n])
		s.Sent = append(s.Sent, p)

		wrap := dd.Word(0)&tbd0_wrap != 0
		dd.AndnotWord(0, tbd0_ready)
		dd.OrWord(4, bd4_updated)
		if wrap {
			s.tx_index = 0
		} else {
			s.tx_index++
		}
		sent = true
	}
	if sent {
		r := d.region
		r.Store32(reg_eir, r.Load32(reg_eir)|eir_txf)
		s.irq()
	}
}

// DeliverFrame writes one frame into the receive ring and raises a
// receive interrupt.  Frames never span buffers.
func (s *Simulator) DeliverFrame(p []byte) error {
	return s.DeliverFrameStatus(p, 0)
}

// DeliverFrameStatus is DeliverFrame with extra receive status bits,
// for injecting errored frames.
func (s *Simulator) DeliverFrameStatus(p []byte, status uint32) error {
	d := s.d
	if !s.rx_armed {
		return ethif.ErrRingBusy
	}
	dd := d.rx.Slot(s.rx_index)
	if dd.Word(0)&rbd0_empty == 0 {
		// Ran onto a software-owned slot: reception stops until
		// the doorbell is rung again.
		s.rx_armed = false
		d.region.Store32(reg_rdar, 0)
		return ethif.ErrRingBusy
	}

	n := uint(len(p))
	if n > d.rx.BufBytes() {
		n = d.rx.BufBytes()
	}
	copy(d.rx.Buf(s.rx_index), p[:n])

	w := dd.Word(0) & rbd0_wrap
	dd.SetWord(0, w|rbd0_last|status|uint32(n)&rbd0_len_mask)
	dd.OrWord(4, bd4_updated)
	if w != 0 {
		s.rx_index = 0
	} else {
		s.rx_index++
	}

	r := d.region
	r.Store32(reg_eir, r.Load32(reg_eir)|eir_rxf)
	s.irq()
	return nil
}

// InjectBusError raises the bus error condition.
func (s *Simulator) InjectBusError() {
	r := s.d.region
	s.rx_armed = false
	r.Store32(reg_eir, r.Load32(reg_eir)|eir_eberr)
	s.irq()
}
