// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmac

import "github.com/platinasystems/ethif"

// Simulator models the peripheral side of the register file: doorbell
// driven transmit, frame delivery into the receive ring and the
// management interface.  It raises the device interrupt the way the
// hardware line would.
type Simulator struct {
	d *Dev

	// Hardware side ring cursors, independent of the driver's.
	tx_index uint
	rx_index uint

	// Frames pulled out of the transmit ring.
	Sent [][]byte

	// Clause 22 register file, indexed by phy then register.
	Phy [32][32]uint16

	AutoInterrupt bool
}

func NewSimulator(d *Dev) *Simulator {
	s := &Simulator{d: d, AutoInterrupt: true}
	d.region.OnWrite = s.reg_written
	d.region.Store32(reg_nsr, nsr_idle)
	return s
}

func (s *Simulator) irq() {
	if s.AutoInterrupt {
		s.d.Interrupt()
	}
}

func (s *Simulator) reg_written(o uint, v uint32) {
	r := s.d.region
	switch {
	case o == reg_tsr || o == reg_rsr:
		r.Store32(o, r.Load32(o)&^v)
	case o == reg_ncr:
		r.Store32(o, v&^uint32(ncr_tstart))
		if v&ncr_tstart != 0 {
			s.transmit()
		}
	case o == reg_ier:
		r.Store32(reg_imr, r.Load32(reg_imr)|v)
	case o == reg_idr:
		r.Store32(reg_imr, r.Load32(reg_imr)&^v)
	case o == reg_tbqb:
		// Writing a ring base reloads the hardware cursor.
		r.Store32(o, v)
		s.tx_index = 0
	case o == reg_rbqb:
		r.Store32(o, v)
		s.rx_index = 0
	case o == reg_man:
		r.Store32(o, v)
		s.man_frame(v)
	default:
		r.Store32(o, v)
	}
}

func (s *Simulator) man_frame(v uint32) {
	op := ethif.SmiOpcode(v >> man_op_shift & 3)
	pa := v >> man_phya_shift & 0x1f
	ra := v >> man_rega_shift & 0x1f
	switch op {
	case ethif.SmiWrite:
		s.Phy[pa][ra] = uint16(v & man_data_mask)
	case ethif.SmiRead:
		u := v&^uint32(man_data_mask) | uint32(s.Phy[pa][ra])
		s.d.region.Store32(reg_man, u)
	}
	// Completion is immediate; idle stays set.
}

func (s *Simulator) transmit() {
	d := s.d
	sent := false
	for {
		dd := d.tx.Slot(s.tx_index)
		if dd.Word(1)&tx_desc_used != 0 {
			break
		}
		n := uint(dd.Word(1) & tx_desc_len_mask)
		if n > d.tx.BufBytes() {
			n = d.tx.BufBytes()
		}
		p := make([]byte, n)
		copy(p, d.tx.Buf(s.tx_index)[:n])
		s.Sent = append(s.Sent, p)

		wrap := dd.Word(1)&tx_desc_wrap != 0
		dd.OrWord(1, tx_desc_used)
		if wrap {
			s.tx_index = 0
		} else {
			s.tx_index++
		}
		sent = true
	}
	if sent {
		r := d.region
		r.Store32(reg_tsr, r.Load32(reg_tsr)|tsr_txcomp)
		s.irq()
	}
}

// DeliverFrame writes a frame into the receive ring, splitting it
// across buffers the way the DMA engine does, and raises a receive
// interrupt.
func (s *Simulator) DeliverFrame(p []byte) error {
	d := s.d
	bn := d.rx.BufBytes()
	need := (uint(len(p)) + bn - 1) / bn
	if need == 0 {
		need = 1
	}

	// All slots must be DMA owned before anything is written.
	j := s.rx_index
	for k := uint(0); k < need; k++ {
		if d.rx.Slot(j).Word(0)&rx_desc_ownership != 0 {
			r := d.region
			r.Store32(reg_rsr, r.Load32(reg_rsr)|rsr_rxovr|rsr_bna)
			s.irq()
			return ethif.ErrRingBusy
		}
		j = s.rx_next(j)
	}

	rest := p
	for k := uint(0); k < need; k++ {
		dd := d.rx.Slot(s.rx_index)
		n := copy(d.rx.Buf(s.rx_index), rest)
		rest = rest[n:]

		var status uint32
		if k == 0 {
			status |= rx_desc_sof
		}
		if k == need-1 {
			status |= rx_desc_eof | uint32(len(p))&rx_desc_len_mask
		}
		dd.SetWord(1, status)
		dd.OrWord(0, rx_desc_ownership)
		s.rx_index = s.rx_next(s.rx_index)
	}

	r := d.region
	r.Store32(reg_rsr, r.Load32(reg_rsr)|rsr_rec)
	s.irq()
	return nil
}

func (s *Simulator) rx_next(j uint) uint {
	if s.d.rx.Slot(j).Word(0)&rx_desc_wrap != 0 {
		return 0
	}
	return j + 1
}

// InjectBusError raises the AHB not-OK condition.
func (s *Simulator) InjectBusError() {
	r := s.d.region
	r.Store32(reg_rsr, r.Load32(reg_rsr)|rsr_hno)
	s.irq()
}
