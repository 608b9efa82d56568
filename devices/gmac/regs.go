// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmac

import "github.com/platinasystems/ethif/hw"

const (
	reg_ncr   = 0x000
	reg_ncfgr = 0x004
	reg_nsr   = 0x008
	reg_dcfgr = 0x010
	reg_tsr   = 0x014
	reg_rbqb  = 0x018
	reg_tbqb  = 0x01c
	reg_rsr   = 0x020
	reg_isr   = 0x024
	reg_ier   = 0x028
	reg_idr   = 0x02c
	reg_imr   = 0x030
	reg_man   = 0x034
	reg_hrb   = 0x080
	reg_hrt   = 0x084
	reg_sab1  = 0x088

	// Priority queue register banks; queue 0 is served by the main
	// bank above, queues 1..5 by these.
	reg_isrpq   = 0x400
	reg_tbqbapq = 0x440
	reg_rbqbapq = 0x480
	reg_rbsrpq  = 0x4a0
	reg_idrpq   = 0x620

	RegsBytes = 0x800

	n_priority_queues = 5
	n_specific_addrs  = 4
)

const (
	ncr_rxen   = 1 << 2
	ncr_txen   = 1 << 3
	ncr_mpe    = 1 << 4
	ncr_tstart = 1 << 9

	ncfgr_spd        = 1 << 0
	ncfgr_fd         = 1 << 1
	ncfgr_mtihen     = 1 << 6
	ncfgr_unihen     = 1 << 7
	ncfgr_maxfs      = 1 << 8
	ncfgr_clk_mck_96 = 5 << 18
	ncfgr_clk_mask   = 7 << 18

	nsr_idle = 1 << 2

	dcfgr_fbldo_incr4 = 4 << 0
	dcfgr_rxbms_full  = 3 << 8
	dcfgr_txpbms      = 1 << 10
	dcfgr_drbs_shift  = 16

	tsr_ubr    = 1 << 0
	tsr_col    = 1 << 1
	tsr_rle    = 1 << 2
	tsr_txgo   = 1 << 3
	tsr_tfc    = 1 << 4
	tsr_txcomp = 1 << 5
	tsr_hresp  = 1 << 8
	tsr_mask   = tsr_ubr | tsr_col | tsr_rle | tsr_tfc | tsr_txcomp | tsr_hresp

	rsr_bna   = 1 << 0
	rsr_rec   = 1 << 1
	rsr_rxovr = 1 << 2
	rsr_hno   = 1 << 3
	rsr_mask  = rsr_bna | rsr_rec | rsr_rxovr | rsr_hno

	int_rcomp = 1 << 1
	int_rxubr = 1 << 2
	int_tur   = 1 << 4
	int_rlex  = 1 << 5
	int_tfc   = 1 << 6
	int_tcomp = 1 << 7
	int_rovr  = 1 << 10
	int_hresp = 1 << 11

	man_data_mask  = 0xffff
	man_wtn        = 2 << 16
	man_rega_shift = 18
	man_phya_shift = 23
	man_op_shift   = 28
	man_cltto      = 1 << 30
)

type regs struct {
	ncr, ncfgr, nsr         hw.Reg
	dcfgr                   hw.Reg
	tsr, rbqb, tbqb, rsr    hw.Reg
	isr, ier, idr, imr      hw.Reg
	man                     hw.Reg
	hrb, hrt                hw.Reg
	sab, sat                [n_specific_addrs]hw.Reg
	isrpq, tbqbapq, rbqbapq [n_priority_queues]hw.Reg
	rbsrpq, idrpq           [n_priority_queues]hw.Reg
}

func (r *regs) init(m *hw.Region) {
	r.ncr = m.Reg(reg_ncr)
	r.ncfgr = m.Reg(reg_ncfgr)
	r.nsr = m.Reg(reg_nsr)
	r.dcfgr = m.Reg(reg_dcfgr)
	r.tsr = m.Reg(reg_tsr)
	r.rbqb = m.Reg(reg_rbqb)
	r.tbqb = m.Reg(reg_tbqb)
	r.rsr = m.Reg(reg_rsr)
	r.isr = m.Reg(reg_isr)
	r.ier = m.Reg(reg_ier)
	r.idr = m.Reg(reg_idr)
	r.imr = m.Reg(reg_imr)
	r.man = m.Reg(reg_man)
	r.hrb = m.Reg(reg_hrb)
	r.hrt = m.Reg(reg_hrt)
	for i := 0; i < n_specific_addrs; i++ {
		r.sab[i] = m.Reg(reg_sab1 + 8*uint(i))
		r.sat[i] = m.Reg(reg_sab1 + 8*uint(i) + 4)
	}
	for i := 0; i < n_priority_queues; i++ {
		r.isrpq[i] = m.Reg(reg_isrpq + 4*uint(i))
		r.tbqbapq[i] = m.Reg(reg_tbqbapq + 4*uint(i))
		r.rbqbapq[i] = m.Reg(reg_rbqbapq + 4*uint(i))
		r.rbsrpq[i] = m.Reg(reg_rbsrpq + 4*uint(i))
		r.idrpq[i] = m.Reg(reg_idrpq + 4*uint(i))
	}
}
