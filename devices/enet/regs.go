// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enet

import "github.com/platinasystems/ethif/hw"

const (
	reg_eir  = 0x004
	reg_eimr = 0x008
	reg_rdar = 0x010
	reg_tdar = 0x014
	reg_ecr  = 0x024
	reg_mmfr = 0x040
	reg_mscr = 0x044
	reg_rcr  = 0x084
	reg_tcr  = 0x0c4
	reg_palr = 0x0e4
	reg_paur = 0x0e8
	reg_opd  = 0x0ec
	reg_iaur = 0x118
	reg_ialr = 0x11c
	reg_gaur = 0x120
	reg_galr = 0x124
	reg_tfwr = 0x144
	reg_rdsr = 0x180
	reg_tdsr = 0x184
	reg_mrbr = 0x188

	RegsBytes = 0x800
)

const (
	eir_eberr = 1 << 22
	eir_mii   = 1 << 23
	eir_rxb   = 1 << 24
	eir_rxf   = 1 << 25
	eir_txb   = 1 << 26
	eir_txf   = 1 << 27

	ecr_reset   = 1 << 0
	ecr_etheren = 1 << 1
	ecr_speed   = 1 << 5
	ecr_dbswp   = 1 << 8

	rdar_active = 1 << 24
	tdar_active = 1 << 24

	rcr_drt          = 1 << 1
	rcr_mii_mode     = 1 << 2
	rcr_prom         = 1 << 3
	rcr_rmii_mode    = 1 << 8
	rcr_rmii_10t     = 1 << 9
	rcr_max_fl_shift = 16

	tcr_fden = 1 << 2

	mmfr_data_mask = 0xffff
	mmfr_ta        = 2 << 16
	mmfr_ra_shift  = 18
	mmfr_pa_shift  = 23
	mmfr_op_shift  = 28
	mmfr_st        = 1 << 30

	paur_type = 0x8808

	tfwr_strfwd = 1 << 8
)

type regs struct {
	eir, eimr        hw.Reg
	rdar, tdar       hw.Reg
	ecr              hw.Reg
	mmfr, mscr       hw.Reg
	rcr, tcr         hw.Reg
	palr, paur, opd  hw.Reg
	iaur, ialr       hw.Reg
	gaur, galr       hw.Reg
	tfwr             hw.Reg
	rdsr, tdsr, mrbr hw.Reg
}

func (r *regs) init(m *hw.Region) {
	r.eir = m.Reg(reg_eir)
	r.eimr = m.Reg(reg_eimr)
	r.rdar = m.Reg(reg_rdar)
	r.tdar = m.Reg(reg_tdar)
	r.ecr = m.Reg(reg_ecr)
	r.mmfr = m.Reg(reg_mmfr)
	r.mscr = m.Reg(reg_mscr)
	r.rcr = m.Reg(reg_rcr)
	r.tcr = m.Reg(reg_tcr)
	r.palr = m.Reg(reg_palr)
	r.paur = m.Reg(reg_paur)
	r.opd = m.Reg(reg_opd)
	r.iaur = m.Reg(reg_iaur)
	r.ialr = m.Reg(reg_ialr)
	r.gaur = m.Reg(reg_gaur)
	r.galr = m.Reg(reg_galr)
	r.tfwr = m.Reg(reg_tfwr)
	r.rdsr = m.Reg(reg_rdsr)
	r.tdsr = m.Reg(reg_tdsr)
	r.mrbr = m.Reg(reg_mrbr)
}
