// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enet

import "github.com/platinasystems/ethif"

// Clause 22 management frame access.  Completion latches the MII bit
// in the event register, which is cleared before starting a frame and
// polled after.

func (d *Dev) mii_frame(opcode ethif.SmiOpcode, phy_addr, reg_addr uint8, data uint16) {
	d.regs.eir.Set(eir_mii)
	v := uint32(mmfr_st) |
		uint32(opcode)<<mmfr_op_shift |
		uint32(phy_addr&0x1f)<<mmfr_pa_shift |
		uint32(reg_addr&0x1f)<<mmfr_ra_shift |
		mmfr_ta |
		uint32(data)
	d.regs.mmfr.Set(v)
	for d.regs.eir.Get()&eir_mii == 0 {
	}
	d.regs.eir.Set(eir_mii)
}

func (d *Dev) WritePhyReg(opcode ethif.SmiOpcode, phy_addr, reg_addr uint8, data uint16) error {
	if opcode != ethif.SmiWrite {
		return ethif.ErrInvalidOpcode
	}
	d.mii_frame(opcode, phy_addr, reg_addr, data)
	return nil
}

func (d *Dev) ReadPhyReg(opcode ethif.SmiOpcode, phy_addr, reg_addr uint8) (uint16, error) {
	if opcode != ethif.SmiRead {
		return 0, ethif.ErrInvalidOpcode
	}
	d.mii_frame(opcode, phy_addr, reg_addr, 0)
	return uint16(d.regs.mmfr.Get() & mmfr_data_mask), nil
}
