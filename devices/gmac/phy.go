// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmac

import "github.com/platinasystems/ethif"

// Clause 22 management frame access.  The MAC serializes one frame at
// a time; completion is reported by the idle bit in the network
// status register.

func (d *Dev) man_frame(opcode ethif.SmiOpcode, phy_addr, reg_addr uint8, data uint16) {
	v := man_cltto |
		uint32(opcode)<<man_op_shift |
		uint32(phy_addr&0x1f)<<man_phya_shift |
		uint32(reg_addr&0x1f)<<man_rega_shift |
		man_wtn |
		uint32(data)
	d.regs.man.Set(v)
	for d.regs.nsr.Get()&nsr_idle == 0 {
	}
}

func (d *Dev) WritePhyReg(opcode ethif.SmiOpcode, phy_addr, reg_addr uint8, data uint16) error {
	if opcode != ethif.SmiWrite {
		return ethif.ErrInvalidOpcode
	}
	d.man_frame(opcode, phy_addr, reg_addr, data)
	return nil
}

func (d *Dev) ReadPhyReg(opcode ethif.SmiOpcode, phy_addr, reg_addr uint8) (uint16, error) {
	if opcode != ethif.SmiRead {
		return 0, ethif.ErrInvalidOpcode
	}
	d.man_frame(opcode, phy_addr, reg_addr, 0)
	return uint16(d.regs.man.Get() & man_data_mask), nil
}
