// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enet

import (
	"github.com/platinasystems/ethif"
	"github.com/platinasystems/ethif/ethernet"
	"github.com/platinasystems/log"
)

// UpdateMacAddrFilter reloads the hash filters from the interface
// filter table.  The MAC keeps separate 64-bit hash tables for
// individual and group addresses, both indexed by the top 6 bits of
// the frame CRC.
func (d *Dev) UpdateMacAddrFilter(i *ethif.Interface) error {
	d.set_station_addr(i.MacAddr)

	var individual, group ethernet.HashTable
	for j := range i.Filter {
		e := &i.Filter[j]
		if e.RefCount == 0 {
			continue
		}
		k := ethernet.CrcHashIndex(&e.Addr)
		if e.Addr.IsMulticast() {
			group.SetIndex(k)
		} else {
			individual.SetIndex(k)
		}
	}

	d.regs.ialr.Set(individual.Lo())
	d.regs.iaur.Set(individual.Hi())
	d.regs.galr.Set(group.Lo())
	d.regs.gaur.Set(group.Hi())

	log.Print("daemon", "enet filter",
		"individual-lo", individual.Lo(), "individual-hi", individual.Hi(),
		"group-lo", group.Lo(), "group-hi", group.Hi())
	return nil
}
