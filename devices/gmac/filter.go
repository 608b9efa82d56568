// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmac

import (
	"github.com/platinasystems/ethif"
	"github.com/platinasystems/ethif/ethernet"
	"github.com/platinasystems/log"
)

// UpdateMacAddrFilter reloads the address match hardware from the
// interface filter table.  The first 3 live unicast entries take the
// spare specific-address comparators; everything else falls into the
// 64-bit hash.  If more unicast addresses remain than comparators,
// unicast hashing is enabled as well.
func (d *Dev) UpdateMacAddrFilter(i *ethif.Interface) error {
	d.set_station_addr(i.MacAddr)

	var (
		ht       ethernet.HashTable
		unicast  [n_specific_addrs - 1]ethernet.Address
		n_uni    int
		overflow bool
	)
	for j := range i.Filter {
		e := &i.Filter[j]
		if e.RefCount == 0 {
			continue
		}
		if e.Addr.IsMulticast() {
			ht.SetIndex(ethernet.FoldHashIndex(&e.Addr))
			continue
		}
		if n_uni < len(unicast) {
			unicast[n_uni] = e.Addr
			n_uni++
		} else {
			ht.SetIndex(ethernet.FoldHashIndex(&e.Addr))
			overflow = true
		}
	}

	for j := 0; j < len(unicast); j++ {
		if j < n_uni {
			d.regs.sab[j+1].Set(unicast[j].Lo32())
			d.regs.sat[j+1].Set(unicast[j].Hi16())
		} else {
			d.regs.sab[j+1].Set(0)
			d.regs.sat[j+1].Set(0)
		}
	}

	d.regs.hrb.Set(ht.Lo())
	d.regs.hrt.Set(ht.Hi())
	if overflow {
		d.regs.ncfgr.Or(ncfgr_unihen)
	} else {
		d.regs.ncfgr.Andnot(ncfgr_unihen)
	}

	log.Print("daemon", "gmac filter", "unicast", n_uni,
		"hash-lo", ht.Lo(), "hash-hi", ht.Hi())
	return nil
}
