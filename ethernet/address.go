// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ethernet has the MAC address and filter-table types shared
// by the ethif device variants.
package ethernet

import "fmt"

const (
	AddressBytes = 6

	// Largest untagged frame the receive path will reassemble.
	MaxFrameBytes = 1518
)

type Address [AddressBytes]byte

var BroadcastAddr = Address{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (a *Address) IsMulticast() bool { return a[0]&1 != 0 }
func (a *Address) IsUnicast() bool   { return !a.IsMulticast() }

func (a *Address) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		a[0], a[1], a[2], a[3], a[4], a[5])
}

// ParseAddress accepts the colon-separated hex form.
func ParseAddress(s string) (a Address, err error) {
	_, err = fmt.Sscanf(s, "%02x:%02x:%02x:%02x:%02x:%02x",
		&a[0], &a[1], &a[2], &a[3], &a[4], &a[5])
	return
}

// Lo32 is the first four address bytes packed little-endian, as the
// specific-address bottom registers want them.
func (a *Address) Lo32() uint32 {
	return uint32(a[0]) | uint32(a[1])<<8 | uint32(a[2])<<16 | uint32(a[3])<<24
}

// Hi16 is the last two address bytes, for the top registers.
func (a *Address) Hi16() uint32 {
	return uint32(a[4]) | uint32(a[5])<<8
}

// FilterEntry is one externally-owned address filter table entry.  An
// entry is active while its reference count is positive.
type FilterEntry struct {
	Addr     Address
	RefCount uint
}
