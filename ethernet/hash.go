// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethernet

import "hash/crc32"

// The two hash schemes MAC address filters use to map an address to a
// bit in a 64-bit hash table.  Which one applies is a property of the
// peripheral, not of the address.

// FoldHashIndex is the 6-bit XOR fold of the 48 address bits used by
// GMAC-class filters.
func FoldHashIndex(a *Address) uint {
	k := (a[0] >> 6) ^ a[0]
	k ^= (a[1] >> 4) ^ (a[1] << 2)
	k ^= (a[2] >> 2) ^ (a[2] << 4)
	k ^= (a[3] >> 6) ^ a[3]
	k ^= (a[4] >> 4) ^ (a[4] << 2)
	k ^= (a[5] >> 2) ^ (a[5] << 4)
	return uint(k & 0x3f)
}

// CrcHashIndex is the upper 6 bits of a reflected CRC-32 (polynomial
// 0xedb88320, initial value 0xffffffff, no final xor) over the
// address, used by ENET-class filters.
func CrcHashIndex(a *Address) uint {
	// ChecksumIEEE applies a final xor; the hardware does not.
	crc := ^crc32.ChecksumIEEE(a[:])
	return uint(crc>>26) & 0x3f
}

// HashTable is the two 32-bit hash filter register words.
type HashTable [2]uint32

func (t *HashTable) SetIndex(k uint) { t[k/32] |= 1 << (k % 32) }
func (t *HashTable) Lo() uint32      { return t[0] }
func (t *HashTable) Hi() uint32      { return t[1] }
