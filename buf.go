// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethif

// Buffer is a multi-part packet buffer as handed down by the stack.
// The engine treats its contents as opaque bytes.
type Buffer struct {
	parts [][]byte
}

func (b *Buffer) Append(p []byte) { b.parts = append(b.parts, p) }

func (b *Buffer) Len() (n uint) {
	for _, p := range b.parts {
		n += uint(len(p))
	}
	return
}

// Read gathers up to len(dst) bytes starting at offset into dst and
// returns the number of bytes copied.
func (b *Buffer) Read(dst []byte, offset uint) (n uint) {
	for _, p := range b.parts {
		if offset >= uint(len(p)) {
			offset -= uint(len(p))
			continue
		}
		c := uint(copy(dst[n:], p[offset:]))
		n += c
		offset = 0
		if n == uint(len(dst)) {
			break
		}
	}
	return
}

// TxAncillary carries additional per-frame options from the stack.
// The engine consumes none of them.
type TxAncillary struct{}

// RxAncillary carries additional per-frame options up to the stack.
// The engine delivers defaults only.
type RxAncillary struct {
	Port uint8
}

var DefaultRxAncillary = RxAncillary{}
