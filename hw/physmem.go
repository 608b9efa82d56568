// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hw

import "fmt"

// DmaRegion is memory visible to a MAC's DMA engine, obtained once at
// startup.  Descriptors reference carved-out buffers by bus address
// (offset within the region); the rest of the engine only sees typed
// slices.
type DmaRegion struct {
	b    []byte
	next uint
}

// Bus address 0 is reserved so a zeroed descriptor never aliases a
// live buffer.
const dmaBase = 64

func NewDmaRegion(n uint) *DmaRegion {
	return &DmaRegion{b: make([]byte, n), next: dmaBase}
}

// Alloc carves n bytes aligned to 1<<log2Align and returns the slice
// together with its bus address.
func (r *DmaRegion) Alloc(n, log2Align uint) (b []byte, addr uint32, err error) {
	a := uint(1) << log2Align
	o := (r.next + a - 1) &^ (a - 1)
	if o+n > uint(len(r.b)) {
		err = fmt.Errorf("hw: dma region exhausted: %d + %d > %d", o, n, len(r.b))
		return
	}
	r.next = o + n
	b = r.b[o : o+n : o+n]
	addr = uint32(o)
	return
}

// Slice resolves a bus address previously returned by Alloc.
func (r *DmaRegion) Slice(addr uint32, n uint) []byte {
	o := uint(addr)
	return r.b[o : o+n : o+n]
}
