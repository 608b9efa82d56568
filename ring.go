// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethif

import (
	"encoding/binary"
	"fmt"

	"github.com/platinasystems/ethif/hw"
)

// Desc is one descriptor's words in DMA-visible memory.
type Desc []byte

func (d Desc) Word(i uint) uint32          { return binary.LittleEndian.Uint32(d[4*i:]) }
func (d Desc) SetWord(i uint, v uint32)    { binary.LittleEndian.PutUint32(d[4*i:], v) }
func (d Desc) OrWord(i uint, v uint32)     { d.SetWord(i, d.Word(i)|v) }
func (d Desc) AndnotWord(i uint, v uint32) { d.SetWord(i, d.Word(i)&^v) }

// DescriptorLayout is the strategy over a chip's descriptor word
// format.  The ring and the transmit/receive paths are written against
// it; devices/ supply one per variant.
type DescriptorLayout interface {
	// 32-bit words per descriptor slot.
	Words() uint

	// Reassembles reports whether received frames may span several
	// consecutive buffers (SOF/EOF markers) or always fit one.
	Reassembles() bool

	TxInit(d Desc, addr uint32, wrap bool)
	// TxFree reports the slot software-owned ("used"): the DMA
	// engine has no claim on it.
	TxFree(d Desc) bool
	// TxPublish marks the slot a complete single-segment frame of n
	// bytes and hands it to the DMA engine.
	TxPublish(d Desc, n uint, wrap bool)
	TxIsWrap(d Desc) bool

	RxInit(d Desc, addr uint32, wrap bool)
	// RxOwned reports the slot filled by the DMA engine and not yet
	// drained by software.
	RxOwned(d Desc) bool
	// RxRelease returns the slot to the DMA engine, preserving the
	// buffer address and the wrap flag.
	RxRelease(d Desc)
	RxIsStart(d Desc) bool
	RxIsEnd(d Desc) bool
	// RxLen is the frame byte count; valid only on the
	// end-of-frame descriptor.
	RxLen(d Desc) uint
	// RxErr reports peripheral-observed receive errors; valid only
	// on the end-of-frame descriptor.
	RxErr(d Desc) bool
	RxIsWrap(d Desc) bool
}

// Descriptor arrays and buffers are alignment-pinned for the DMA
// engine's benefit.
const (
	log2DescAlign   = 6
	log2BufferAlign = 6

	// Buffer copies are rounded up to the DMA engine's transfer
	// granularity.
	dmaGranularity = 4
)

// ring is one direction's descriptor/buffer array plus the
// software-private cursor.  Allocated once; reset in place.
type ring struct {
	layout DescriptorLayout

	desc      []byte
	desc_addr uint32

	bufs     [][]byte
	buf_addr []uint32

	ring_len  uint
	buf_bytes uint

	// Next slot software will publish to (tx) or inspect (rx).
	index uint
}

func (r *ring) alloc(l DescriptorLayout, mem *hw.DmaRegion, n, buf_bytes uint) (err error) {
	if n < 2 {
		return fmt.Errorf("ethif: ring length %d < 2", n)
	}
	r.layout = l
	r.ring_len = n
	r.buf_bytes = buf_bytes

	stride := 4 * l.Words()
	r.desc, r.desc_addr, err = mem.Alloc(n*stride, log2DescAlign)
	if err != nil {
		return
	}
	r.bufs = make([][]byte, n)
	r.buf_addr = make([]uint32, n)
	for i := uint(0); i < n; i++ {
		r.bufs[i], r.buf_addr[i], err = mem.Alloc(buf_bytes, log2BufferAlign)
		if err != nil {
			return
		}
	}
	return
}

func (r *ring) slot(i uint) Desc {
	stride := 4 * r.layout.Words()
	return Desc(r.desc[i*stride : (i+1)*stride])
}

func (r *ring) next_index(i uint) uint {
	i++
	if i >= r.ring_len {
		i = 0
	}
	return i
}

// Exactly one descriptor carries the wrap flag, and it is the last.
// A ring violating this lets the DMA engine run off the end of the
// array, so it is checked every (re)initialization.
func (r *ring) check_wrap(is_wrap func(Desc) bool) error {
	for i := uint(0); i < r.ring_len; i++ {
		want := i == r.ring_len-1
		if got := is_wrap(r.slot(i)); got != want {
			return fmt.Errorf("ethif: slot %d wrap flag: got %v, want %v", i, got, want)
		}
	}
	return nil
}

// Accessors for tests, simulators and ring-base register programming.

func (r *ring) DescAddr() uint32      { return r.desc_addr }
func (r *ring) Len() uint             { return r.ring_len }
func (r *ring) BufBytes() uint        { return r.buf_bytes }
func (r *ring) Index() uint           { return r.index }
func (r *ring) Slot(i uint) Desc      { return r.slot(i) }
func (r *ring) Buf(i uint) []byte     { return r.bufs[i] }
func (r *ring) BufAddr(i uint) uint32 { return r.buf_addr[i] }
