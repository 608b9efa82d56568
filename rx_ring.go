// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethif

import "github.com/platinasystems/ethif/hw"

// RxRing is the receive half of the descriptor ring: the DMA engine
// fills slots and flips their ownership; software drains complete
// frames and releases the slots back.
type RxRing struct {
	ring

	// Reassembled frames are copied here; the span handed to the
	// stack is valid until the next Drain.
	scratch   []byte
	max_frame uint
}

func (r *RxRing) Init(l DescriptorLayout, mem *hw.DmaRegion, n, buf_bytes, max_frame uint) error {
	if err := r.alloc(l, mem, n, buf_bytes); err != nil {
		return err
	}
	r.max_frame = max_frame
	r.scratch = make([]byte, max_frame)
	return r.Reset()
}

// Reset re-walks every slot: addresses rewritten, ownership handed to
// the DMA engine, wrap flag on the final slot.
func (r *RxRing) Reset() error {
	for i := uint(0); i < r.ring_len; i++ {
		r.layout.RxInit(r.slot(i), r.buf_addr[i], i == r.ring_len-1)
	}
	r.index = 0
	return r.check_wrap(r.layout.RxIsWrap)
}

// Drain extracts at most one complete frame from the ring.  It
// returns the reassembled span and the number of slots released back
// to the DMA engine; variants whose engine stalls on software-held
// slots re-arm their receive doorbell whenever freed > 0.
//
// ErrBufferEmpty means no complete frame is ready (nothing released,
// cursor unchanged); ErrInvalidPacket means an errored frame was
// reclaimed and discarded.
func (r *RxRing) Drain() (p []byte, freed uint, err error) {
	if r.layout.Reassembles() {
		return r.drain_scan()
	}
	return r.drain_single()
}

// drain_scan searches forward from the cursor for a start..end span,
// possibly covering several consecutive DMA-filled buffers.
func (r *RxRing) drain_scan() (p []byte, freed uint, err error) {
	const none = ^uint(0)
	sof, eof := none, none
	var size uint
	var bad bool

	i := uint(0)
	for ; i < r.ring_len; i++ {
		j := r.index + i
		if j >= r.ring_len {
			j -= r.ring_len
		}
		d := r.slot(j)
		if !r.layout.RxOwned(d) {
			break
		}
		if r.layout.RxIsStart(d) {
			sof = i
		}
		if r.layout.RxIsEnd(d) && sof != none {
			eof = i
			size = r.layout.RxLen(d)
			if size > r.max_frame {
				size = r.max_frame
			}
			bad = r.layout.RxErr(d)
			break
		}
	}

	// Slots before the frame span are consumed; a partial frame
	// (start marker only) stays on the ring until its end arrives.
	var count uint
	switch {
	case eof != none:
		count = eof + 1
	case sof != none:
		count = sof
	default:
		count = i
	}

	// Copy the frame out in slot order before any slot is
	// released.
	var length uint
	if eof != none {
		j := r.index + sof
		for k := sof; k <= eof; k++ {
			if j >= r.ring_len {
				j -= r.ring_len
			}
			n := size
			if n > r.buf_bytes {
				n = r.buf_bytes
			}
			copy(r.scratch[length:], r.bufs[j][:n])
			length += n
			size -= n
			j++
		}
	}

	if count > 0 {
		// Releasing a slot is a publish point: the buffer reads
		// above must complete before ownership flips back.
		hw.MemoryBarrier()
	}
	for k := uint(0); k < count; k++ {
		r.layout.RxRelease(r.slot(r.index))
		r.index = r.next_index(r.index)
		freed++
	}

	if length == 0 {
		err = ErrBufferEmpty
		return
	}
	if bad {
		err = ErrInvalidPacket
		return
	}
	p = r.scratch[:length]
	return
}

// drain_single handles layouts whose frames never span buffers: a
// filled slot either carries a whole frame (end marker set) or is
// invalid.
func (r *RxRing) drain_single() (p []byte, freed uint, err error) {
	d := r.slot(r.index)
	if !r.layout.RxOwned(d) {
		err = ErrBufferEmpty
		return
	}

	if r.layout.RxIsEnd(d) && !r.layout.RxErr(d) {
		n := r.layout.RxLen(d)
		if n > r.max_frame {
			n = r.max_frame
		}
		if n > r.buf_bytes {
			n = r.buf_bytes
		}
		copy(r.scratch[:n], r.bufs[r.index][:n])
		p = r.scratch[:n]
	} else {
		err = ErrInvalidPacket
	}

	hw.MemoryBarrier()
	r.layout.RxRelease(d)
	r.index = r.next_index(r.index)
	freed = 1
	return
}
