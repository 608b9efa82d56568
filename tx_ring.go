// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethif

import "github.com/platinasystems/ethif/hw"

// TxRing is the transmit half of the descriptor ring: software
// publishes filled slots to the DMA engine, the engine clears their
// ownership when the frame has been sent.
type TxRing struct {
	ring
}

func (r *TxRing) Init(l DescriptorLayout, mem *hw.DmaRegion, n, buf_bytes uint) error {
	if err := r.alloc(l, mem, n, buf_bytes); err != nil {
		return err
	}
	return r.Reset()
}

// Reset re-walks every slot: addresses rewritten, ownership returned
// to software, wrap flag on the final slot.  Used at init and after a
// fatal bus error.
func (r *TxRing) Reset() error {
	for i := uint(0); i < r.ring_len; i++ {
		r.layout.TxInit(r.slot(i), r.buf_addr[i], i == r.ring_len-1)
	}
	r.index = 0
	return r.check_wrap(r.layout.TxIsWrap)
}

// Free reports whether the slot at the cursor can accept a frame.
func (r *TxRing) Free() bool { return r.layout.TxFree(r.slot(r.index)) }

// Submit copies p into the cursor slot's buffer, publishes the
// descriptor to the DMA engine and advances the cursor.  The caller
// kicks the transmit doorbell afterwards.
func (r *TxRing) Submit(p []byte) error {
	n := uint(len(p))
	if n > r.buf_bytes {
		return ErrInvalidLength
	}
	d := r.slot(r.index)
	if !r.layout.TxFree(d) {
		return ErrRingBusy
	}

	b := r.bufs[r.index]
	copy(b, p)
	// Round the copy up to the DMA granularity; the pad must not
	// leak a previous frame's bytes.
	end := (n + dmaGranularity - 1) &^ (dmaGranularity - 1)
	if end > r.buf_bytes {
		end = r.buf_bytes
	}
	for i := n; i < end; i++ {
		b[i] = 0
	}

	// Buffer contents must be globally visible before the DMA
	// engine can observe the ownership flip.
	hw.MemoryBarrier()

	r.layout.TxPublish(d, n, r.index == r.ring_len-1)
	r.index = r.next_index(r.index)
	return nil
}
