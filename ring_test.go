// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethif

import (
	"bytes"
	"testing"

	"github.com/platinasystems/ethif/hw"
)

// test_layout is a 2-word descriptor format private to the tests:
// word 0 carries flags and the byte count, word 1 the buffer address.
const (
	tl_own  = 1 << 0
	tl_wrap = 1 << 1
	tl_sof  = 1 << 2
	tl_eof  = 1 << 3
	tl_err  = 1 << 4
	tl_used = 1 << 5
)

type test_layout struct{ single bool }

func (test_layout) Words() uint         { return 2 }
func (l test_layout) Reassembles() bool { return !l.single }

func (test_layout) TxInit(d Desc, addr uint32, wrap bool) {
	s := uint32(tl_used)
	if wrap {
		s |= tl_wrap
	}
	d.SetWord(0, s)
	d.SetWord(1, addr)
}

func (test_layout) TxFree(d Desc) bool { return d.Word(0)&tl_used != 0 }

func (test_layout) TxPublish(d Desc, n uint, wrap bool) {
	s := uint32(n) << 16
	if wrap {
		s |= tl_wrap
	}
	d.SetWord(0, s)
}

func (test_layout) TxIsWrap(d Desc) bool { return d.Word(0)&tl_wrap != 0 }

func (test_layout) RxInit(d Desc, addr uint32, wrap bool) {
	var s uint32
	if wrap {
		s = tl_wrap
	}
	d.SetWord(0, s)
	d.SetWord(1, addr)
}

func (test_layout) RxOwned(d Desc) bool   { return d.Word(0)&tl_own != 0 }
func (test_layout) RxRelease(d Desc)      { d.SetWord(0, d.Word(0)&tl_wrap) }
func (test_layout) RxIsStart(d Desc) bool { return d.Word(0)&tl_sof != 0 }
func (test_layout) RxIsEnd(d Desc) bool   { return d.Word(0)&tl_eof != 0 }
func (test_layout) RxLen(d Desc) uint     { return uint(d.Word(0) >> 16) }
func (test_layout) RxErr(d Desc) bool     { return d.Word(0)&tl_err != 0 }
func (test_layout) RxIsWrap(d Desc) bool  { return d.Word(0)&tl_wrap != 0 }

func test_mem(t *testing.T) *hw.DmaRegion {
	t.Helper()
	return hw.NewDmaRegion(64 << 10)
}

// fill writes frame flags and data into a slot the way the DMA engine
// would.
func fill(r *RxRing, i uint, p []byte, flags uint32) {
	copy(r.Buf(i), p)
	d := r.Slot(i)
	d.SetWord(0, d.Word(0)&tl_wrap|flags|tl_own|uint32(len(p))<<16)
}

// set_len overrides a slot's byte count; the count on an end-of-frame
// descriptor covers the whole frame, not just its buffer.
func set_len(r *RxRing, i, n uint) {
	d := r.Slot(i)
	d.SetWord(0, d.Word(0)&0xffff|uint32(n)<<16)
}

func TestRingTooShort(t *testing.T) {
	var r TxRing
	if err := r.Init(test_layout{}, test_mem(t), 1, 64); err == nil {
		t.Fatal("ring length 1: got nil error")
	}
}

func TestTxWrapFlag(t *testing.T) {
	var r TxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 64); err != nil {
		t.Fatal(err)
	}
	for i := uint(0); i < 4; i++ {
		got := r.Slot(i).Word(0)&tl_wrap != 0
		if want := i == 3; got != want {
			t.Errorf("slot %d wrap: got %v, want %v", i, got, want)
		}
	}
}

func TestTxSubmitUntilBusy(t *testing.T) {
	var r TxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 64); err != nil {
		t.Fatal(err)
	}
	p := bytes.Repeat([]byte{0xab}, 60)
	for i := 0; i < 4; i++ {
		if !r.Free() {
			t.Fatalf("submit %d: ring not free", i)
		}
		if err := r.Submit(p); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if r.Free() {
		t.Error("full ring reports free")
	}
	if err := r.Submit(p); err != ErrRingBusy {
		t.Errorf("submit on full ring: got %v, want %v", err, ErrRingBusy)
	}
	if got := r.Index(); got != 0 {
		t.Errorf("cursor after full cycle: got %d, want 0", got)
	}

	// Engine completes every frame; the cursor keeps cycling.
	for i := uint(0); i < 4; i++ {
		r.Slot(i).OrWord(0, tl_used)
	}
	if err := r.Submit(p); err != nil {
		t.Fatalf("submit after completion: %v", err)
	}
	if got := r.Index(); got != 1 {
		t.Errorf("cursor: got %d, want 1", got)
	}
}

func TestTxExactCapacity(t *testing.T) {
	var r TxRing
	if err := r.Init(test_layout{}, test_mem(t), 2, 64); err != nil {
		t.Fatal(err)
	}
	p := make([]byte, 64)
	for i := range p {
		p[i] = byte(i ^ 0x5a)
	}
	if err := r.Submit(p); err != nil {
		t.Fatalf("buffer-sized frame: %v", err)
	}
	if !bytes.Equal(r.Buf(0)[:64], p) {
		t.Error("buffer-sized frame truncated")
	}
	if got := r.Slot(0).Word(0) >> 16; got != 64 {
		t.Errorf("published length: got %d, want 64", got)
	}
	if got := r.Index(); got != 1 {
		t.Errorf("cursor: got %d, want 1", got)
	}
}

func TestTxOversize(t *testing.T) {
	var r TxRing
	if err := r.Init(test_layout{}, test_mem(t), 2, 64); err != nil {
		t.Fatal(err)
	}
	if err := r.Submit(make([]byte, 65)); err != ErrInvalidLength {
		t.Errorf("got %v, want %v", err, ErrInvalidLength)
	}
}

func TestTxPadDoesNotLeak(t *testing.T) {
	var r TxRing
	if err := r.Init(test_layout{}, test_mem(t), 2, 64); err != nil {
		t.Fatal(err)
	}
	if err := r.Submit(bytes.Repeat([]byte{0xff}, 8)); err != nil {
		t.Fatal(err)
	}
	r.Slot(0).OrWord(0, tl_used)
	r.Slot(1).OrWord(0, tl_used)
	if err := r.Submit([]byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatal(err)
	}
	b := r.Buf(1)
	for i := 5; i < 8; i++ {
		if b[i] != 0 {
			t.Errorf("pad byte %d: got %#x, want 0", i, b[i])
		}
	}
}

func TestRxDrainEmpty(t *testing.T) {
	var r RxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 16, 256); err != nil {
		t.Fatal(err)
	}
	if _, freed, err := r.Drain(); err != ErrBufferEmpty || freed != 0 {
		t.Errorf("got freed %d err %v, want 0 %v", freed, err, ErrBufferEmpty)
	}
}

func TestRxDrainSpan(t *testing.T) {
	var r RxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 16, 256); err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 40)
	for i := range want {
		want[i] = byte(i)
	}
	fill(&r, 0, want[0:16], tl_sof)
	fill(&r, 1, want[16:32], 0)
	fill(&r, 2, want[32:40], tl_eof)
	// Length rides the end-of-frame descriptor only.
	set_len(&r, 2, uint(len(want)))

	p, freed, err := r.Drain()
	if err != nil {
		t.Fatal(err)
	}
	if freed != 3 {
		t.Errorf("freed: got %d, want 3", freed)
	}
	if !bytes.Equal(p, want) {
		t.Errorf("frame: got % x, want % x", p, want)
	}
	for i := uint(0); i < 3; i++ {
		if r.Slot(i).Word(0)&tl_own != 0 {
			t.Errorf("slot %d not released", i)
		}
	}
	if got := r.Index(); got != 3 {
		t.Errorf("cursor: got %d, want 3", got)
	}
	if _, _, err := r.Drain(); err != ErrBufferEmpty {
		t.Errorf("second drain: got %v, want %v", err, ErrBufferEmpty)
	}
}

func TestRxDrainSpanAcrossWrap(t *testing.T) {
	var r RxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 16, 256); err != nil {
		t.Fatal(err)
	}
	// Advance the cursor to the last slot.
	for i := uint(0); i < 3; i++ {
		fill(&r, i, []byte{byte(i)}, tl_sof|tl_eof)
		if _, _, err := r.Drain(); err != nil {
			t.Fatal(err)
		}
	}
	want := make([]byte, 20)
	for i := range want {
		want[i] = byte(0x80 + i)
	}
	fill(&r, 3, want[0:16], tl_sof)
	fill(&r, 0, want[16:20], tl_eof)
	set_len(&r, 0, uint(len(want)))

	p, freed, err := r.Drain()
	if err != nil {
		t.Fatal(err)
	}
	if freed != 2 {
		t.Errorf("freed: got %d, want 2", freed)
	}
	if !bytes.Equal(p, want) {
		t.Errorf("frame: got % x, want % x", p, want)
	}
	if got := r.Index(); got != 1 {
		t.Errorf("cursor: got %d, want 1", got)
	}
}

func TestRxDrainErrored(t *testing.T) {
	var r RxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 16, 256); err != nil {
		t.Fatal(err)
	}
	fill(&r, 0, make([]byte, 16), tl_sof)
	fill(&r, 1, make([]byte, 4), tl_eof|tl_err)
	set_len(&r, 1, 20)

	_, freed, err := r.Drain()
	if err != ErrInvalidPacket {
		t.Errorf("got %v, want %v", err, ErrInvalidPacket)
	}
	if freed != 2 {
		t.Errorf("freed: got %d, want 2", freed)
	}
	if r.Slot(0).Word(0)&tl_own != 0 || r.Slot(1).Word(0)&tl_own != 0 {
		t.Error("errored frame's slots not released")
	}
}

func TestRxDrainPartialFrameHeld(t *testing.T) {
	var r RxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 16, 256); err != nil {
		t.Fatal(err)
	}
	// Slot 0 is an orphan (no start marker); slot 1 starts a frame
	// whose end has not arrived.
	fill(&r, 0, make([]byte, 16), 0)
	fill(&r, 1, make([]byte, 16), tl_sof)

	_, freed, err := r.Drain()
	if err != ErrBufferEmpty {
		t.Errorf("got %v, want %v", err, ErrBufferEmpty)
	}
	if freed != 1 {
		t.Errorf("freed: got %d, want 1", freed)
	}
	if got := r.Index(); got != 1 {
		t.Errorf("cursor: got %d, want 1", got)
	}

	// End arrives; the frame drains from the held start.
	fill(&r, 2, make([]byte, 4), tl_eof)
	set_len(&r, 2, 20)
	p, freed, err := r.Drain()
	if err != nil {
		t.Fatal(err)
	}
	if freed != 2 || len(p) != 20 {
		t.Errorf("got freed %d len %d, want 2 20", freed, len(p))
	}
}

func TestRxDrainClampsOversize(t *testing.T) {
	var r RxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 16, 24); err != nil {
		t.Fatal(err)
	}
	fill(&r, 0, make([]byte, 16), tl_sof)
	fill(&r, 1, make([]byte, 16), tl_eof)
	set_len(&r, 1, 100)

	p, _, err := r.Drain()
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 24 {
		t.Errorf("len: got %d, want 24", len(p))
	}
}

func TestRxDrainSingle(t *testing.T) {
	var r RxRing
	if err := r.Init(test_layout{single: true}, test_mem(t), 4, 64, 64); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 5, 6}
	fill(&r, 0, want, tl_eof)

	p, freed, err := r.Drain()
	if err != nil {
		t.Fatal(err)
	}
	if freed != 1 || !bytes.Equal(p, want) {
		t.Errorf("got freed %d frame % x, want 1 % x", freed, p, want)
	}

	// A filled slot without the end marker is a malformed frame.
	fill(&r, 1, want, 0)
	if _, freed, err = r.Drain(); err != ErrInvalidPacket || freed != 1 {
		t.Errorf("got freed %d err %v, want 1 %v", freed, err, ErrInvalidPacket)
	}

	if _, _, err = r.Drain(); err != ErrBufferEmpty {
		t.Errorf("got %v, want %v", err, ErrBufferEmpty)
	}
}

func TestRxReset(t *testing.T) {
	var r RxRing
	if err := r.Init(test_layout{}, test_mem(t), 4, 16, 256); err != nil {
		t.Fatal(err)
	}
	fill(&r, 0, make([]byte, 16), tl_sof)
	fill(&r, 1, make([]byte, 16), tl_sof)
	if err := r.Reset(); err != nil {
		t.Fatal(err)
	}
	if got := r.Index(); got != 0 {
		t.Errorf("cursor after reset: got %d, want 0", got)
	}
	if _, _, err := r.Drain(); err != ErrBufferEmpty {
		t.Errorf("drain after reset: got %v, want %v", err, ErrBufferEmpty)
	}
}
