// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enet

import (
	"bytes"
	"testing"

	"github.com/platinasystems/ethif"
	"github.com/platinasystems/ethif/ethernet"
)

type test_phy struct{ inits int }

func (p *test_phy) Init(i *ethif.Interface) error {
	p.inits++
	i.LinkSpeed = ethif.Speed100
	i.Duplex = ethif.FullDuplex
	return nil
}
func (*test_phy) Tick(i *ethif.Interface)       {}
func (*test_phy) EnableIrq(i *ethif.Interface)  {}
func (*test_phy) DisableIrq(i *ethif.Interface) {}

type test_rig struct {
	i   *ethif.Interface
	d   *Dev
	s   *Simulator
	phy *test_phy
	rx  [][]byte
}

func new_rig(t *testing.T) *test_rig {
	t.Helper()
	r := &test_rig{
		i:   ethif.NewInterface(t.Name()),
		phy: &test_phy{},
	}
	r.i.MacAddr = ethernet.Address{0x02, 0xa1, 0xb2, 0xc3, 0xd4, 0xe5}
	r.i.Phy = r.phy
	r.i.ProcessPacket = func(p []byte, a *ethif.RxAncillary) {
		r.rx = append(r.rx, append([]byte(nil), p...))
	}
	r.d = New(Config{TxRingLen: 4, RxRingLen: 4, TxBufferBytes: 256, RxBufferBytes: 256})
	r.s = NewSimulator(r.d)
	if err := r.i.Attach(r.d); err != nil {
		t.Fatal(err)
	}
	return r
}

func (r *test_rig) send(t *testing.T, p []byte) {
	t.Helper()
	var b ethif.Buffer
	b.Append(p)
	if err := r.i.SendPacket(&b, 0, &ethif.TxAncillary{}); err != nil {
		t.Fatal(err)
	}
}

func TestInit(t *testing.T) {
	r := new_rig(t)
	if r.phy.inits != 1 {
		t.Errorf("phy inits: got %d, want 1", r.phy.inits)
	}
	if !r.i.TxReady.Test() {
		t.Error("transmitter not ready after init")
	}
	if v := r.d.regs.ecr.Get(); v&ecr_etheren == 0 {
		t.Errorf("ecr %#x: mac not enabled", v)
	}
	if got := r.d.regs.eimr.Get(); got != eimr_enabled {
		t.Errorf("eimr: got %#x, want %#x", got, uint32(eimr_enabled))
	}
	if r.d.regs.rdar.Get()&rdar_active == 0 {
		t.Error("receive doorbell not armed")
	}
	// Station address is packed big-endian, type field in the
	// upper register.
	if got := r.d.regs.palr.Get(); got != 0x02a1b2c3 {
		t.Errorf("palr: got %#x, want 0x02a1b2c3", got)
	}
	if got := r.d.regs.paur.Get(); got != 0xd4e50000|paur_type {
		t.Errorf("paur: got %#x, want %#x", got, 0xd4e50000|uint32(paur_type))
	}
}

func TestRoundTrip(t *testing.T) {
	r := new_rig(t)
	r.i.TxReady.Test()

	p := make([]byte, 150)
	for j := range p {
		p[j] = byte(j)
	}
	r.send(t, p)

	if len(r.s.Sent) != 1 || !bytes.Equal(r.s.Sent[0], p) {
		t.Fatalf("simulator saw %d frames", len(r.s.Sent))
	}
	if !r.i.TxReady.Test() {
		t.Error("transmitter not ready after completion")
	}
	if r.i.TxReady.Test() {
		t.Error("ready signal set more than once")
	}

	if err := r.s.DeliverFrame(p); err != nil {
		t.Fatal(err)
	}
	r.i.ServiceEvent()
	if len(r.rx) != 1 || !bytes.Equal(r.rx[0], p) {
		t.Fatalf("received %d frames", len(r.rx))
	}

	c := r.i.Counters
	if c.TxPackets.Count() != 1 || c.RxPackets.Count() != 1 {
		t.Errorf("counters: tx %d rx %d, want 1 1", c.TxPackets.Count(), c.RxPackets.Count())
	}
}

func TestTxCompletionRekicksDoorbell(t *testing.T) {
	r := new_rig(t)
	r.s.AutoInterrupt = false
	r.i.TxReady.Test()

	r.send(t, []byte{1, 1, 1, 1})
	if len(r.s.Sent) != 1 {
		t.Fatalf("simulator saw %d frames, want 1", len(r.s.Sent))
	}

	// Publish a second frame without ringing the doorbell, as if the
	// engine were still busy with the first when it was queued.
	if err := r.d.tx.Submit([]byte{2, 2, 2, 2}); err != nil {
		t.Fatal(err)
	}
	// The pending transmit-complete interrupt must nudge the engine
	// back onto the ring, or the queued frame stays stranded.
	r.d.Interrupt()
	if len(r.s.Sent) != 2 {
		t.Fatalf("simulator saw %d frames, want 2", len(r.s.Sent))
	}
	if !bytes.Equal(r.s.Sent[1], []byte{2, 2, 2, 2}) {
		t.Errorf("second frame: got %x", r.s.Sent[1])
	}
}

func TestInterruptMasking(t *testing.T) {
	r := new_rig(t)
	if err := r.s.DeliverFrame([]byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	// First tier masked everything pending the deferred tier.
	if got := r.d.regs.eimr.Get(); got != 0 {
		t.Errorf("eimr after interrupt: got %#x, want 0", got)
	}
	if !r.i.Event.Test() {
		t.Error("no event posted")
	}
	r.i.ServiceEvent()
	if got := r.d.regs.eimr.Get(); got != eimr_enabled {
		t.Errorf("eimr after deferred tier: got %#x, want %#x", got, uint32(eimr_enabled))
	}
	if len(r.rx) != 1 {
		t.Errorf("received %d frames, want 1", len(r.rx))
	}
}

func TestErroredFrameDiscarded(t *testing.T) {
	r := new_rig(t)
	if err := r.s.DeliverFrameStatus(make([]byte, 64), rbd0_crc_err); err != nil {
		t.Fatal(err)
	}
	r.i.ServiceEvent()
	if len(r.rx) != 0 {
		t.Errorf("errored frame delivered upward")
	}
	if got := r.i.Counters.RxErrors.Count(); got != 1 {
		t.Errorf("rx errors: got %d, want 1", got)
	}
	// The slot was reclaimed; a good frame still flows.
	if err := r.s.DeliverFrame([]byte{9, 9, 9}); err != nil {
		t.Fatal(err)
	}
	r.i.ServiceEvent()
	if len(r.rx) != 1 {
		t.Errorf("received %d frames, want 1", len(r.rx))
	}
}

func TestReceiveStallAndRearm(t *testing.T) {
	r := new_rig(t)
	for j := 0; j < 4; j++ {
		if err := r.s.DeliverFrame([]byte{byte(j)}); err != nil {
			t.Fatal(err)
		}
	}
	// Ring full: reception stops and the doorbell deasserts.
	if err := r.s.DeliverFrame([]byte{0xff}); err != ethif.ErrRingBusy {
		t.Fatalf("got %v, want %v", err, ethif.ErrRingBusy)
	}
	if r.d.regs.rdar.Get()&rdar_active != 0 {
		t.Error("doorbell still asserted on full ring")
	}

	r.i.ServiceEvent()
	if len(r.rx) != 4 {
		t.Errorf("received %d frames, want 4", len(r.rx))
	}
	// Draining rang the doorbell again.
	if r.d.regs.rdar.Get()&rdar_active == 0 {
		t.Error("doorbell not re-armed after drain")
	}
	if err := r.s.DeliverFrame([]byte{0xfe}); err != nil {
		t.Fatal(err)
	}
	r.i.ServiceEvent()
	if len(r.rx) != 5 {
		t.Errorf("received %d frames, want 5", len(r.rx))
	}
}

func TestBusErrorRecovery(t *testing.T) {
	r := new_rig(t)
	if err := r.s.DeliverFrame([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	r.s.InjectBusError()
	r.i.ServiceEvent()
	if len(r.rx) != 0 {
		t.Errorf("received %d frames across recovery, want 0", len(r.rx))
	}
	if r.d.regs.ecr.Get()&ecr_etheren == 0 {
		t.Error("mac not re-enabled")
	}
	if r.d.regs.rdar.Get()&rdar_active == 0 {
		t.Error("doorbell not re-armed")
	}
	if got := r.d.regs.eimr.Get(); got != eimr_enabled {
		t.Errorf("eimr after recovery: got %#x, want %#x", got, uint32(eimr_enabled))
	}

	r.i.TxReady.Test()
	p := bytes.Repeat([]byte{0x5a}, 100)
	r.send(t, p)
	if err := r.s.DeliverFrame(r.s.Sent[len(r.s.Sent)-1]); err != nil {
		t.Fatal(err)
	}
	r.i.ServiceEvent()
	if len(r.rx) != 1 || !bytes.Equal(r.rx[0], p) {
		t.Fatalf("received %d frames after recovery", len(r.rx))
	}
}

func TestAddrFilter(t *testing.T) {
	r := new_rig(t)
	u1 := ethernet.Address{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	u2 := ethernet.Address{0x02, 0x11, 0x22, 0x33, 0x44, 0x66}
	m1 := ethernet.Address{0x01, 0x00, 0x5e, 0x00, 0x00, 0x01}
	r.i.Filter = []ethernet.FilterEntry{
		{Addr: u1, RefCount: 1},
		{Addr: u2, RefCount: 1},
		{Addr: m1, RefCount: 1},
		{Addr: ethernet.Address{0x02, 9, 9, 9, 9, 9}, RefCount: 0}, // inactive
	}
	if err := r.i.UpdateMacAddrFilter(); err != nil {
		t.Fatal(err)
	}

	var individual, group ethernet.HashTable
	individual.SetIndex(ethernet.CrcHashIndex(&u1))
	individual.SetIndex(ethernet.CrcHashIndex(&u2))
	group.SetIndex(ethernet.CrcHashIndex(&m1))

	if got := r.d.regs.ialr.Get(); got != individual.Lo() {
		t.Errorf("ialr: got %#x, want %#x", got, individual.Lo())
	}
	if got := r.d.regs.iaur.Get(); got != individual.Hi() {
		t.Errorf("iaur: got %#x, want %#x", got, individual.Hi())
	}
	if got := r.d.regs.galr.Get(); got != group.Lo() {
		t.Errorf("galr: got %#x, want %#x", got, group.Lo())
	}
	if got := r.d.regs.gaur.Get(); got != group.Hi() {
		t.Errorf("gaur: got %#x, want %#x", got, group.Hi())
	}
}

func TestPhyAccess(t *testing.T) {
	r := new_rig(t)
	r.s.Phy[7][1] = 0x796d
	got, err := r.i.ReadPhyReg(ethif.SmiRead, 7, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x796d {
		t.Errorf("read: got %#x, want 0x796d", got)
	}
	if err = r.i.WritePhyReg(ethif.SmiWrite, 7, 0, 0x8000); err != nil {
		t.Fatal(err)
	}
	if got := r.s.Phy[7][0]; got != 0x8000 {
		t.Errorf("write: got %#x, want 0x8000", got)
	}
	if err = r.i.WritePhyReg(ethif.SmiRead, 7, 0, 0); err != ethif.ErrInvalidOpcode {
		t.Errorf("mismatched opcode: got %v, want %v", err, ethif.ErrInvalidOpcode)
	}
	if _, err = r.i.ReadPhyReg(ethif.SmiWrite, 7, 1); err != ethif.ErrInvalidOpcode {
		t.Errorf("mismatched opcode: got %v, want %v", err, ethif.ErrInvalidOpcode)
	}
	// The completion flag is consumed by the access itself.
	if r.d.regs.eir.Get()&eir_mii != 0 {
		t.Error("completion flag left latched")
	}
}

func TestUpdateMacConfig(t *testing.T) {
	r := new_rig(t)
	r.i.LinkSpeed = ethif.Speed1000
	r.i.Duplex = ethif.FullDuplex
	if err := r.i.UpdateMacConfig(); err != nil {
		t.Fatal(err)
	}
	if r.d.regs.ecr.Get()&ecr_speed == 0 {
		t.Error("gigabit not programmed")
	}
	if r.d.regs.tcr.Get()&tcr_fden == 0 {
		t.Error("full duplex not programmed")
	}

	r.i.LinkSpeed = ethif.Speed10
	r.i.Duplex = ethif.HalfDuplex
	if err := r.i.UpdateMacConfig(); err != nil {
		t.Fatal(err)
	}
	v := r.d.regs.rcr.Get()
	if v&rcr_rmii_10t == 0 || v&rcr_drt == 0 {
		t.Errorf("rcr %#x: 10/half not programmed", v)
	}
	if r.d.regs.ecr.Get()&ecr_speed != 0 {
		t.Error("gigabit still programmed")
	}

	// Reconfiguration rebuilt the rings; traffic still flows.
	r.i.TxReady.Test()
	p := []byte{1, 2, 3, 4, 5}
	r.send(t, p)
	if err := r.s.DeliverFrame(r.s.Sent[len(r.s.Sent)-1]); err != nil {
		t.Fatal(err)
	}
	r.i.ServiceEvent()
	if len(r.rx) != 1 {
		t.Fatalf("received %d frames after reconfiguration", len(r.rx))
	}
}
