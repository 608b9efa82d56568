// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ethif is a descriptor-ring engine for Ethernet MAC DMA
// drivers.  The generic ring, transmit and receive paths live here;
// per-chip descriptor layouts and register programming live under
// devices/.
package ethif

import (
	"sync/atomic"

	"github.com/platinasystems/ethif/ethernet"
)

type LinkSpeed uint

const (
	Speed10 LinkSpeed = iota
	Speed100
	Speed1000
)

type DuplexMode uint

const (
	HalfDuplex DuplexMode = iota
	FullDuplex
)

// SMI clause 22 opcodes accepted by the PHY access primitives.
type SmiOpcode uint8

const (
	SmiWrite SmiOpcode = 1
	SmiRead  SmiOpcode = 2
)

// PhyDriver is the contract consumed from an attached PHY or switch
// sub-driver.  The engine invokes it but never implements it.
type PhyDriver interface {
	Init(i *Interface) error
	Tick(i *Interface)
	EnableIrq(i *Interface)
	DisableIrq(i *Interface)
}

// Driver is the operation set a MAC variant exposes to the stack.
type Driver interface {
	Init(i *Interface) error
	Tick(i *Interface)
	EnableIrq(i *Interface)
	DisableIrq(i *Interface)

	// Deferred-tier entry point, invoked by the stack once per
	// pending network event.
	EventHandler(i *Interface)

	SendPacket(i *Interface, b *Buffer, offset uint, a *TxAncillary) error
	UpdateMacAddrFilter(i *Interface) error
	UpdateMacConfig(i *Interface) error

	WritePhyReg(opcode SmiOpcode, phyAddr, regAddr uint8, data uint16) error
	ReadPhyReg(opcode SmiOpcode, phyAddr, regAddr uint8) (uint16, error)
}

// Interface is the driver context for one MAC: everything that was
// once interface-global state lives here so multiple MACs can coexist
// without aliasing.
type Interface struct {
	Name string

	MacAddr ethernet.Address

	// Externally owned address filter table; the engine only reads
	// it when recomputing the hardware filter.
	Filter []ethernet.FilterEntry

	LinkSpeed LinkSpeed
	Duplex    DuplexMode

	// At most one of Phy/Switch is configured.
	Phy    PhyDriver
	Switch PhyDriver

	// TxReady wakes the stack when another send may be submitted;
	// Event wakes the stack's deferred tier.  Both are settable
	// from interrupt context.
	TxReady *Signal
	Event   *Signal

	// ProcessPacket delivers one reassembled frame upward.  The
	// span is only valid for the duration of the call.
	ProcessPacket func(p []byte, a *RxAncillary)

	Counters *Counters

	driver Driver

	eventPending uint32
}

func NewInterface(name string) *Interface {
	return &Interface{
		Name:     name,
		TxReady:  NewSignal(),
		Event:    NewSignal(),
		Counters: NewCounters(name),
	}
}

// Attach binds a MAC variant to this interface and initializes it.
func (i *Interface) Attach(d Driver) error {
	i.driver = d
	return d.Init(i)
}

func (i *Interface) Tick()       { i.driver.Tick(i) }
func (i *Interface) EnableIrq()  { i.driver.EnableIrq(i) }
func (i *Interface) DisableIrq() { i.driver.DisableIrq(i) }

func (i *Interface) SendPacket(b *Buffer, offset uint, a *TxAncillary) error {
	return i.driver.SendPacket(i, b, offset, a)
}

func (i *Interface) UpdateMacAddrFilter() error { return i.driver.UpdateMacAddrFilter(i) }
func (i *Interface) UpdateMacConfig() error     { return i.driver.UpdateMacConfig(i) }

func (i *Interface) WritePhyReg(opcode SmiOpcode, phyAddr, regAddr uint8, data uint16) error {
	return i.driver.WritePhyReg(opcode, phyAddr, regAddr, data)
}

func (i *Interface) ReadPhyReg(opcode SmiOpcode, phyAddr, regAddr uint8) (uint16, error) {
	return i.driver.ReadPhyReg(opcode, phyAddr, regAddr)
}

// ServiceEvent runs the deferred tier if an event is pending.  The
// stack calls this after the Event signal fires.
func (i *Interface) ServiceEvent() {
	if i.TakeEvent() {
		i.driver.EventHandler(i)
	}
}

// PostEvent marks a network event pending and wakes the stack.  Safe
// from interrupt context.
func (i *Interface) PostEvent() {
	atomic.StoreUint32(&i.eventPending, 1)
	i.Event.Set()
}

// TakeEvent consumes the pending-event flag.
func (i *Interface) TakeEvent() bool {
	return atomic.CompareAndSwapUint32(&i.eventPending, 1, 0)
}

// SubDriver returns the configured PHY or switch sub-driver.
func (i *Interface) SubDriver() (PhyDriver, error) {
	if i.Phy != nil {
		return i.Phy, nil
	}
	if i.Switch != nil {
		return i.Switch, nil
	}
	return nil, ErrNoPhyDriver
}
