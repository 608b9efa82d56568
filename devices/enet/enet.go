// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package enet drives a fast/gigabit MAC with enhanced 8-word DMA
// descriptors, receive/transmit doorbell registers and a maskable
// event register.
package enet

import (
	"github.com/platinasystems/ethif"
	"github.com/platinasystems/ethif/ethernet"
	"github.com/platinasystems/ethif/hw"
	"github.com/platinasystems/log"
)

type Config struct {
	TxRingLen     uint
	RxRingLen     uint
	TxBufferBytes uint
	RxBufferBytes uint

	// MDC divider programmed into the MII speed control register.
	MdcDivider uint32
}

func (c *Config) set_defaults() {
	if c.TxRingLen == 0 {
		c.TxRingLen = 8
	}
	if c.RxRingLen == 0 {
		c.RxRingLen = 8
	}
	if c.TxBufferBytes == 0 {
		c.TxBufferBytes = 1536
	}
	if c.RxBufferBytes == 0 {
		c.RxBufferBytes = 1536
	}
	if c.MdcDivider == 0 {
		c.MdcDivider = 0x78
	}
}

const eimr_enabled = eir_txf | eir_rxf | eir_eberr

type Dev struct {
	cfg    Config
	region *hw.Region
	mem    *hw.DmaRegion
	regs   regs
	i      *ethif.Interface

	tx ethif.TxRing
	rx ethif.RxRing

	tx_temp []byte
}

func New(cfg Config) *Dev {
	cfg.set_defaults()
	d := &Dev{cfg: cfg}
	d.region = hw.MakeRegion(RegsBytes)
	d.regs.init(d.region)

	n := cfg.TxRingLen*(32+cfg.TxBufferBytes) +
		cfg.RxRingLen*(32+cfg.RxBufferBytes) +
		4096
	d.mem = hw.NewDmaRegion(n)
	d.tx_temp = make([]byte, cfg.TxBufferBytes)
	return d
}

func (d *Dev) Regs() *hw.Region   { return d.region }
func (d *Dev) Dma() *hw.DmaRegion { return d.mem }

func (d *Dev) Init(i *ethif.Interface) error {
	d.i = i

	d.regs.ecr.Set(ecr_reset)
	for d.regs.ecr.Get()&ecr_reset != 0 {
	}
	d.regs.mscr.Set(d.cfg.MdcDivider)

	sub, err := i.SubDriver()
	if err != nil {
		return err
	}
	if err = sub.Init(i); err != nil {
		return err
	}

	// Clear any latched events before unmasking.
	d.regs.eir.Set(^uint32(0))

	d.set_station_addr(i.MacAddr)
	d.regs.iaur.Set(0)
	d.regs.ialr.Set(0)
	d.regs.gaur.Set(0)
	d.regs.galr.Set(0)

	d.regs.rcr.Set(uint32(ethernet.MaxFrameBytes)<<rcr_max_fl_shift |
		rcr_rmii_mode | rcr_mii_mode)
	d.regs.tcr.Set(tcr_fden)

	if err = d.tx.Init(Layout, d.mem, d.cfg.TxRingLen, d.cfg.TxBufferBytes); err != nil {
		return err
	}
	if err = d.rx.Init(Layout, d.mem, d.cfg.RxRingLen, d.cfg.RxBufferBytes,
		ethernet.MaxFrameBytes); err != nil {
		return err
	}
	d.write_ring_bases()
	d.regs.tfwr.Set(tfwr_strfwd)

	d.regs.eimr.Set(eimr_enabled)
	d.regs.ecr.Or(ecr_dbswp | ecr_etheren)
	d.regs.rdar.Set(rdar_active)

	i.TxReady.Set()
	log.Print("daemon", "enet init", "tx-ring", d.cfg.TxRingLen,
		"rx-ring", d.cfg.RxRingLen)
	return nil
}

func (d *Dev) set_station_addr(a ethernet.Address) {
	// Big-endian packing: PALR holds the first 4 octets.
	d.regs.palr.Set(uint32(a[0])<<24 | uint32(a[1])<<16 |
		uint32(a[2])<<8 | uint32(a[3]))
	d.regs.paur.Set(uint32(a[4])<<24 | uint32(a[5])<<16 | paur_type)
}

func (d *Dev) write_ring_bases() {
	d.regs.rdsr.Set(d.rx.DescAddr())
	d.regs.tdsr.Set(d.tx.DescAddr())
	d.regs.mrbr.Set(uint32(d.cfg.RxBufferBytes))
}

func (d *Dev) Tick(i *ethif.Interface) {
	if sub, err := i.SubDriver(); err == nil {
		sub.Tick(i)
	}
}

func (d *Dev) EnableIrq(i *ethif.Interface) {
	if sub, err := i.SubDriver(); err == nil {
		sub.EnableIrq(i)
	}
}

func (d *Dev) DisableIrq(i *ethif.Interface) {
	if sub, err := i.SubDriver(); err == nil {
		sub.DisableIrq(i)
	}
}

// Interrupt is the first tier handler.  Transmit completions are
// acknowledged inline; receive and bus-error events mask the whole
// event register and defer to EventHandler, which restores the mask.
func (d *Dev) Interrupt() {
	events := d.regs.eir.Get()
	if events&eir_txf != 0 {
		d.regs.eir.Set(eir_txf)
		// A frame published while the engine was draining the previous
		// one may have been missed; nudge it to rescan the ring.
		d.regs.tdar.Set(tdar_active)
		if d.tx.Free() {
			d.i.TxReady.Set()
		}
	}
	if events&(eir_rxf|eir_eberr) != 0 {
		d.regs.eimr.Set(0)
		d.i.PostEvent()
	}
}

func (d *Dev) EventHandler(i *ethif.Interface) {
	events := d.regs.eir.Get()
	if events&eir_eberr != 0 {
		d.regs.eir.Set(eir_eberr)
		d.recover_bus_error()
	}
	if events&eir_rxf != 0 {
		d.regs.eir.Set(eir_rxf)
		d.drain()
	}
	d.regs.eimr.Set(eimr_enabled)
}

func (d *Dev) drain() {
	freed := uint(0)
	for {
		p, n, err := d.rx.Drain()
		freed += n
		if err == nil {
			a := ethif.DefaultRxAncillary
			d.i.Counters.RxPackets.Inc(1)
			d.i.Counters.RxBytes.Inc(int64(len(p)))
			d.i.ProcessPacket(p, &a)
			continue
		}
		if err == ethif.ErrInvalidPacket {
			d.i.Counters.RxErrors.Inc(1)
			continue
		}
		break
	}
	// Reception stalls until the doorbell is rung again, so ring it
	// whenever descriptors went back to the DMA engine.
	if freed > 0 {
		d.regs.rdar.Set(rdar_active)
	}
}

func (d *Dev) recover_bus_error() {
	d.regs.ecr.Andnot(ecr_etheren)
	d.tx.Reset()
	d.rx.Reset()
	d.write_ring_bases()
	d.regs.ecr.Or(ecr_etheren)
	d.regs.rdar.Set(rdar_active)
	d.i.TxReady.Set()
	log.Print("daemon", "err", "enet bus error recovery")
}

func (d *Dev) SendPacket(i *ethif.Interface, b *ethif.Buffer, offset uint, a *ethif.TxAncillary) error {
	var n uint
	if l := b.Len(); l > offset {
		n = l - offset
	}
	if n > d.cfg.TxBufferBytes {
		i.TxReady.Set()
		return ethif.ErrInvalidLength
	}
	if !d.tx.Free() {
		return ethif.ErrRingBusy
	}
	b.Read(d.tx_temp[:n], offset)
	if err := d.tx.Submit(d.tx_temp[:n]); err != nil {
		return err
	}
	d.regs.tdar.Set(tdar_active)
	i.Counters.TxPackets.Inc(1)
	i.Counters.TxBytes.Inc(int64(n))
	if d.tx.Free() {
		i.TxReady.Set()
	}
	return nil
}

// UpdateMacConfig reprograms speed and duplex.  The MAC only samples
// these bits while disabled, and disabling it resets the DMA ring
// pointers, so both rings are rebuilt.
func (d *Dev) UpdateMacConfig(i *ethif.Interface) error {
	d.regs.ecr.Andnot(ecr_etheren)

	rcr := d.regs.rcr.Get() &^ uint32(rcr_rmii_10t|rcr_drt)
	tcr := d.regs.tcr.Get() &^ uint32(tcr_fden)
	ecr := d.regs.ecr.Get() &^ uint32(ecr_speed)
	switch i.LinkSpeed {
	case ethif.Speed1000:
		ecr |= ecr_speed
	case ethif.Speed10:
		rcr |= rcr_rmii_10t
	}
	if i.Duplex == ethif.FullDuplex {
		tcr |= tcr_fden
	} else {
		rcr |= rcr_drt
	}
	d.regs.rcr.Set(rcr)
	d.regs.tcr.Set(tcr)
	d.regs.ecr.Set(ecr)

	d.tx.Reset()
	d.rx.Reset()
	d.write_ring_bases()

	d.regs.ecr.Or(ecr_etheren)
	d.regs.rdar.Set(rdar_active)
	i.TxReady.Set()
	return nil
}
