// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gmac drives a gigabit MAC with compact 2-word DMA
// descriptors, a single active queue and 5 priority queues parked on
// shared dummy rings.
package gmac

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
}

func (c *Config) set_defaults() {
	if c.TxRingLen == 0 {
		c.TxRingLen = 8
	}
	if c.RxRingLen == 0 {
		c.RxRingLen = 96
	}
	if c.TxBufferBytes == 0 {
		c.TxBufferBytes = 1536
	}
	if c.RxBufferBytes == 0 {
		c.RxBufferBytes = 128
	}
}

const (
	dummy_ring_len  = 2
	dummy_buf_bytes = 64
)

// dummy_ring parks an unused priority queue.  Its slots are owned by
// software forever so the DMA engine never touches the buffers.
type dummy_ring struct {
	desc []byte
	addr uint32
}

type Dev struct {
	cfg    Config
	region *hw.Region
	mem    *hw.DmaRegion
	regs   regs
	i      *ethif.Interface

	tx ethif.TxRing
	rx ethif.RxRing

	dummy_tx dummy_ring
	dummy_rx dummy_ring

	tx_temp []byte
}

func New(cfg Config) *Dev {
	cfg.set_defaults()
	d := &Dev{cfg: cfg}
	d.region = hw.MakeRegion(RegsBytes)
	d.regs.init(d.region)

	n := cfg.TxRingLen*(8+cfg.TxBufferBytes) +
		cfg.RxRingLen*(8+cfg.RxBufferBytes) +
		2*dummy_ring_len*(8+dummy_buf_bytes) +
		4096
	d.mem = hw.NewDmaRegion(n)
	d.tx_temp = make([]byte, cfg.TxBufferBytes)
	return d
}

// Regs exposes the register window so a simulated peripheral can hook
// writes.
func (d *Dev) Regs() *hw.Region   { return d.region }
func (d *Dev) Dma() *hw.DmaRegion { return d.mem }

func (d *Dev) Init(i *ethif.Interface) error {
	d.i = i

	// Quiesce the MAC before touching rings or filters.
	d.regs.ncr.Set(0)
	d.regs.ncfgr.Set(ncfgr_clk_mck_96)
	d.regs.ncr.Or(ncr_mpe)

	sub, err := i.SubDriver()
	if err != nil {
		return err
	}
	if err = sub.Init(i); err != nil {
		return err
	}

	d.set_station_addr(i.MacAddr)
	for j := 1; j < n_specific_addrs; j++ {
		d.regs.sab[j].Set(0)
		d.regs.sat[j].Set(0)
	}
	d.regs.hrb.Set(0)
	d.regs.hrt.Set(0)
	d.regs.ncfgr.Or(ncfgr_maxfs | ncfgr_mtihen)

	d.regs.dcfgr.Set(dcfgr_fbldo_incr4 | dcfgr_rxbms_full | dcfgr_txpbms |
		uint32(d.cfg.RxBufferBytes/64)<<dcfgr_drbs_shift)

	if err = d.tx.Init(Layout, d.mem, d.cfg.TxRingLen, d.cfg.TxBufferBytes); err != nil {
		return err
	}
	if err = d.rx.Init(Layout, d.mem, d.cfg.RxRingLen, d.cfg.RxBufferBytes,
		ethernet.MaxFrameBytes); err != nil {
		return err
	}
	if err = d.init_dummy_rings(); err != nil {
		return err
	}
	d.write_ring_bases()

	d.regs.tsr.Set(tsr_mask)
	d.regs.rsr.Set(rsr_mask)
	d.regs.idr.Set(^uint32(0))
	for j := range d.regs.idrpq {
		d.regs.idrpq[j].Set(^uint32(0))
	}
	_ = d.regs.isr.Get()
	d.regs.ier.Set(int_hresp | int_rovr | int_tcomp | int_tfc | int_rlex |
		int_tur | int_rxubr | int_rcomp)

	d.regs.ncr.Or(ncr_txen | ncr_rxen)

	i.TxReady.Set()
	log.Print("daemon", "gmac init", "tx-ring", d.cfg.TxRingLen,
		"rx-ring", d.cfg.RxRingLen)
	return nil
}

func (d *Dev) set_station_addr(a ethernet.Address) {
	// Bottom register must be written first; the top write enables
	// the match.
	d.regs.sab[0].Set(a.Lo32())
	d.regs.sat[0].Set(a.Hi16())
}

func (d *Dev) init_dummy_rings() (err error) {
	mk := func(r *dummy_ring, tx bool) error {
		var ba uint32
		r.desc, r.addr, err = d.mem.Alloc(dummy_ring_len*8, 6)
		if err != nil {
			return err
		}
		if _, ba, err = d.mem.Alloc(dummy_ring_len*dummy_buf_bytes, 6); err != nil {
			return err
		}
		for j := uint(0); j < dummy_ring_len; j++ {
			dd := ethif.Desc(r.desc[8*j : 8*(j+1)])
			wrap := j == dummy_ring_len-1
			if tx {
				Layout.TxInit(dd, ba+uint32(j*dummy_buf_bytes), wrap)
			} else {
				Layout.RxInit(dd, ba+uint32(j*dummy_buf_bytes), wrap)
				// Keep software ownership so the queue
				// never receives.
				dd.OrWord(0, rx_desc_ownership)
			}
		}
		return nil
	}
	if err = mk(&d.dummy_tx, true); err != nil {
		return
	}
	return mk(&d.dummy_rx, false)
}

func (d *Dev) write_ring_bases() {
	d.regs.tbqb.Set(d.tx.DescAddr())
	d.regs.rbqb.Set(d.rx.DescAddr())
	for j := range d.regs.tbqbapq {
		d.regs.tbqbapq[j].Set(d.dummy_tx.addr)
		d.regs.rbqbapq[j].Set(d.dummy_rx.addr)
		d.regs.rbsrpq[j].Set(dummy_buf_bytes / 64)
	}
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

// Interrupt is the first tier handler.  It acknowledges transmit
// completions inline and defers all receive work to EventHandler.
func (d *Dev) Interrupt() {
	// Every queue's status register must be read to deassert the
	// line, even the queues carrying no traffic.
	for j := range d.regs.isrpq {
		_ = d.regs.isrpq[j].Get()
	}
	// The read clears ISR, so a latched receive completion must be
	// folded into the event decision here or it is lost.
	isr := d.regs.isr.Get()

	tsr := d.regs.tsr.Get()
	if tsr&tsr_mask != 0 {
		d.regs.tsr.Set(tsr)
		if d.tx.Free() {
			d.i.TxReady.Set()
		}
	}
	if isr&int_rcomp != 0 || d.regs.rsr.Get()&rsr_mask != 0 {
		d.i.PostEvent()
	}
}

func (d *Dev) EventHandler(i *ethif.Interface) {
	rsr := d.regs.rsr.Get()
	if rsr&rsr_mask != 0 {
		d.regs.rsr.Set(rsr)
		if rsr&rsr_hno != 0 {
			d.recover_bus_error()
		}
	}
	// The event may have been posted on a receive completion alone,
	// with the status bits already acknowledged; the ring is still
	// the source of truth for pending frames.
	d.drain()
}

func (d *Dev) drain() {
	for {
		p, _, err := d.rx.Drain()
		switch err {
		case nil:
			a := ethif.DefaultRxAncillary
			d.i.Counters.RxPackets.Inc(1)
			d.i.Counters.RxBytes.Inc(int64(len(p)))
			d.i.ProcessPacket(p, &a)
		case ethif.ErrInvalidPacket:
			d.i.Counters.RxErrors.Inc(1)
		default:
			return
		}
	}
}

// recover_bus_error rebuilds both rings after the DMA engine reports
// an AHB error; the hardware ring pointers are undefined at that
// point.
func (d *Dev) recover_bus_error() {
	d.regs.ncr.Andnot(ncr_txen | ncr_rxen)
	d.tx.Reset()
	d.rx.Reset()
	d.write_ring_bases()
	d.regs.ncr.Or(ncr_txen | ncr_rxen)
	d.i.TxReady.Set()
	log.Print("daemon", "err", "gmac bus error recovery")
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
	d.regs.ncr.Or(ncr_tstart)
	i.Counters.TxPackets.Inc(1)
	i.Counters.TxBytes.Inc(int64(n))
	if d.tx.Free() {
		i.TxReady.Set()
	}
	return nil
}

func (d *Dev) UpdateMacConfig(i *ethif.Interface) error {
	v := d.regs.ncfgr.Get() &^ uint32(ncfgr_spd|ncfgr_fd)
	if i.LinkSpeed == ethif.Speed100 {
		v |= ncfgr_spd
	}
	if i.Duplex == ethif.FullDuplex {
		v |= ncfgr_fd
	}
	d.regs.ncfgr.Set(v)
	return nil
}
