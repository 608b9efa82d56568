// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ethifsim runs a MAC driver against its simulated peripheral and
// loops transmitted frames back into the receive path.
//
// Usage: ethifsim [-enet] [-v] [-n COUNT] [-mac ADDRESS]
package main

import (
	"fmt"
	"os"

	"github.com/platinasystems/ethif"
	"github.com/platinasystems/ethif/devices/enet"
	"github.com/platinasystems/ethif/devices/gmac"
	"github.com/platinasystems/ethif/ethernet"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
)

// phy is a link partner that is always up.
type phy struct{}

func (phy) Init(i *ethif.Interface) error {
	i.LinkSpeed = ethif.Speed100
	i.Duplex = ethif.FullDuplex
	return nil
}
func (phy) Tick(i *ethif.Interface)       {}
func (phy) EnableIrq(i *ethif.Interface)  {}
func (phy) DisableIrq(i *ethif.Interface) {}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ethifsim:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flag, args := flags.New(args, "-enet", "-v")
	parm, args := parms.New(args, "-n", "-mac")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}

	n := 4
	if s := parm.ByName["-n"]; len(s) > 0 {
		if _, err := fmt.Sscan(s, &n); err != nil {
			return err
		}
	}
	mac := ethernet.Address{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	if s := parm.ByName["-mac"]; len(s) > 0 {
		var err error
		if mac, err = ethernet.ParseAddress(s); err != nil {
			return err
		}
	}

	i := ethif.NewInterface("sim0")
	i.MacAddr = mac
	i.Phy = phy{}

	n_rx := 0
	i.ProcessPacket = func(p []byte, a *ethif.RxAncillary) {
		n_rx++
		if flag.ByName["-v"] {
			log.Print("daemon", "rx", "len", len(p))
		}
	}

	// The simulated wire: frames pulled out of the transmit ring go
	// back in through the receive path.
	var (
		deliver func(p []byte) error
		sent    func() [][]byte
	)
	if flag.ByName["-enet"] {
		d := enet.New(enet.Config{})
		s := enet.NewSimulator(d)
		deliver = s.DeliverFrame
		sent = func() [][]byte { return s.Sent }
		if err := i.Attach(d); err != nil {
			return err
		}
	} else {
		d := gmac.New(gmac.Config{})
		s := gmac.NewSimulator(d)
		deliver = s.DeliverFrame
		sent = func() [][]byte { return s.Sent }
		if err := i.Attach(d); err != nil {
			return err
		}
	}

	for seq := 0; seq < n; seq++ {
		if !i.TxReady.Test() {
			return ethif.ErrRingBusy
		}
		var b ethif.Buffer
		b.Append(frame(mac, seq))
		if err := i.SendPacket(&b, 0, &ethif.TxAncillary{}); err != nil {
			return err
		}
	}

	for _, p := range sent() {
		if err := deliver(p); err != nil {
			return err
		}
		for i.Event.Test() {
			i.ServiceEvent()
		}
	}

	c := i.Counters
	fmt.Printf("tx %d frames %d bytes, rx %d frames %d bytes, %d rx errors\n",
		c.TxPackets.Count(), c.TxBytes.Count(),
		c.RxPackets.Count(), c.RxBytes.Count(), c.RxErrors.Count())
	if n_rx != n {
		return fmt.Errorf("looped back %d of %d frames", n_rx, n)
	}
	return nil
}

func frame(src ethernet.Address, seq int) []byte {
	p := make([]byte, 60)
	copy(p[0:], ethernet.BroadcastAddr[:])
	copy(p[6:], src[:])
	p[12], p[13] = 0x08, 0x00
	p[14] = byte(seq)
	return p
}
