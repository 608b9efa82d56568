// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Memory mapped register read/write.
package hw

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// Region is one MAC's register file.  On hardware it maps the
// peripheral's address space; tests and simulators back it with plain
// memory and observe writes through the hook.
type Region struct {
	b []byte

	// OnWrite, when set, replaces the default store for every
	// register write performed through a Reg.  Simulated
	// peripherals implement write semantics here: plain stores,
	// write-1-to-clear status, self-clearing doorbells.  Raw
	// Store32 bypasses it.
	OnWrite func(offset uint, v uint32)
}

func MakeRegion(n uint) *Region { return &Region{b: make([]byte, n)} }

// MapRegion wraps externally mapped register memory.
func MapRegion(b []byte) *Region { return &Region{b: b} }

func (r *Region) Load32(o uint) uint32 {
	return binary.LittleEndian.Uint32(r.b[o:])
}

// Store32 writes a register without triggering the write hook.
func (r *Region) Store32(o uint, v uint32) {
	binary.LittleEndian.PutUint32(r.b[o:], v)
}

// Reg is a 32-bit register at a fixed offset within a region.
type Reg struct {
	r *Region
	o uint
}

func (r *Region) Reg(o uint) Reg {
	if o+4 > uint(len(r.b)) {
		panic(fmt.Errorf("hw: register offset 0x%x beyond region of 0x%x bytes", o, len(r.b)))
	}
	return Reg{r: r, o: o}
}

func (g Reg) Offset() uint { return g.o }
func (g Reg) Get() uint32  { return g.r.Load32(g.o) }
func (g Reg) Set(v uint32) {
	if g.r.OnWrite != nil {
		g.r.OnWrite(g.o, v)
		return
	}
	g.r.Store32(g.o, v)
}
func (g Reg) Or(v uint32)     { g.Set(g.Get() | v) }
func (g Reg) Andnot(v uint32) { g.Set(g.Get() &^ v) }

var barrier uint32

// MemoryBarrier orders buffer and descriptor stores before the
// ownership publish that follows it.
func MemoryBarrier() {
	atomic.AddUint32(&barrier, 0)
}
