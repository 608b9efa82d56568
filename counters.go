// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethif

import "github.com/rcrowley/go-metrics"

// Counters is the per-interface packet accounting kept by the engine
// itself; hardware counter registers are not read here.
type Counters struct {
	TxPackets metrics.Counter
	TxBytes   metrics.Counter
	TxErrors  metrics.Counter

	RxPackets metrics.Counter
	RxBytes   metrics.Counter
	RxErrors  metrics.Counter
}

func NewCounters(name string) *Counters {
	r := metrics.DefaultRegistry
	return &Counters{
		TxPackets: metrics.NewRegisteredCounter(name+".tx-packets", r),
		TxBytes:   metrics.NewRegisteredCounter(name+".tx-bytes", r),
		TxErrors:  metrics.NewRegisteredCounter(name+".tx-errors", r),
		RxPackets: metrics.NewRegisteredCounter(name+".rx-packets", r),
		RxBytes:   metrics.NewRegisteredCounter(name+".rx-bytes", r),
		RxErrors:  metrics.NewRegisteredCounter(name+".rx-errors", r),
	}
}
