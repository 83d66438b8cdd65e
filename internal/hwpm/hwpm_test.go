// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import (
	"time"

	"github.com/forecr/forecr-xavier-kernel-sub027/internal/mmio"
)

const (
	tRTR IPID = iota
	tGPU
	tCPU
)

const (
	rGPU ResourceID = 7
	rCPU ResourceID = 8
)

const (
	gpuBase = 0x2000
	cpuBase = 0x3000
)

type testChip struct {
	table     *Table
	resources map[ResourceID]IPID
}

func (*testChip) Name() string     { return "test" }
func (c *testChip) Table() *Table  { return c.table }
func (*testChip) RtrIPIndex() IPID { return tRTR }

func (c *testChip) IsResourceActive(r ResourceID) (IPID, bool) {
	id, found := c.resources[r]
	if !found {
		return 0, false
	}
	if ip, _ := c.table.IP(id); ip.Floorswept() {
		return 0, false
	}
	return id, true
}

type pmaChip struct {
	*testChip
	pma IPID
}

func (c *pmaChip) PmaIPIndex() (IPID, bool) { return c.pma, true }

func element(name string, t ElementType, start uint64) []Inst {
	return []Inst{{
		Elements: []Element{{
			Name:  name,
			Type:  t,
			Start: start,
			End:   start + 0xfff,
		}},
	}}
}

// newTestChip returns the {RTR, GPU, CPU} table with GPU as resource 7 and
// CPU as resource 8.
func newTestChip(bus mmio.Bus) *testChip {
	ops := DefaultOps(bus, time.Millisecond)
	t, err := NewTable(
		&IP{ID: tRTR, Name: "rtr", Ops: ops,
			Insts: element("rtr", Perfmux, 0x1000)},
		&IP{ID: tGPU, Name: "gpu", Ops: ops,
			Insts: element("perfmon_gpu0", Perfmon, gpuBase)},
		&IP{ID: tCPU, Name: "cpu", Ops: ops,
			Insts: element("perfmon_cpu0", Perfmon, cpuBase)},
	)
	if err != nil {
		panic(err)
	}
	return &testChip{
		table: t,
		resources: map[ResourceID]IPID{
			rGPU: tGPU,
			rCPU: tCPU,
		},
	}
}

func newTestInstance(bus mmio.Bus, opts ...Option) *Instance {
	h, err := New(newTestChip(bus), opts...)
	if err != nil {
		panic(err)
	}
	return h
}

func state(h *Instance, id IPID) State {
	s, _ := h.State(id)
	return s
}
