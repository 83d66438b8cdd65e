// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package t234 describes the Orin HWPM apertures.
package t234

import (
	"strconv"
	"time"

	"github.com/forecr/forecr-xavier-kernel-sub027/internal/hwpm"
	"github.com/forecr/forecr-xavier-kernel-sub027/internal/mmio"
)

const Name = "t234"

// IP indices, in table order.
const (
	IPPma hwpm.IPID = iota
	IPRtr
	IPDisplay
	IPIsp
	IPMgbe
	IPNvdec
	IPNvdla
	IPNvenc
	IPMssChannel
	IPMssGpuHub
	IPMssIsoNisoHubs
	IPMssMcf
	IPOfa
	IPPcie
	IPPva
	IPScf
	IPVi
	IPVic
	nIPs
)

// Resources, numbered as user space numbers them.
const (
	ResourceVi hwpm.ResourceID = iota
	ResourceIsp
	ResourceVic
	ResourceOfa
	ResourcePva
	ResourceNvdla
	ResourceMgbe
	ResourceScf
	ResourceNvdec
	ResourceNvenc
	ResourcePcie
	ResourceDisplay
	ResourceMssChannel
	ResourceMssGpuHub
	ResourceMssIsoNisoHubs
	ResourceMssMcf
	ResourcePma
	ResourceCmdSliceRtr
	NResources
)

const (
	perfmonBase = 0x0f100000
	perfmonSize = 0x1000
	pmaBase     = 0x0f14a000
	rtrBase     = 0x0f14d000
)

type ipDesc struct {
	id       hwpm.IPID
	name     string
	resource hwpm.ResourceID
	insts    int
	// perfmux window of instance 0 and the stride between instances;
	// zero if the IP has perfmons only.
	perfmux, stride, perfmuxSize uint64
}

var ipDescs = []ipDesc{
	{IPDisplay, "display", ResourceDisplay, 1, 0x13800000, 0, 0x1000},
	{IPIsp, "isp", ResourceIsp, 1, 0x14800000, 0, 0x1000},
	{IPMgbe, "mgbe", ResourceMgbe, 4, 0x06810000, 0x100000, 0x1000},
	{IPNvdec, "nvdec", ResourceNvdec, 1, 0x15480000, 0, 0x1000},
	{IPNvdla, "nvdla", ResourceNvdla, 2, 0x158c0000, 0x2000000, 0x1000},
	{IPNvenc, "nvenc", ResourceNvenc, 1, 0x154c0000, 0, 0x1000},
	{IPMssChannel, "mss_channel", ResourceMssChannel, 16, 0x01a10000, 0x10000, 0x1000},
	{IPMssGpuHub, "mss_gpu_hub", ResourceMssGpuHub, 1, 0x08800000, 0, 0x1000},
	{IPMssIsoNisoHubs, "mss_iso_niso_hubs", ResourceMssIsoNisoHubs, 1, 0x02a00000, 0, 0x1000},
	{IPMssMcf, "mss_mcf", ResourceMssMcf, 3, 0x02c10000, 0x10000, 0x1000},
	{IPOfa, "ofa", ResourceOfa, 1, 0x15a50000, 0, 0x1000},
	{IPPcie, "pcie", ResourcePcie, 8, 0x14080000, 0x20000, 0x1000},
	{IPPva, "pva", ResourcePva, 1, 0x16000000, 0, 0x1000},
	{IPScf, "scf", ResourceScf, 1, 0, 0, 0},
	{IPVi, "vi", ResourceVi, 2, 0x15f00000, 0x10000, 0x1000},
	{IPVic, "vic", ResourceVic, 1, 0x15340000, 0, 0x1000},
}

// Chip implements hwpm.ChipOps for t234.
type Chip struct {
	table      *hwpm.Table
	byResource map[hwpm.ResourceID]hwpm.IPID
}

// New builds the aperture table with register handlers on bus. A zero
// timeout selects hwpm.DefaultPollTimeout.
func New(bus mmio.Bus, timeout time.Duration) (*Chip, error) {
	ops := hwpm.DefaultOps(bus, timeout)
	ips := []*hwpm.IP{
		{
			ID:   IPPma,
			Name: "pma",
			Ops:  ops,
			Insts: []hwpm.Inst{{
				Elements: []hwpm.Element{{
					Name:  "pma",
					Type:  hwpm.Perfmux,
					Start: pmaBase,
					End:   pmaBase + 0x1fff,
				}},
			}},
		},
		{
			ID:   IPRtr,
			Name: "rtr",
			Ops:  ops,
			Insts: []hwpm.Inst{{
				Elements: []hwpm.Element{{
					Name:  "rtr",
					Type:  hwpm.Perfmux,
					Start: rtrBase,
					End:   rtrBase + 0xfff,
				}},
			}},
		},
	}
	c := &Chip{byResource: make(map[hwpm.ResourceID]hwpm.IPID)}
	perfmon := uint64(perfmonBase)
	for _, d := range ipDescs {
		ip := &hwpm.IP{ID: d.id, Name: d.name, Ops: ops}
		for i := 0; i < d.insts; i++ {
			inst := hwpm.Inst{Index: i}
			suffix := strconv.Itoa(i)
			inst.Elements = append(inst.Elements, hwpm.Element{
				Name:  "perfmon_" + d.name + suffix,
				Type:  hwpm.Perfmon,
				Start: perfmon,
				End:   perfmon + perfmonSize - 1,
			})
			perfmon += perfmonSize
			if d.perfmuxSize > 0 {
				start := d.perfmux + uint64(i)*d.stride
				inst.Elements = append(inst.Elements, hwpm.Element{
					Name:  d.name + suffix,
					Type:  hwpm.Perfmux,
					Start: start,
					End:   start + d.perfmuxSize - 1,
				})
			}
			ip.Insts = append(ip.Insts, inst)
		}
		ips = append(ips, ip)
		c.byResource[d.resource] = d.id
	}
	t, err := hwpm.NewTable(ips...)
	if err != nil {
		return nil, err
	}
	c.table = t
	return c, nil
}

func (*Chip) Name() string { return Name }

func (c *Chip) Table() *hwpm.Table { return c.table }

// IsResourceActive maps r to its IP unless the IP is floorswept. PMA and
// the command slice router are owned by the router path and aren't
// reservable as resources.
func (c *Chip) IsResourceActive(r hwpm.ResourceID) (hwpm.IPID, bool) {
	id, found := c.byResource[r]
	if !found {
		return 0, false
	}
	ip, found := c.table.IP(id)
	if !found || ip.Floorswept() {
		return 0, false
	}
	return id, true
}

func (*Chip) RtrIPIndex() hwpm.IPID { return IPRtr }

func (*Chip) PmaIPIndex() (hwpm.IPID, bool) { return IPPma, true }

var resourceNames = map[string]hwpm.ResourceID{
	"vi":                ResourceVi,
	"isp":               ResourceIsp,
	"vic":               ResourceVic,
	"ofa":               ResourceOfa,
	"pva":               ResourcePva,
	"nvdla":             ResourceNvdla,
	"mgbe":              ResourceMgbe,
	"scf":               ResourceScf,
	"nvdec":             ResourceNvdec,
	"nvenc":             ResourceNvenc,
	"pcie":              ResourcePcie,
	"display":           ResourceDisplay,
	"mss_channel":       ResourceMssChannel,
	"mss_gpu_hub":       ResourceMssGpuHub,
	"mss_iso_niso_hubs": ResourceMssIsoNisoHubs,
	"mss_mcf":           ResourceMssMcf,
	"pma":               ResourcePma,
	"cmd_slice_rtr":     ResourceCmdSliceRtr,
}

func (*Chip) Resources() map[string]hwpm.ResourceID {
	m := make(map[string]hwpm.ResourceID, len(resourceNames))
	for k, v := range resourceNames {
		m[k] = v
	}
	return m
}
