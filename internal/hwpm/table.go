// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import "fmt"

// Table is the chip's ordered aperture table. Its shape is fixed at
// construction; only IP state changes afterward.
type Table struct {
	ips    []*IP
	byID   map[IPID]*IP
	byName map[string]*IP
}

// Location identifies the element owning a physical address.
type Location struct {
	IP      IPID
	Inst    int
	Element int
	Type    ElementType
}

func NewTable(ips ...*IP) (*Table, error) {
	t := &Table{
		byID:   make(map[IPID]*IP),
		byName: make(map[string]*IP),
	}
	for _, ip := range ips {
		if _, found := t.byID[ip.ID]; found {
			return nil, fmt.Errorf("%s: duplicate ip index %d",
				ip.Name, ip.ID)
		}
		if _, found := t.byName[ip.Name]; found {
			return nil, fmt.Errorf("%s: duplicate ip name", ip.Name)
		}
		for i := range ip.Insts {
			for j := range ip.Insts[i].Elements {
				e := &ip.Insts[i].Elements[j]
				if e.End < e.Start {
					return nil, fmt.Errorf("%s.%d: %s: bad range 0x%x-0x%x",
						ip.Name, ip.Insts[i].Index, e.Name,
						e.Start, e.End)
				}
			}
		}
		t.ips = append(t.ips, ip)
		t.byID[ip.ID] = ip
		t.byName[ip.Name] = ip
	}
	return t, nil
}

func (t *Table) IP(id IPID) (*IP, bool) {
	ip, found := t.byID[id]
	return ip, found
}

func (t *Table) ByName(name string) (*IP, bool) {
	ip, found := t.byName[name]
	return ip, found
}

// IPs in table order.
func (t *Table) IPs() []*IP { return t.ips }

func (t *Table) ForAddress(pa uint64) (Location, bool) {
	for _, ip := range t.ips {
		for i := range ip.Insts {
			inst := &ip.Insts[i]
			for j := range inst.Elements {
				if inst.Elements[j].Contains(pa) {
					return Location{
						IP:      ip.ID,
						Inst:    inst.Index,
						Element: j,
						Type:    inst.Elements[j].Type,
					}, true
				}
			}
		}
	}
	return Location{}, false
}

// Floorsweep marks the given instance absent.
func (t *Table) Floorsweep(id IPID, index int) error {
	ip, found := t.byID[id]
	if !found {
		return fmt.Errorf("ip %d: %w", id, ErrUnavailable)
	}
	for i := range ip.Insts {
		if ip.Insts[i].Index == index {
			ip.Insts[i].Floorswept = true
			return nil
		}
	}
	return fmt.Errorf("%s.%d: no such instance", ip.Name, index)
}
