// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import (
	"fmt"
	"strconv"
)

// IPID indexes an IP in its chip table.
type IPID int

// ResourceID is the user visible resource enumeration.
type ResourceID uint32

type ElementType int

const (
	Perfmux ElementType = iota
	Perfmon
)

func (t ElementType) String() string {
	switch t {
	case Perfmux:
		return "perfmux"
	case Perfmon:
		return "perfmon"
	}
	return "ElementType(" + strconv.Itoa(int(t)) + ")"
}

type State int

const (
	Inactive State = iota
	Reserved
	Bound
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Reserved:
		return "reserved"
	case Bound:
		return "bound"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Element is one perfmon or perfmux register window. Start and End are
// inclusive physical addresses.
type Element struct {
	Name       string
	Type       ElementType
	Start, End uint64
}

func (e *Element) Contains(pa uint64) bool {
	return pa >= e.Start && pa <= e.End
}

// Inst is one hardware instance of an IP.
type Inst struct {
	Index      int
	Floorswept bool
	Elements   []Element
}

// IPOps are the optional per IP handlers. A nil handler succeeds without
// touching hardware.
type IPOps struct {
	Reserve func(*IP) error
	Release func(*IP) error
	Bind    func(*IP) error
	Unbind  func(*IP) error
}

type IP struct {
	ID    IPID
	Name  string
	Insts []Inst
	Ops   IPOps

	state State
}

func (ip *IP) State() State { return ip.state }

// Floorswept is true when no instance of the IP is present on this die.
func (ip *IP) Floorswept() bool {
	for i := range ip.Insts {
		if !ip.Insts[i].Floorswept {
			return false
		}
	}
	return true
}

// Active calls f with each element of every present instance.
func (ip *IP) Active(f func(inst *Inst, e *Element) error) error {
	for i := range ip.Insts {
		inst := &ip.Insts[i]
		if inst.Floorswept {
			continue
		}
		for j := range inst.Elements {
			if err := f(inst, &inst.Elements[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ip *IP) String() string { return ip.Name }

func (ip *IP) GoString() string {
	return fmt.Sprintf("%s[%d]{%v}", ip.Name, ip.ID, ip.state)
}
