// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import (
	"fmt"
	"time"

	"github.com/forecr/forecr-xavier-kernel-sub027/internal/mmio"
)

// Perfmon register offsets relative to the element base.
const (
	PmmControl      = 0x09c
	PmmEngineStatus = 0x0c8

	PmmControlEnable      = 1 << 0
	PmmEngineStatusActive = 1 << 0
)

const DefaultPollTimeout = 10 * time.Millisecond

// DefaultOps returns the register level handlers shared by all IPs. Reserve
// maps and probes each element; bind and unbind gate perfmon counting;
// release unmaps. A failed bind stops the perfmons it already enabled and
// unbind disables every perfmon before returning its first error.
func DefaultOps(bus mmio.Bus, timeout time.Duration) IPOps {
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	mapper, _ := bus.(mmio.Mapper)
	return IPOps{
		Reserve: func(ip *IP) error {
			var mapped []*Element
			err := ip.Active(func(inst *Inst, e *Element) error {
				if mapper != nil {
					if err := mapper.Map(e.Start, e.End); err != nil {
						return err
					}
					mapped = append(mapped, e)
				}
				_, err := mmio.ReadChecked(bus, probe(e))
				return err
			})
			if err != nil && mapper != nil {
				for _, e := range mapped {
					mapper.Unmap(e.Start)
				}
			}
			return err
		},
		Bind: func(ip *IP) error {
			var enabled []*Element
			err := ip.Active(func(inst *Inst, e *Element) error {
				if e.Type != Perfmon {
					return nil
				}
				err := bus.WriteRegister(e.Start+PmmControl,
					PmmControlEnable)
				if err == nil {
					enabled = append(enabled, e)
				}
				return err
			})
			if err != nil {
				// leave the IP reserved with every counter stopped
				for _, e := range enabled {
					bus.WriteRegister(e.Start+PmmControl, 0)
				}
			}
			return err
		},
		Unbind: func(ip *IP) error {
			var first error
			ip.Active(func(inst *Inst, e *Element) error {
				if e.Type != Perfmon {
					return nil
				}
				err := bus.WriteRegister(e.Start+PmmControl, 0)
				if err == nil {
					err = mmio.Poll(bus, e.Start+PmmEngineStatus,
						PmmEngineStatusActive, 0, timeout)
				}
				if first == nil {
					first = err
				}
				return nil
			})
			return first
		},
		Release: func(ip *IP) error {
			if mapper == nil {
				return nil
			}
			return ip.Active(func(inst *Inst, e *Element) error {
				return mapper.Unmap(e.Start)
			})
		},
	}
}

func probe(e *Element) uint64 {
	switch e.Type {
	case Perfmon:
		return e.Start + PmmEngineStatus
	case Perfmux:
		return e.Start
	}
	panic(fmt.Errorf("%s: invalid element type %v", e.Name, e.Type))
}
