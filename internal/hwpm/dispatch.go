// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import (
	"fmt"

	uuid "github.com/satori/go.uuid"
)

func (h *Instance) isRouter(id IPID) bool {
	return id == h.rtr || (h.hasPma && id == h.pma)
}

// forSingleIP applies f to one IP. On failure the IP keeps its state.
func (h *Instance) forSingleIP(id IPID, f Func) error {
	h.stats.Dispatches[f]++
	ip, found := h.table.IP(id)
	if !found {
		err := &IPError{fmt.Sprint("ip", id), id, f, ErrUnavailable}
		h.logf("%v", err)
		return err
	}
	var err error
	switch f {
	case ReserveRouter:
		err = h.reserveRouter(ip)
	case ReleaseRouter:
		err = h.releaseRouter(ip)
	default:
		if e := h.apply(ip, f); e != nil {
			err = e
		}
	}
	if err != nil {
		h.logf("%v", err)
	}
	return err
}

// forAllIP applies f to every IP in table order. It never stops early; the
// returned SweepError lists each IP that failed.
func (h *Instance) forAllIP(f Func) error {
	h.stats.Dispatches[f]++
	var failed []*IPError
	for _, ip := range h.table.IPs() {
		if f == Release && h.isRouter(ip.ID) {
			continue
		}
		if err := h.apply(ip, f); err != nil {
			h.logf("%v", err)
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return &SweepError{f, failed}
	}
	return nil
}

// apply is the per IP state machine. IPs not in a state f acts upon are
// skipped without calling their handler.
func (h *Instance) apply(ip *IP, f Func) *IPError {
	switch f {
	case Reserve:
		if ip.Floorswept() {
			return &IPError{ip.Name, ip.ID, f, ErrUnavailable}
		}
		if ip.state != Inactive {
			return &IPError{ip.Name, ip.ID, f, ErrAlreadyReserved}
		}
		return h.call(ip, f, ip.Ops.Reserve, Reserved)
	case Bind:
		if ip.state != Reserved {
			return nil
		}
		return h.call(ip, f, ip.Ops.Bind, Bound)
	case Unbind:
		if ip.state != Bound {
			return nil
		}
		return h.call(ip, f, ip.Ops.Unbind, Reserved)
	case Release:
		// a Bound ip here failed its unbind; drop it anyway
		if ip.state == Inactive {
			return nil
		}
		return h.call(ip, f, ip.Ops.Release, Inactive)
	}
	panic(fmt.Errorf("%s: %v isn't a per ip func", ip.Name, f))
}

func (h *Instance) call(ip *IP, f Func, handler func(*IP) error, to State) *IPError {
	h.stats.Calls[Call{ip.ID, f}]++
	if handler != nil {
		if err := handler(ip); err != nil {
			return &IPError{ip.Name, ip.ID, f, err}
		}
	}
	h.transition(ip, to)
	return nil
}

func (h *Instance) pmaIP() *IP {
	if !h.hasPma {
		return nil
	}
	ip, _ := h.table.IP(h.pma)
	return ip
}

func (h *Instance) reserveRouter(rtr *IP) error {
	pma := h.pmaIP()
	if pma != nil {
		if err := h.apply(pma, Reserve); err != nil {
			return err
		}
	}
	if err := h.apply(rtr, Reserve); err != nil {
		if pma != nil {
			if xerr := h.apply(pma, Release); xerr != nil {
				h.logf("rollback: %v", xerr)
			}
		}
		return err
	}
	h.session = uuid.NewV4()
	return nil
}

// releaseRouter unbinds and releases RTR then PMA, attempting every step.
func (h *Instance) releaseRouter(rtr *IP) error {
	var first error
	for _, ip := range []*IP{rtr, h.pmaIP()} {
		if ip == nil {
			continue
		}
		for _, f := range []Func{Unbind, Release} {
			if err := h.apply(ip, f); err != nil && first == nil {
				first = err
			}
		}
	}
	if rtr.state == Inactive {
		h.session = uuid.Nil
	}
	return first
}
