// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hwpm arbitrates the SOC hardware performance monitor apertures.
//
// An Instance owns a chip's aperture table and admits, binds and releases
// reservations against it. Reservation is exclusive and never waits: a
// second reserve of the same aperture fails with ErrAlreadyReserved.
//
//	Inactive --reserve--> Reserved --bind--> Bound --release--> Inactive
//	Reserved --release--> Inactive
//
// The router (and PMA, if the chip has one) carries every other IP's
// traffic so clients reserve it first with ReserveRouter and release it
// last with ReleaseRouter. The instance doesn't enforce that order.
package hwpm

import (
	"fmt"
	"sync"

	"github.com/platinasystems/log"
	uuid "github.com/satori/go.uuid"
)

// Observer is called with the instance lock held after each state change.
type Observer func(ip *IP, from, to State)

type Option func(*Instance)

func WithObserver(o Observer) Option {
	return func(h *Instance) { h.observer = o }
}

// Call counts handler invocations of one IP and Func.
type Call struct {
	IP   IPID
	Func Func
}

type Stats struct {
	// Dispatches counts single and all IP dispatches; a sweep is one.
	Dispatches map[Func]int
	Calls      map[Call]int
}

func newStats() Stats {
	return Stats{
		Dispatches: make(map[Func]int),
		Calls:      make(map[Call]int),
	}
}

func (s Stats) clone() Stats {
	c := newStats()
	for k, v := range s.Dispatches {
		c.Dispatches[k] = v
	}
	for k, v := range s.Calls {
		c.Calls[k] = v
	}
	return c
}

type Instance struct {
	mutex    sync.Mutex
	chip     ChipOps
	table    *Table
	rtr      IPID
	pma      IPID
	hasPma   bool
	observer Observer
	session  uuid.UUID
	stats    Stats
}

type IPState struct {
	ID         IPID
	Name       string
	State      State
	Floorswept bool
}

func New(chip ChipOps, opts ...Option) (*Instance, error) {
	h := &Instance{
		chip:  chip,
		table: chip.Table(),
		rtr:   chip.RtrIPIndex(),
		stats: newStats(),
	}
	if h.table == nil {
		return nil, fmt.Errorf("%s: no aperture table", chip.Name())
	}
	if _, found := h.table.IP(h.rtr); !found {
		return nil, fmt.Errorf("%s: router ip %d not in table",
			chip.Name(), h.rtr)
	}
	if p, ok := chip.(PmaIndexer); ok {
		h.pma, h.hasPma = p.PmaIPIndex()
		if _, found := h.table.IP(h.pma); h.hasPma && !found {
			return nil, fmt.Errorf("%s: pma ip %d not in table",
				chip.Name(), h.pma)
		}
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Instance) Chip() ChipOps { return h.chip }

// Session identifies the current router reservation; uuid.Nil while the
// router is released.
func (h *Instance) Session() uuid.UUID {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.session
}

func (h *Instance) Stats() Stats {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.stats.clone()
}

// States returns a snapshot in table order.
func (h *Instance) States() []IPState {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	ips := h.table.IPs()
	states := make([]IPState, 0, len(ips))
	for _, ip := range ips {
		states = append(states, IPState{
			ID:         ip.ID,
			Name:       ip.Name,
			State:      ip.state,
			Floorswept: ip.Floorswept(),
		})
	}
	return states
}

// State of the given IP.
func (h *Instance) State(id IPID) (State, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	ip, found := h.table.IP(id)
	if !found {
		return Inactive, false
	}
	return ip.state, true
}

// Close unbinds and releases everything still held, the router last.
func (h *Instance) Close() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	err := h.releaseResources()
	if xerr := h.forSingleIP(h.rtr, ReleaseRouter); err == nil {
		err = xerr
	}
	return err
}

func (h *Instance) transition(ip *IP, to State) {
	from := ip.state
	ip.state = to
	if h.observer != nil && from != to {
		h.observer(ip, from, to)
	}
}

func (h *Instance) logf(format string, args ...interface{}) {
	log.Print("daemon", "err", "hwpm ", h.chip.Name(), ": ",
		fmt.Sprintf(format, args...))
}
