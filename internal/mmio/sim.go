// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mmio

import "sync"

// Sim is a register file held in memory. Unwritten registers read as zero.
type Sim struct {
	mutex  sync.Mutex
	regs   map[uint64]uint32
	pinned map[uint64]bool
	fail   map[uint64]error
	reads  int
	writes int
}

func NewSim() *Sim {
	return &Sim{
		regs:   make(map[uint64]uint32),
		pinned: make(map[uint64]bool),
		fail:   make(map[uint64]error),
	}
}

func (s *Sim) ReadRegister(pa uint64) (uint32, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reads++
	if err := s.fail[pa]; err != nil {
		return 0, &AccessError{"read", pa, err}
	}
	return s.regs[pa], nil
}

func (s *Sim) WriteRegister(pa uint64, v uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.writes++
	if err := s.fail[pa]; err != nil {
		return &AccessError{"write", pa, err}
	}
	if !s.pinned[pa] {
		s.regs[pa] = v
	}
	return nil
}

// Set stores v without counting an access.
func (s *Sim) Set(pa uint64, v uint32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.regs[pa] = v
}

// Pin fixes the register at v; later writes are accepted and dropped.
func (s *Sim) Pin(pa uint64, v uint32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.regs[pa] = v
	s.pinned[pa] = true
}

// Fail makes every access to pa return err. A nil err clears it.
func (s *Sim) Fail(pa uint64, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err == nil {
		delete(s.fail, pa)
	} else {
		s.fail[pa] = err
	}
}

// Value returns the register without counting an access.
func (s *Sim) Value(pa uint64) uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.regs[pa]
}

func (s *Sim) Reads() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.reads
}

func (s *Sim) Writes() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.writes
}

// Accesses is the sum of reads and writes.
func (s *Sim) Accesses() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.reads + s.writes
}
