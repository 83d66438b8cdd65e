// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mmio

import (
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const DevMem = "/dev/mem"

type window struct {
	start, size uint64
	base        uint64 // page aligned start
	mem         []byte
}

// Mem accesses physical registers through mappings of /dev/mem. Windows are
// established with Map before use.
type Mem struct {
	mutex   sync.Mutex
	f       *os.File
	page    uint64
	windows map[uint64]*window
}

func OpenMem(name string) (*Mem, error) {
	if len(name) == 0 {
		name = DevMem
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	return &Mem{
		f:       f,
		page:    uint64(os.Getpagesize()),
		windows: make(map[uint64]*window),
	}, nil
}

// Map the inclusive physical range [start, end].
func (m *Mem) Map(start, end uint64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, found := m.windows[start]; found {
		return nil
	}
	base := start &^ (m.page - 1)
	n := (end + 1 - base + m.page - 1) &^ (m.page - 1)
	b, err := unix.Mmap(int(m.f.Fd()), int64(base), int(n),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return &AccessError{"map", start, err}
	}
	m.windows[start] = &window{
		start: start,
		size:  end + 1 - start,
		base:  base,
		mem:   b,
	}
	return nil
}

func (m *Mem) Unmap(start uint64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	w, found := m.windows[start]
	if !found {
		return nil
	}
	delete(m.windows, start)
	if err := unix.Munmap(w.mem); err != nil {
		return &AccessError{"unmap", start, err}
	}
	return nil
}

func (m *Mem) reg(op string, pa uint64) (*uint32, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, w := range m.windows {
		if pa >= w.start && pa+4 <= w.start+w.size {
			off := pa - w.base
			return (*uint32)(unsafe.Pointer(&w.mem[off])), nil
		}
	}
	return nil, &AccessError{op, pa, ErrUnmapped}
}

func (m *Mem) ReadRegister(pa uint64) (uint32, error) {
	p, err := m.reg("read", pa)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(p), nil
}

func (m *Mem) WriteRegister(pa uint64, v uint32) error {
	p, err := m.reg("write", pa)
	if err != nil {
		return err
	}
	atomic.StoreUint32(p, v)
	return nil
}

func (m *Mem) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var err error
	for start, w := range m.windows {
		if xerr := unix.Munmap(w.mem); err == nil && xerr != nil {
			err = &AccessError{"unmap", start, xerr}
		}
		delete(m.windows, start)
	}
	if m.f != nil {
		if xerr := m.f.Close(); err == nil {
			err = xerr
		}
		m.f = nil
	}
	return err
}
