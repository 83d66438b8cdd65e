// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package mmio provides 32-bit register access to physical address windows
// through /dev/mem or a simulated register file.
package mmio

import (
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
)

// BadValue is returned by unpowered or clock gated apertures.
const BadValue = 0xffffffff

var (
	ErrTimeout  = errors.New("register poll timed out")
	ErrBadValue = errors.New("register read returned bad value")
	ErrUnmapped = errors.New("address not mapped")
)

type Bus interface {
	ReadRegister(pa uint64) (uint32, error)
	WriteRegister(pa uint64, v uint32) error
}

// Mapper is implemented by buses that must establish an aperture window
// before its registers are accessible.
type Mapper interface {
	Map(start, end uint64) error
	Unmap(start uint64) error
}

type AccessError struct {
	Op   string
	Addr uint64
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s 0x%x: %v", e.Op, e.Addr, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// ReadChecked reads a register and fails with ErrBadValue if it returns the
// all ones pattern.
func ReadChecked(bus Bus, pa uint64) (uint32, error) {
	v, err := bus.ReadRegister(pa)
	if err != nil {
		return 0, err
	}
	if v == BadValue {
		return v, &AccessError{"read", pa, ErrBadValue}
	}
	return v, nil
}

// Poll reads the register at pa until (value & mask) == want or timeout
// elapses. The register is always read at least once.
func Poll(bus Bus, pa uint64, mask, want uint32, timeout time.Duration) error {
	b := &backoff.Backoff{
		Min:    time.Microsecond,
		Max:    time.Millisecond,
		Factor: 2,
		Jitter: false,
	}
	deadline := time.Now().Add(timeout)
	for {
		v, err := bus.ReadRegister(pa)
		if err != nil {
			return err
		}
		if v&mask == want {
			return nil
		}
		if !time.Now().Before(deadline) {
			return &AccessError{"poll", pa, ErrTimeout}
		}
		time.Sleep(b.Duration())
	}
}
