// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/forecr/forecr-xavier-kernel-sub027/internal/mmio"
)

var (
	ErrUnavailable     = errors.New("resource unavailable")
	ErrAlreadyReserved = errors.New("already reserved")
	ErrPartialFailure  = errors.New("partial failure")
	ErrTimeout         = mmio.ErrTimeout
)

// IPError is a handler or admission failure of one IP.
type IPError struct {
	IP   string
	ID   IPID
	Func Func
	Err  error
}

func (e *IPError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Func, e.IP, e.Err)
}

func (e *IPError) Unwrap() error { return e.Err }

// SweepError reports the IPs that failed an all IP sweep. Every other IP
// completed its transition.
type SweepError struct {
	Func   Func
	Failed []*IPError
}

func (e *SweepError) Error() string {
	if len(e.Failed) == 1 {
		return fmt.Sprint(e.Failed[0])
	}
	return fmt.Sprintf("%s: %d ips failed; first: %v", e.Func,
		len(e.Failed), e.Failed[0])
}

func (e *SweepError) Is(target error) bool {
	return target == ErrPartialFailure
}

func (e *SweepError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, err := range e.Failed {
		errs[i] = err
	}
	return errs
}

// Errno translates a reservation error to the code returned to user space.
func Errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUnavailable):
		return syscall.EINVAL
	case errors.Is(err, ErrAlreadyReserved):
		return syscall.EBUSY
	case errors.Is(err, ErrTimeout):
		return syscall.ETIMEDOUT
	}
	return syscall.EIO
}
