// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/platinasystems/redis/rpc/args"
	"github.com/platinasystems/redis/rpc/reply"

	"github.com/forecr/forecr-xavier-kernel-sub027/internal/hwpm"
)

type Empty struct{}

type ResourceArgs struct {
	// Resource is a chip resource name or number.
	Resource string
}

type ShowReply struct {
	Chip    string
	Session string
	States  []hwpm.IPState
}

var errnoNames = map[syscall.Errno]string{
	syscall.EINVAL:    "EINVAL",
	syscall.EBUSY:     "EBUSY",
	syscall.ETIMEDOUT: "ETIMEDOUT",
	syscall.EIO:       "EIO",
}

// Error prefixes a reservation error with its errno name so that clients
// can tell admission failures from hardware failures.
func Error(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %v", errnoNames[hwpm.Errno(err)], err)
}

// ErrnoOf recovers the errno from an error text made by Error.
func ErrnoOf(s string) syscall.Errno {
	for errno, name := range errnoNames {
		if strings.HasPrefix(s, name+": ") {
			return errno
		}
	}
	return 0
}

func (i *Info) resource(s string) (hwpm.ResourceID, error) {
	if r, found := i.names[s]; found {
		return r, nil
	}
	u, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s, hwpm.ErrUnavailable)
	}
	return hwpm.ResourceID(u), nil
}

func (i *Info) ReserveRouter(_ Empty, _ *Empty) error {
	err := i.h.ReserveRouter()
	i.publishSession()
	return Error(err)
}

func (i *Info) ReleaseRouter(_ Empty, _ *Empty) error {
	err := i.h.ReleaseRouter()
	i.publishSession()
	return Error(err)
}

func (i *Info) Reserve(a ResourceArgs, _ *Empty) error {
	r, err := i.resource(a.Resource)
	if err != nil {
		return Error(err)
	}
	return Error(i.h.ReserveResource(r))
}

func (i *Info) Bind(_ Empty, _ *Empty) error {
	return Error(i.h.BindResources())
}

func (i *Info) Release(_ Empty, _ *Empty) error {
	return Error(i.h.ReleaseResources())
}

func (i *Info) Show(_ Empty, r *ShowReply) error {
	r.Chip = i.h.Chip().Name()
	r.Session = i.h.Session().String()
	r.States = i.h.States()
	return nil
}

// Hset accepts redis writes of,
//
//	hwpm.router {reserve|release}
//	hwpm.reserve RESOURCE
//	hwpm.bind true
//	hwpm.release true
func (i *Info) Hset(a args.Hset, r *reply.Hset) error {
	var err error
	v := string(a.Value)
	switch a.Field {
	case "hwpm.router":
		switch v {
		case "reserve":
			err = i.ReserveRouter(Empty{}, nil)
		case "release":
			err = i.ReleaseRouter(Empty{}, nil)
		default:
			err = fmt.Errorf("%s: %q: %w", a.Field, v, errBadValue)
		}
	case "hwpm.reserve":
		err = i.Reserve(ResourceArgs{v}, nil)
	case "hwpm.bind":
		err = i.Bind(Empty{}, nil)
	case "hwpm.release":
		err = i.Release(Empty{}, nil)
	default:
		return fmt.Errorf("can't hset: %s", a.Field)
	}
	if err == nil {
		*r = 1
	}
	return err
}

var errBadValue = errors.New("invalid value")
