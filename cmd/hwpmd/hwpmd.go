// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hwpmd provides the SOC hardware performance monitor reservation
// daemon.
package hwpmd

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/rpc"
	"sync"
	"time"

	"github.com/platinasystems/atsock"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/redis/publisher"

	"github.com/forecr/forecr-xavier-kernel-sub027/cmd"
	"github.com/forecr/forecr-xavier-kernel-sub027/internal/hwpm"
	"github.com/forecr/forecr-xavier-kernel-sub027/internal/hwpm/t234"
	"github.com/forecr/forecr-xavier-kernel-sub027/internal/mmio"
	"github.com/forecr/forecr-xavier-kernel-sub027/lang"
)

const Name = "hwpmd"

// Publisher is satisfied by *publisher.Publisher.
type Publisher interface {
	Print(...interface{}) (int, error)
}

type Command struct {
	Info
	Init func()
	init sync.Once
}

type Info struct {
	mutex sync.Mutex
	h     *hwpm.Instance
	names map[string]hwpm.ResourceID
	pub   Publisher
	rpc   *atsock.RpcServer
	bus   mmio.Bus
	stop  chan struct{}

	// closed records a Close that may precede Main.
	closed bool
}

func (*Command) String() string { return Name }

func (*Command) Usage() string {
	return Name + " [-chip NAME] [-dtb FILE] [-mem FILE] [-sock NAME] [-timeout DURATION] [-sim] [-no-redis]"
}

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "hardware performance monitor reservation daemon",
	}
}

func (*Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	The hwpmd daemon owns the HWPM apertures of this SOC and admits
	router, resource, bind and release requests from hwpm clients
	over the @SOCK rpc socket (default @hwpmd).

	Each aperture state change is published to redis as,
		hwpm.IP.state: {inactive|reserved|bound}

	-chip NAME	chip table (default t234)
	-dtb FILE	floorsweep apertures disabled in this device tree
	-mem FILE	physical memory device (default /dev/mem)
	-timeout D	register poll timeout (default 10ms)
	-sim		simulate registers instead of mapping memory
	-no-redis	don't publish or accept redis hset requests`,
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

func (c *Command) Main(args ...string) error {
	if c.Init != nil {
		c.init.Do(c.Init)
	}

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mutex.Unlock()

	flag, args := flags.New(args, "-sim", "-no-redis")
	parm, args := parms.New(args, "-chip", "-dtb", "-mem", "-sock",
		"-timeout")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}
	sock := parm.ByName["-sock"]
	if len(sock) == 0 {
		sock = Name
	}
	var timeout time.Duration
	if s := parm.ByName["-timeout"]; len(s) > 0 {
		var err error
		if timeout, err = time.ParseDuration(s); err != nil {
			return err
		}
	}

	if flag.ByName["-sim"] {
		c.bus = mmio.NewSim()
	} else {
		mem, err := mmio.OpenMem(parm.ByName["-mem"])
		if err != nil {
			return err
		}
		c.bus = mem
	}

	chip, err := NewChip(parm.ByName["-chip"], c.bus, timeout)
	if err != nil {
		c.closeBus()
		return err
	}
	if fn := parm.ByName["-dtb"]; len(fn) > 0 {
		b, err := ioutil.ReadFile(fn)
		if err == nil {
			err = hwpm.ApplyDeviceTreeBlob(chip.Table(), b)
		}
		if err != nil {
			c.closeBus()
			return fmt.Errorf("%s: %v", fn, err)
		}
	}

	if !flag.ByName["-no-redis"] {
		if err = redis.IsReady(); err != nil {
			c.closeBus()
			return err
		}
		if c.pub, err = publisher.New(); err != nil {
			c.closeBus()
			return err
		}
	}

	if err = c.Info.init(chip); err != nil {
		c.closeBus()
		return err
	}

	if c.rpc, err = atsock.NewRpcServer(sock); err != nil {
		c.Info.close()
		return err
	}
	rpc.Register(&c.Info)
	if !flag.ByName["-no-redis"] {
		err = redis.Assign(redis.DefaultHash+":hwpm.", sock, "Info")
		if err != nil {
			c.Info.close()
			return err
		}
	}
	log.Print("daemon", "info", Name, ": ", chip.Name(), " ready on @",
		sock)

	<-stop
	return c.Info.close()
}

func (c *Command) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.closed {
		c.closed = true
		if c.stop != nil {
			close(c.stop)
		}
	}
	return nil
}

// NewChip returns the HAL of the named chip; the default is t234.
func NewChip(name string, bus mmio.Bus, timeout time.Duration) (hwpm.ChipOps, error) {
	switch name {
	case "", t234.Name:
		return t234.New(bus, timeout)
	}
	return nil, fmt.Errorf("%s: unsupported chip", name)
}

// NewInfo returns an rpc receiver owning the chip's apertures. A nil pub
// disables publishing.
func NewInfo(chip hwpm.ChipOps, pub Publisher) (*Info, error) {
	i := &Info{pub: pub}
	if err := i.init(chip); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Info) init(chip hwpm.ChipOps) error {
	h, err := hwpm.New(chip, hwpm.WithObserver(i.observe))
	if err != nil {
		return err
	}
	i.h = h
	i.names = make(map[string]hwpm.ResourceID)
	if rn, ok := chip.(hwpm.ResourceNamer); ok {
		i.names = rn.Resources()
	}
	for _, s := range h.States() {
		i.publish(s.Name, s.State)
		if s.Floorswept {
			i.publish(s.Name+".floorswept", true)
		}
	}
	return nil
}

// close releases every reservation still held, router last, then the rpc
// socket and register bus.
func (i *Info) close() error {
	var err error
	if i.h != nil {
		err = i.h.Close()
	}
	if i.rpc != nil {
		if xerr := i.rpc.Close(); err == nil {
			err = xerr
		}
		i.rpc = nil
	}
	if i.pub != nil {
		if c, ok := i.pub.(io.Closer); ok {
			c.Close()
		}
	}
	if xerr := i.closeBus(); err == nil {
		err = xerr
	}
	return err
}

func (i *Info) closeBus() error {
	if c, ok := i.bus.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (i *Info) observe(ip *hwpm.IP, from, to hwpm.State) {
	i.publish(ip.Name, to)
}

func (i *Info) publish(ip string, v interface{}) {
	if i.pub == nil {
		return
	}
	k := "hwpm." + ip
	if _, ok := v.(hwpm.State); ok {
		k += ".state"
	}
	i.pub.Print(k, ": ", v)
}

func (i *Info) publishSession() {
	i.publish("session", i.h.Session())
}
