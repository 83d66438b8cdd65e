// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hwpm provides a client of the hwpmd reservation daemon.
package hwpm

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/platinasystems/atsock"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/parms"

	"github.com/forecr/forecr-xavier-kernel-sub027/cmd/hwpmd"
	"github.com/forecr/forecr-xavier-kernel-sub027/lang"
)

const Name = "hwpm"

// Caller is satisfied by *rpc.Client.
type Caller interface {
	Call(method string, args interface{}, reply interface{}) error
}

type Command struct{}

func (Command) String() string { return Name }

func (Command) Usage() string {
	return Name + ` [-sock NAME] COMMAND [ARGS]...

COMMANDS
	router {reserve|release}
	reserve RESOURCE...
	bind
	release
	show [-a]`
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "reserve hardware performance monitor apertures",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Reserve the router before any resource and release it last.

		hwpm router reserve
		hwpm reserve vi nvdla
		hwpm bind
		hwpm release
		hwpm router release

	A RESOURCE is a chip resource name or number. Show lists the
	state of each present aperture; -a includes floorswept ones.`,
	}
}

func (Command) Main(args ...string) error {
	parm, args := parms.New(args, "-sock")
	sock := parm.ByName["-sock"]
	if len(sock) == 0 {
		sock = hwpmd.Name
	}
	if len(args) == 0 {
		return fmt.Errorf("COMMAND: missing")
	}
	cl, err := atsock.NewRpcClient(sock)
	if err != nil {
		return err
	}
	defer cl.Close()
	return Run(cl, os.Stdout, isatty.IsTerminal(os.Stdout.Fd()), args...)
}

// RemoteError is a daemon refusal carrying the errno named in its text.
type RemoteError struct {
	Errno syscall.Errno
	Msg   string
}

func (e *RemoteError) Error() string { return e.Msg }
func (e *RemoteError) Unwrap() error { return e.Errno }

type caller struct{ Caller }

func (cl caller) Call(method string, args interface{}, reply interface{}) error {
	err := cl.Caller.Call(method, args, reply)
	if err == nil {
		return nil
	}
	errno := hwpmd.ErrnoOf(err.Error())
	if errno == 0 {
		return err
	}
	return &RemoteError{errno, err.Error()}
}

// Run a hwpm command through cl, writing any output to w. Daemon refusals
// are returned as *RemoteError.
func Run(rpc Caller, w io.Writer, tty bool, args ...string) error {
	var e hwpmd.Empty
	cl := caller{rpc}
	switch args[0] {
	case "router":
		if len(args) != 2 {
			return fmt.Errorf("router: expected reserve or release")
		}
		switch args[1] {
		case "reserve":
			return cl.Call("Info.ReserveRouter", e, &e)
		case "release":
			return cl.Call("Info.ReleaseRouter", e, &e)
		}
		return fmt.Errorf("router %s: invalid", args[1])
	case "reserve":
		if len(args) < 2 {
			return fmt.Errorf("RESOURCE: missing")
		}
		for _, r := range args[1:] {
			err := cl.Call("Info.Reserve", hwpmd.ResourceArgs{Resource: r}, &e)
			if err != nil {
				return err
			}
		}
		return nil
	case "bind":
		return cl.Call("Info.Bind", e, &e)
	case "release":
		return cl.Call("Info.Release", e, &e)
	case "show":
		flag, args := flags.New(args[1:], "-a")
		if len(args) > 0 {
			return fmt.Errorf("%v: unexpected", args)
		}
		var r hwpmd.ShowReply
		if err := cl.Call("Info.Show", e, &r); err != nil {
			return err
		}
		show(w, &r, flag.ByName["-a"], tty)
		return nil
	}
	return fmt.Errorf("%s: unknown", args[0])
}

func show(w io.Writer, r *hwpmd.ShowReply, all, tty bool) {
	if tty {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		defer tw.Flush()
		w = tw
		fmt.Fprintf(w, "chip %s session %s\n\n", r.Chip, r.Session)
		fmt.Fprintln(w, "IP\tINDEX\tSTATE")
	}
	for _, s := range r.States {
		if s.Floorswept && !all {
			continue
		}
		state := s.State.String()
		if s.Floorswept {
			state = "floorswept"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", s.Name, s.ID, state)
	}
}
