// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cmd provides the command interface and a multicall dispatcher
// selecting the command by program name or first argument.
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"

	"github.com/forecr/forecr-xavier-kernel-sub027/lang"
)

type Cmd interface {
	Apropos() lang.Alt
	Main(...string) error
	// String returns the command name.
	String() string
	Usage() string
}

type manner interface {
	Man() lang.Alt
}

type ByName map[string]Cmd

// Plot commands on map.
func (byName ByName) Plot(cmds ...Cmd) {
	for _, v := range cmds {
		byName[v.String()] = v
	}
}

func (byName ByName) Keys() []string {
	keys := make([]string, 0, len(byName))
	for k := range byName {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Main runs the command named by args[0] or, if that isn't a command,
// args[1]. Without args, it uses os.Args.
func (byName ByName) Main(args ...string) (err error) {
	if len(args) == 0 {
		args = os.Args
	}
	if len(args) == 0 {
		return nil
	}
	if _, found := byName[filepath.Base(args[0])]; found {
		args[0] = filepath.Base(args[0])
	} else {
		args = args[1:]
	}
	if len(args) == 0 {
		byName.apropos(os.Stdout)
		return nil
	}
	name := args[0]
	flag, args := flags.New(args[1:], "-h", "-help", "--help",
		"-apropos", "--apropos", "-man", "--man", "-usage", "--usage")
	v, found := byName[name]
	if !found {
		return fmt.Errorf("%s: command not found", name)
	}
	switch {
	case flag.ByName["-h"], flag.ByName["-help"], flag.ByName["--help"],
		flag.ByName["-usage"], flag.ByName["--usage"]:
		fmt.Println("usage:", v.Usage())
		return nil
	case flag.ByName["-apropos"], flag.ByName["--apropos"]:
		fmt.Println(v.Apropos())
		return nil
	case flag.ByName["-man"], flag.ByName["--man"]:
		if m, ok := v.(manner); ok {
			fmt.Println(m.Man())
		} else {
			fmt.Println(v.Apropos())
		}
		return nil
	}
	if !WhatKind(v).IsDaemon() {
		return v.Main(args...)
	}
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigch)
	go func() {
		if _, ok := <-sigch; ok {
			if c, ok := v.(io.Closer); ok {
				c.Close()
			}
		}
	}()
	if err = v.Main(args...); err != nil {
		log.Print("daemon", "err", name, ": ", err)
	}
	return err
}

func (byName ByName) apropos(w io.Writer) {
	for _, k := range byName.Keys() {
		fmt.Fprintf(w, "%-12s %v\n", k, byName[k].Apropos())
	}
}
