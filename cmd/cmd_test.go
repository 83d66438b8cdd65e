// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package cmd

import (
	"reflect"
	"testing"

	"github.com/forecr/forecr-xavier-kernel-sub027/lang"
)

type echo struct{ got []string }

func (*echo) String() string    { return "echo" }
func (*echo) Usage() string     { return "echo [ARG]..." }
func (*echo) Apropos() lang.Alt { return lang.Alt{lang.EnUS: "print args"} }

func (e *echo) Main(args ...string) error {
	e.got = args
	return nil
}

type daemon struct{ echo }

func (*daemon) String() string { return "echod" }
func (*daemon) Kind() Kind     { return Daemon }

func TestMainByProgName(t *testing.T) {
	e := new(echo)
	g := make(ByName)
	g.Plot(e)
	if err := g.Main("/usr/bin/echo", "a", "b"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(e.got, []string{"a", "b"}) {
		t.Error("wrong:", e.got)
	}
}

func TestMainByArg(t *testing.T) {
	e := new(echo)
	g := make(ByName)
	g.Plot(e)
	if err := g.Main("goes-hwpm", "echo", "c"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(e.got, []string{"c"}) {
		t.Error("wrong:", e.got)
	}
	if err := g.Main("goes-hwpm", "nonesuch"); err == nil {
		t.Error("unknown command ran")
	}
}

func TestKind(t *testing.T) {
	if k := WhatKind(new(echo)); k != 0 || k.IsDaemon() {
		t.Error("wrong:", k)
	}
	if k := WhatKind(new(daemon)); !k.IsDaemon() || k.String() != "daemon" {
		t.Error("wrong:", k)
	}
}

func TestDaemonMain(t *testing.T) {
	d := new(daemon)
	g := make(ByName)
	g.Plot(d)
	if err := g.Main("echod", "x"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d.got, []string{"x"}) {
		t.Error("wrong:", d.got)
	}
}
