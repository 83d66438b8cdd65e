// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package cmd

// Daemon commands run until closed by SIGTERM or SIGINT.
const Daemon Kind = 1 << iota

type Kind uint16

func WhatKind(v Cmd) Kind {
	if m, found := v.(kinder); found {
		return m.Kind()
	}
	return 0
}

type kinder interface {
	Kind() Kind
}

func (k Kind) IsDaemon() bool { return (k & Daemon) == Daemon }

func (k Kind) String() string {
	s := "unknown"
	switch k {
	case 0:
		s = "command"
	case Daemon:
		s = "daemon"
	}
	return s
}
