// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is the hardware performance monitor machine: the hwpmd daemon and
// its hwpm client in one multicall binary.
package main

import (
	"errors"
	"os"
	"syscall"

	"github.com/forecr/forecr-xavier-kernel-sub027/cmd"
	"github.com/forecr/forecr-xavier-kernel-sub027/cmd/hwpm"
	"github.com/forecr/forecr-xavier-kernel-sub027/cmd/hwpmd"
)

func main() {
	g := make(cmd.ByName)
	g.Plot(hwpm.Command{}, new(hwpmd.Command))
	if err := g.Main(); err != nil {
		var errno syscall.Errno
		os.Stderr.WriteString(err.Error() + "\n")
		if errors.As(err, &errno) {
			os.Exit(int(errno))
		}
		os.Exit(1)
	}
}
