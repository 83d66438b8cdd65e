// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import "strconv"

// Func selects the operation the dispatch layer applies to an IP.
type Func int

const (
	Reserve Func = iota
	Release
	Bind
	Unbind
	ReserveRouter
	ReleaseRouter
	nFuncs
)

var funcNames = [nFuncs]string{
	Reserve:       "reserve",
	Release:       "release",
	Bind:          "bind",
	Unbind:        "unbind",
	ReserveRouter: "reserve router",
	ReleaseRouter: "release router",
}

func (f Func) String() string {
	if f >= 0 && f < nFuncs {
		return funcNames[f]
	}
	return "Func(" + strconv.Itoa(int(f)) + ")"
}
