// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

// ChipOps is the chip specific HAL selected when the instance is created.
type ChipOps interface {
	Name() string
	Table() *Table
	// IsResourceActive translates a resource to the IP that implements
	// it; false if the resource isn't wired on this chip.
	IsResourceActive(ResourceID) (IPID, bool)
	RtrIPIndex() IPID
}

// PmaIndexer is implemented by chips with a separate PMA IP. The router path
// reserves PMA before RTR and releases it after.
type PmaIndexer interface {
	PmaIPIndex() (IPID, bool)
}

// ResourceNamer is implemented by chips that name their resources.
type ResourceNamer interface {
	Resources() map[string]ResourceID
}
