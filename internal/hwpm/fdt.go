// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/platinasystems/fdt"
)

// DeviceTreeNode is the name of the device tree node describing apertures.
const DeviceTreeNode = "hwpm"

const (
	fdtMagic     = 0xd00dfeed
	fdtHeaderLen = 40
)

var (
	ErrNoDeviceTreeNode = errors.New("no hwpm device tree node")
	ErrNotDeviceTree    = errors.New("not a flattened device tree")
)

// ApplyDeviceTree floorsweeps instances described by children of the hwpm
// node, e.g.
//
//	hwpm {
//		vi@1 { status = "disabled"; };
//		mss-channel@f { status = "disabled"; };
//	};
//
// The unit address is the hexadecimal instance index.
func ApplyDeviceTree(t *Table, n *fdt.Node) error {
	for name, c := range n.Children {
		if !disabled(c) {
			continue
		}
		at := strings.LastIndex(name, "@")
		if at < 0 {
			continue
		}
		ip, found := t.ByName(strings.ReplaceAll(name[:at], "-", "_"))
		if !found {
			continue
		}
		index, err := strconv.ParseUint(name[at+1:], 16, 16)
		if err != nil {
			return err
		}
		if err = t.Floorsweep(ip.ID, int(index)); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDeviceTreeBlob parses a flattened device tree and applies its hwpm
// node.
func ApplyDeviceTreeBlob(t *Table, b []byte) error {
	var nodes []*fdt.Node
	tree, err := parseBlob(b)
	if err != nil {
		return err
	}
	tree.MatchNode(DeviceTreeNode, func(n *fdt.Node) {
		nodes = append(nodes, n)
	})
	if len(nodes) == 0 {
		return ErrNoDeviceTreeNode
	}
	for _, n := range nodes {
		if err := ApplyDeviceTree(t, n); err != nil {
			return err
		}
	}
	return nil
}

// parseBlob checks the header against the blob length before handing it to
// fdt, which indexes the buffer unchecked.
func parseBlob(b []byte) (tree *fdt.Tree, err error) {
	if len(b) < fdtHeaderLen || binary.BigEndian.Uint32(b) != fdtMagic {
		return nil, ErrNotDeviceTree
	}
	total := binary.BigEndian.Uint32(b[4:])
	offStruct := binary.BigEndian.Uint32(b[8:])
	offStrings := binary.BigEndian.Uint32(b[12:])
	if total < fdtHeaderLen || uint64(total) > uint64(len(b)) ||
		offStruct < fdtHeaderLen || offStruct >= total ||
		offStrings >= total {
		return nil, ErrNotDeviceTree
	}
	defer func() {
		if r := recover(); r != nil {
			tree, err = nil, fmt.Errorf("%w: %v", ErrNotDeviceTree, r)
		}
	}()
	tree = &fdt.Tree{Debug: false, IsLittleEndian: false}
	if err = tree.Parse(b[:total]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDeviceTree, err)
	}
	if tree.RootNode == nil {
		return nil, ErrNotDeviceTree
	}
	return tree, nil
}

func disabled(n *fdt.Node) bool {
	v, found := n.Properties["status"]
	if !found {
		return false
	}
	return strings.TrimRight(string(v), "\x00") == "disabled"
}
