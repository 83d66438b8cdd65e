// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"syscall"
	"testing"

	"github.com/platinasystems/fdt"

	"github.com/forecr/forecr-xavier-kernel-sub027/internal/mmio"
)

func TestForAddress(t *testing.T) {
	table := newTestChip(mmio.NewSim()).table
	for _, x := range []struct {
		pa    uint64
		found bool
		want  Location
	}{
		{0x1000, true, Location{IP: tRTR, Type: Perfmux}},
		{0x1fff, true, Location{IP: tRTR, Type: Perfmux}},
		{gpuBase + PmmControl, true, Location{IP: tGPU, Type: Perfmon}},
		{cpuBase, true, Location{IP: tCPU, Type: Perfmon}},
		{0x4000, false, Location{}},
		{0, false, Location{}},
	} {
		loc, found := table.ForAddress(x.pa)
		if found != x.found || loc != x.want {
			t.Errorf("0x%x: wrong: %+v %v", x.pa, loc, found)
		}
	}
}

func TestNewTableErrors(t *testing.T) {
	if _, err := NewTable(&IP{ID: 1, Name: "a"}, &IP{ID: 1, Name: "b"}); err == nil {
		t.Error("duplicate index accepted")
	}
	if _, err := NewTable(&IP{ID: 1, Name: "a"}, &IP{ID: 2, Name: "a"}); err == nil {
		t.Error("duplicate name accepted")
	}
	bad := &IP{ID: 1, Name: "a", Insts: []Inst{{
		Elements: []Element{{Name: "e", Start: 0x2000, End: 0x1000}},
	}}}
	if _, err := NewTable(bad); err == nil {
		t.Error("inverted range accepted")
	}
}

func TestFloorsweep(t *testing.T) {
	table := newTestChip(mmio.NewSim()).table
	if err := table.Floorsweep(42, 0); !errors.Is(err, ErrUnavailable) {
		t.Error("wrong:", err)
	}
	if err := table.Floorsweep(tGPU, 3); err == nil {
		t.Error("missing instance floorswept")
	}
	if err := table.Floorsweep(tGPU, 0); err != nil {
		t.Fatal(err)
	}
	gpu, _ := table.IP(tGPU)
	if !gpu.Floorswept() {
		t.Error("gpu still present")
	}
	if _, found := table.ForAddress(gpuBase); !found {
		t.Error("floorswept apertures keep their address")
	}
}

func TestApplyDeviceTree(t *testing.T) {
	ip := &IP{ID: 0, Name: "mss_channel"}
	for i := 0; i < 16; i++ {
		ip.Insts = append(ip.Insts, Inst{Index: i})
	}
	table, err := NewTable(ip)
	if err != nil {
		t.Fatal(err)
	}
	n := &fdt.Node{
		Name: DeviceTreeNode,
		Children: map[string]*fdt.Node{
			"mss-channel@f": {
				Name:       "mss-channel@f",
				Properties: map[string][]byte{"status": []byte("disabled\x00")},
			},
			"mss-channel@1": {
				Name:       "mss-channel@1",
				Properties: map[string][]byte{"status": []byte("okay\x00")},
			},
			"unknown@0": {
				Name:       "unknown@0",
				Properties: map[string][]byte{"status": []byte("disabled\x00")},
			},
		},
	}
	if err = ApplyDeviceTree(table, n); err != nil {
		t.Fatal(err)
	}
	for i, inst := range ip.Insts {
		if inst.Floorswept != (i == 15) {
			t.Error(i, "wrong:", inst.Floorswept)
		}
	}
}

type dtbWriter struct{ bytes.Buffer }

func (w *dtbWriter) cell(v uint32) {
	binary.Write(&w.Buffer, binary.BigEndian, v)
}

func (w *dtbWriter) pad() {
	for w.Len()%4 != 0 {
		w.WriteByte(0)
	}
}

func (w *dtbWriter) begin(name string) {
	w.cell(1)
	w.WriteString(name)
	w.WriteByte(0)
	w.pad()
}

// status property; the strings block holds only "status" at offset 0.
func (w *dtbWriter) status(v string) {
	w.cell(3)
	w.cell(uint32(len(v) + 1))
	w.cell(0)
	w.WriteString(v)
	w.WriteByte(0)
	w.pad()
}

func (w *dtbWriter) end() { w.cell(2) }

// blob wraps a structure block with header and strings.
func blob(structure []byte) []byte {
	var w dtbWriter
	strs := "status\x00"
	offStruct := uint32(fdtHeaderLen)
	offStrings := offStruct + uint32(len(structure))
	total := offStrings + uint32(len(strs))
	for _, v := range []uint32{fdtMagic, total, offStruct, offStrings,
		0, 17, 16, 0, uint32(len(strs)), uint32(len(structure))} {
		w.cell(v)
	}
	w.Write(structure)
	w.WriteString(strs)
	return w.Bytes()
}

func TestApplyDeviceTreeBlob(t *testing.T) {
	ip := &IP{ID: 0, Name: "mss_channel"}
	for i := 0; i < 16; i++ {
		ip.Insts = append(ip.Insts, Inst{Index: i})
	}
	table, err := NewTable(ip)
	if err != nil {
		t.Fatal(err)
	}
	var w dtbWriter
	w.begin("")
	w.begin(DeviceTreeNode)
	w.begin("mss-channel@3")
	w.status("disabled")
	w.end()
	w.end()
	w.end()
	w.cell(9)
	if err = ApplyDeviceTreeBlob(table, blob(w.Bytes())); err != nil {
		t.Fatal(err)
	}
	for i, inst := range ip.Insts {
		if inst.Floorswept != (i == 3) {
			t.Error(i, "wrong:", inst.Floorswept)
		}
	}
}

func TestApplyDeviceTreeBlobMalformed(t *testing.T) {
	table := newTestChip(mmio.NewSim()).table

	truncated := make([]byte, fdtHeaderLen)
	binary.BigEndian.PutUint32(truncated, fdtMagic)
	binary.BigEndian.PutUint32(truncated[4:], fdtHeaderLen)
	binary.BigEndian.PutUint32(truncated[8:], 0x1000)

	var w dtbWriter
	w.begin("")
	w.begin(DeviceTreeNode)
	w.end()
	w.cell(9)
	unbalanced := blob(w.Bytes())

	w.Reset()
	w.begin("")
	w.status("disabled")
	unterminated := blob(w.Bytes())

	w.Reset()
	w.cell(9)
	empty := blob(w.Bytes())

	short := empty[:len(empty)-4]

	for name, b := range map[string][]byte{
		"garbage":      []byte("not a dtb"),
		"truncated":    truncated,
		"short":        short,
		"unbalanced":   unbalanced,
		"unterminated": unterminated,
		"empty":        empty,
	} {
		err := ApplyDeviceTreeBlob(table, b)
		if !errors.Is(err, ErrNotDeviceTree) {
			t.Error(name, "wrong:", err)
		}
	}
}

func TestErrno(t *testing.T) {
	for _, x := range []struct {
		err  error
		want syscall.Errno
	}{
		{nil, 0},
		{ErrUnavailable, syscall.EINVAL},
		{&IPError{"vi", 1, Reserve, ErrAlreadyReserved}, syscall.EBUSY},
		{&SweepError{Unbind, []*IPError{
			{"vi", 1, Unbind, &mmio.AccessError{Op: "poll", Err: mmio.ErrTimeout}},
		}}, syscall.ETIMEDOUT},
		{errors.New("other"), syscall.EIO},
	} {
		if got := Errno(x.err); got != x.want {
			t.Error(x.err, "wrong:", got)
		}
	}
}

func TestStrings(t *testing.T) {
	for _, x := range []struct {
		got, want string
	}{
		{Reserve.String(), "reserve"},
		{ReleaseRouter.String(), "release router"},
		{Func(42).String(), "Func(42)"},
		{Bound.String(), "bound"},
		{State(9).String(), "State(9)"},
		{Perfmon.String(), "perfmon"},
		{ElementType(3).String(), "ElementType(3)"},
		{(&IPError{"vi", 1, Bind, ErrTimeout}).Error(),
			"bind vi: register poll timed out"},
	} {
		if x.got != x.want {
			t.Errorf("wrong: %q != %q", x.got, x.want)
		}
	}
}
