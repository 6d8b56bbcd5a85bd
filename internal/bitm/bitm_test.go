// Copyright 2026 The mini-engine authors. All rights reserved.

package bitm

import (
	"testing"
	"unsafe"
)

func TestNbit(t *testing.T) {
	for _, x := range [...][2]int{
		{int(unsafe.Sizeof(uint(0))) * 8, (&Bitm[uint]{}).nbit()},
		{int(unsafe.Sizeof(uint8(0))) * 8, (&Bitm[uint8]{}).nbit()},
		{int(unsafe.Sizeof(uint16(0))) * 8, (&Bitm[uint16]{}).nbit()},
		{int(unsafe.Sizeof(uint32(0))) * 8, (&Bitm[uint32]{}).nbit()},
		{int(unsafe.Sizeof(uint64(0))) * 8, (&Bitm[uint64]{}).nbit()},
		{int(unsafe.Sizeof(uintptr(0))) * 8, (&Bitm[uintptr]{}).nbit()},
	} {
		if x[0] != x[1] {
			t.Fatalf("Bitm[T].nbit:\nhave %v\nwant %v", x[0], x[1])
		}
	}
}

func TestZero(t *testing.T) {
	var m Bitm[uint16]
	if m.m != nil {
		t.Fatalf("m.m:\nhave %v\nwant nil", m.m)
	}
	if n := m.Len(); n != 0 {
		t.Fatalf("m.Len:\nhave %v\nwant 0", n)
	}
	if n := m.Cap(); n != 0 {
		t.Fatalf("m.Cap:\nhave %v\nwant 0", n)
	}
	if _, ok := m.Search(); ok {
		t.Fatal("m.Search:\nhave true\nwant false")
	}
}

func TestGrow(t *testing.T) {
	var m Bitm[uint8]
	if idx := m.Grow(2); idx != 0 {
		t.Fatalf("m.Grow:\nhave %v\nwant 0", idx)
	}
	if n := m.Cap(); n != 16 {
		t.Fatalf("m.Cap:\nhave %v\nwant 16", n)
	}
	if n := m.Rem(); n != 16 {
		t.Fatalf("m.Rem:\nhave %v\nwant 16", n)
	}
	if idx := m.Grow(1); idx != 16 {
		t.Fatalf("m.Grow:\nhave %v\nwant 16", idx)
	}
	if n := m.Cap(); n != 24 {
		t.Fatalf("m.Cap:\nhave %v\nwant 24", n)
	}
}

func TestSetUnset(t *testing.T) {
	var m Bitm[uint32]
	m.Grow(1)
	for _, i := range []int{0, 5, 31} {
		if m.IsSet(i) {
			t.Fatalf("m.IsSet(%d):\nhave true\nwant false", i)
		}
		m.Set(i)
		if !m.IsSet(i) {
			t.Fatalf("m.IsSet(%d):\nhave false\nwant true", i)
		}
	}
	if n := m.Len(); n != 3 {
		t.Fatalf("m.Len:\nhave %v\nwant 3", n)
	}
	// Setting a set bit must not skew the accounting.
	m.Set(5)
	if n := m.Len(); n != 3 {
		t.Fatalf("m.Len:\nhave %v\nwant 3", n)
	}
	m.Unset(5)
	if m.IsSet(5) {
		t.Fatal("m.IsSet(5):\nhave true\nwant false")
	}
	m.Unset(5)
	if n := m.Len(); n != 2 {
		t.Fatalf("m.Len:\nhave %v\nwant 2", n)
	}
}

func TestSearch(t *testing.T) {
	var m Bitm[uint8]
	m.Grow(1)
	for i := 0; i < 8; i++ {
		idx, ok := m.Search()
		if !ok || idx != i {
			t.Fatalf("m.Search:\nhave %v, %v\nwant %v, true", idx, ok, i)
		}
		m.Set(idx)
	}
	if _, ok := m.Search(); ok {
		t.Fatal("m.Search:\nhave true\nwant false")
	}
	m.Unset(3)
	if idx, ok := m.Search(); !ok || idx != 3 {
		t.Fatalf("m.Search:\nhave %v, %v\nwant 3, true", idx, ok)
	}
}
