// Copyright 2026 The mini-engine authors. All rights reserved.

// Package bitm defines a bitmap type useful for resource
// management (e.g., slot allocation and free list
// implementations).
package bitm

import (
	"math/bits"
	"unsafe"
)

// Uint represents the granularity of a bitmap.
type Uint interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Bitm is a growable bitmap with custom granularity.
type Bitm[T Uint] struct {
	m   []T
	rem int
}

// nbit returns the number of bits in T.
func (m *Bitm[T]) nbit() int { return int(unsafe.Sizeof(T(0))) * 8 }

// Len returns the number of bits set in the map.
func (m *Bitm[_]) Len() int { return len(m.m)*m.nbit() - m.rem }

// Cap returns the number of bits in the map.
func (m *Bitm[_]) Cap() int { return len(m.m) * m.nbit() }

// Rem returns the number of unset bits in the map.
func (m *Bitm[_]) Rem() int { return m.rem }

// Grow resizes the map to contain nplus additional units of
// granularity, with every new bit unset. It returns the index
// of the first new bit.
func (m *Bitm[T]) Grow(nplus int) int {
	idx := m.Cap()
	if nplus > 0 {
		m.m = append(m.m, make([]T, nplus)...)
		m.rem += nplus * m.nbit()
	}
	return idx
}

// Set sets the given bit.
func (m *Bitm[T]) Set(index int) {
	i, b := index/m.nbit(), index%m.nbit()
	if m.m[i]&(1<<b) == 0 {
		m.m[i] |= 1 << b
		m.rem--
	}
}

// Unset unsets the given bit.
func (m *Bitm[T]) Unset(index int) {
	i, b := index/m.nbit(), index%m.nbit()
	if m.m[i]&(1<<b) != 0 {
		m.m[i] &^= 1 << b
		m.rem++
	}
}

// IsSet returns whether the given bit is set.
func (m *Bitm[T]) IsSet(index int) bool {
	return m.m[index/m.nbit()]&(1<<(index%m.nbit())) != 0
}

// Search returns the index of the first unset bit.
// It returns false if every bit is set.
func (m *Bitm[T]) Search() (index int, ok bool) {
	if m.rem == 0 {
		return
	}
	for i, x := range m.m {
		if x != ^T(0) {
			return i*m.nbit() + bits.TrailingZeros64(uint64(^x)), true
		}
	}
	return
}
