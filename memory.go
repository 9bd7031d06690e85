// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package relptr

import (
	"fmt"
	"unsafe"

	"buf.build/go/relptr/internal/dbg"
	"buf.build/go/relptr/internal/xunsafe"
)

// Memory is a raw-load back end: it decides whether a value of the given size
// and alignment may be read from an address.
//
// Implementations return nil to allow the load. They should return (or wrap)
// [ErrMisaligned] or [ErrOutOfBounds] where those apply, so that callers see
// a meaningful [LoadError.Code].
type Memory interface {
	Check(addr uintptr, size, align int) error
}

// Native is a [Memory] that allows every load.
//
// Using it is only sound when the caller knows, by construction, that every
// address it resolves is mapped and suitably aligned.
type Native struct{}

// Check implements [Memory].
func (Native) Check(uintptr, int, int) error { return nil }

// Aligned is a [Memory] that allows every load from an aligned address.
type Aligned struct{}

// Check implements [Memory].
func (Aligned) Check(addr uintptr, _, align int) error {
	if !xunsafe.Addr[byte](addr).IsAligned(align) {
		return ErrMisaligned
	}
	return nil
}

// Region is a [Memory] that only allows loads which lie entirely within a
// byte slice.
//
// By default, loads must also be aligned; see [Region.Unaligned].
type Region struct {
	buf       []byte
	unaligned bool
}

var _ Memory = Region{}

// NewRegion returns a [Region] over buf. The region keeps buf alive.
func NewRegion(buf []byte) Region {
	return Region{buf: buf}
}

// Unaligned returns a copy of this region that permits misaligned loads.
func (r Region) Unaligned() Region {
	r.unaligned = true
	return r
}

// Len returns the size of this region in bytes.
func (r Region) Len() int {
	return len(r.buf)
}

// At returns the address of the byte at the given offset into this region.
//
// offset may be equal to [Region.Len], yielding the one-past-the-end address.
// Panics if it is out of bounds.
func (r Region) At(offset int) unsafe.Pointer {
	if offset < 0 || offset > len(r.buf) {
		panic(fmt.Sprintf("relptr: offset %d out of bounds for region of length %d", offset, len(r.buf)))
	}
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(r.buf)), offset)
}

// Offset returns the offset of addr from the start of this region.
//
// The result is negative, or larger than [Region.Len], if addr lies outside.
func (r Region) Offset(addr unsafe.Pointer) int {
	return xunsafe.AddrOf((*byte)(addr)).ByteSub(r.start())
}

// Check implements [Memory].
func (r Region) Check(addr uintptr, size, align int) error {
	a := xunsafe.Addr[byte](addr)
	offset := a.ByteSub(r.start())
	if offset < 0 || offset > len(r.buf) || len(r.buf)-offset < size {
		return ErrOutOfBounds
	}
	if !r.unaligned && !a.IsAligned(align) {
		return ErrMisaligned
	}
	return nil
}

// Format implements [fmt.Formatter].
func (r Region) Format(s fmt.State, verb rune) {
	start := r.start()
	dbg.Fprintf("[%v:%v]", start, start.ByteAdd(len(r.buf))).Format(s, verb)
}

func (r Region) start() xunsafe.Addr[byte] {
	return xunsafe.AddrOf(unsafe.SliceData(r.buf))
}
