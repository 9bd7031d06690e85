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
	"unsafe"

	"buf.build/go/relptr/internal/xunsafe"
	"buf.build/go/relptr/internal/xunsafe/layout"
)

var (
	_ Reference = Nullable[int](0)
	_ Reference = Indirect[int](0)
	_ Reference = Indirectable[int](0)
	_ Reference = IntPair[int](0)
)

// Nullable is a relative pointer to a T for which a zero offset means that
// there is no T.
type Nullable[T any] int32

// Offset implements [Reference].
func (p Nullable[T]) Offset() int32 {
	return int32(p)
}

// IsNull returns whether this pointer has no target.
func (p Nullable[T]) IsNull() bool {
	return p == 0
}

// Address resolves this pointer against base. Returns nil if this pointer is
// null.
func (p Nullable[T]) Address(base unsafe.Pointer) unsafe.Pointer {
	if p.IsNull() {
		return nil
	}
	return Pointer[T](p).Address(base)
}

// Target implements [Reference].
func (p Nullable[T]) Target(_ Memory, base unsafe.Pointer) (unsafe.Pointer, error) {
	if p.IsNull() {
		return nil, ErrNull
	}
	return Pointer[T](p).Address(base), nil
}

// Pointee loads the T this pointer refers to. Returns false if this pointer is
// null.
func (p Nullable[T]) Pointee(mem Memory, base unsafe.Pointer) (T, bool) {
	return LoadAs[T](mem, p, base)
}

// Indirect is a relative pointer to a pointer-sized slot which holds the
// absolute address of a T.
//
// Images use these to refer to values that live outside of them, since the
// slot can be patched at load time without touching the referencing record.
type Indirect[T any] int32

// Offset implements [Reference].
func (p Indirect[T]) Offset() int32 {
	return int32(p)
}

// Slot returns the address of the slot holding the absolute address.
func (p Indirect[T]) Slot(base unsafe.Pointer) unsafe.Pointer {
	return Pointer[T](p).Address(base)
}

// Target implements [Reference].
//
// The slot is loaded through mem. A zero slot is reported as [ErrNull].
func (p Indirect[T]) Target(mem Memory, base unsafe.Pointer) (unsafe.Pointer, error) {
	return indirect(mem, p.Slot(base))
}

// Pointee loads the T this pointer refers to.
func (p Indirect[T]) Pointee(mem Memory, base unsafe.Pointer) (T, bool) {
	return LoadAs[T](mem, p, base)
}

// Indirectable is a relative pointer which is either direct, or indirect
// through a pointer-sized slot, depending on the low bit of its offset.
//
// Direct targets, and indirection slots, must be at least 2-aligned.
type Indirectable[T any] int32

// Offset implements [Reference].
//
// This is the offset with the indirection bit cleared.
func (p Indirectable[T]) Offset() int32 {
	return int32(p) &^ 1
}

// IsIndirect returns whether this pointer goes through a slot.
func (p Indirectable[T]) IsIndirect() bool {
	return p&1 != 0
}

// Target implements [Reference].
func (p Indirectable[T]) Target(mem Memory, base unsafe.Pointer) (unsafe.Pointer, error) {
	addr := Pointer[T](p.Offset()).Address(base)
	if !p.IsIndirect() {
		return addr, nil
	}
	return indirect(mem, addr)
}

// Pointee loads the T this pointer refers to.
func (p Indirectable[T]) Pointee(mem Memory, base unsafe.Pointer) (T, bool) {
	return LoadAs[T](mem, p, base)
}

// IntPair is a relative pointer to a T whose low bits, which are always zero
// for a suitably aligned T, carry a small integer instead.
//
// The number of bits available is log2 of T's alignment.
type IntPair[T any] int32

// NewIntPair packs offset and n into an [IntPair].
//
// Panics if offset is not aligned for T or if n does not fit in the spare
// bits.
func NewIntPair[T any](offset int32, n int) IntPair[T] {
	mask := intPairMask[T]()
	if int(offset)&mask != 0 || n&^mask != 0 {
		panic("relptr: value does not fit in IntPair")
	}
	return IntPair[T](int(offset) | n)
}

// Offset implements [Reference].
//
// This is the offset with the integer bits cleared.
func (p IntPair[T]) Offset() int32 {
	return int32(int(p) &^ intPairMask[T]())
}

// Int returns the integer packed into this pointer.
func (p IntPair[T]) Int() int {
	return int(p) & intPairMask[T]()
}

// Address resolves this pointer against base.
func (p IntPair[T]) Address(base unsafe.Pointer) unsafe.Pointer {
	return Pointer[T](p.Offset()).Address(base)
}

// Target implements [Reference].
func (p IntPair[T]) Target(_ Memory, base unsafe.Pointer) (unsafe.Pointer, error) {
	return p.Address(base), nil
}

// Pointee loads the T this pointer refers to.
func (p IntPair[T]) Pointee(mem Memory, base unsafe.Pointer) (T, bool) {
	return LoadAs[T](mem, p, base)
}

func intPairMask[T any]() int {
	return layout.Align[T]() - 1
}

// indirect loads an absolute address out of slot.
func indirect(mem Memory, slot unsafe.Pointer) (unsafe.Pointer, error) {
	raw, err := TryLoad[uintptr](mem, slot)
	if err != nil {
		return nil, err
	}
	if raw == 0 {
		return nil, ErrNull
	}
	return xunsafe.Addr[byte](raw).UnsafePointer(), nil
}
