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

// Pointer is a relative pointer to a T.
//
// It is exactly an int32, so it may be embedded in structs that mirror a
// binary layout. The zero value points at itself.
type Pointer[T any] int32

// Reference is implemented by every kind of relative pointer in this package.
type Reference interface {
	// Offset returns the raw offset stored in this reference.
	Offset() int32

	// Target resolves this reference against base, the address it was stored
	// at, and returns the address of the value it refers to.
	//
	// mem is used to validate any loads required along the way. Only
	// indirect references perform such loads.
	Target(mem Memory, base unsafe.Pointer) (unsafe.Pointer, error)
}

var _ Reference = Pointer[int](0)

// New returns a relative pointer with the given offset.
func New[T any](offset int32) Pointer[T] {
	return Pointer[T](offset)
}

// Offset returns the byte displacement this pointer stores.
func (p Pointer[T]) Offset() int32 {
	return int32(p)
}

// Resolve adds this pointer's offset to base, using signed arithmetic.
//
// No validation of the result is performed.
func (p Pointer[T]) Resolve(base uintptr) uintptr {
	return uintptr(xunsafe.Addr[byte](base).ByteAdd(int(p)))
}

// Address resolves this pointer against base, which must be the address this
// pointer was stored at.
func (p Pointer[T]) Address(base unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(base, int(p))
}

// Target implements [Reference].
func (p Pointer[T]) Target(_ Memory, base unsafe.Pointer) (unsafe.Pointer, error) {
	return p.Address(base), nil
}

// Pointee loads the T this pointer refers to.
//
// This is exactly [LoadAs] with T as the type to load.
func (p Pointer[T]) Pointee(mem Memory, base unsafe.Pointer) (T, bool) {
	return LoadAs[T](mem, p, base)
}

// TryPointee is like [Pointer.Pointee], but reports why a load failed.
func (p Pointer[T]) TryPointee(mem Memory, base unsafe.Pointer) (T, error) {
	return TryLoadAs[T](mem, p, base)
}

// Format implements [fmt.Formatter].
func (p Pointer[T]) Format(s fmt.State, verb rune) {
	if verb == 'v' {
		dbg.Fprintf("rel(%+d)", int32(p)).Format(s, verb)
		return
	}

	fmt.Fprintf(s, fmt.FormatString(s, verb), int32(p))
}

// AddressOf resolves the pointer stored at p.
func AddressOf[T any](p *Pointer[T]) unsafe.Pointer {
	return p.Address(unsafe.Pointer(p))
}

// Deref loads the T that the pointer stored at p refers to.
func Deref[T any](mem Memory, p *Pointer[T]) (T, bool) {
	return p.Pointee(mem, unsafe.Pointer(p))
}
