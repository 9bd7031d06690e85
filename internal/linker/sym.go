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

package linker

import (
	"fmt"
	"reflect"

	"buf.build/go/relptr/internal/xunsafe"
	"buf.build/go/relptr/internal/xunsafe/layout"
)

const (
	Unknown Kind = iota
	Address      // Target-specific pointer in the final output buffer.
	Abs32        // Absolute (relative to the image base) 32-bit offset.
	Rel32        // Signed 32-bit offset relative to the relocation itself.
)

// Kind is a relocation kind.
type Kind byte

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case Address:
		return "address"
	case Abs32:
		return "abs32"
	case Rel32:
		return "rel32"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// size returns the number of bytes a relocation of this kind writes.
func (k Kind) size() int {
	switch k {
	case Address:
		return layout.Size[uintptr]()
	case Abs32, Rel32:
		return 4
	default:
		return 0
	}
}

// Sym is all of the metadata associated with a symbol in [Linker].
//
// Symbols are mostly built by pushing Go values with [Sym.Push]. Those values
// must be pointer-free; pointers between symbols are expressed with
// relocations instead.
type Sym struct {
	name  any
	align int
	data  []byte
	rels  []Rel

	offset int // Assigned during Link().
}

// Rel is a relocation within a [Sym].
type Rel struct {
	Symbol any     // The name of the symbol this relocation references.
	Offset uintptr // Offset of the relocation within [Sym.data].
	Addend int     // Byte offset added to the referenced symbol's address.

	Kind Kind
}

// Push appends a value to this symbol, ensuring that it is correctly-aligned.
//
// Returns the offset of the pushed data.
func (s *Sym) Push(v any) int {
	t := reflect.TypeOf(v)
	if !xunsafe.PointerFreeType(t) {
		panic(fmt.Sprintf("relptr: cannot push value of type %v to a symbol", t))
	}
	align := t.Align()
	return s.PushBytes(align, xunsafe.AnyBytes(v))
}

// PushBytes appends raw bytes to this symbol, ensuring that it is correctly-aligned.
//
// Returns the offset of the pushed data.
func (s *Sym) PushBytes(align int, data []byte) int {
	s.align = max(s.align, align)
	s.data = layout.PadSlice(s.data, align)
	offset := len(s.data)
	s.data = append(s.data, data...)
	return offset
}

// Reserve reserves a region of the given layout in this symbol and returns it.
func (s *Sym) Reserve(size, align int) []byte {
	s.align = max(s.align, align)
	s.data = layout.PadSlice(s.data, align)

	offset := len(s.data)
	s.data = append(s.data, make([]byte, size)...)
	return s.data[offset:]
}

// Rel appends relocations to this symbol.
//
// Relocations are all relative to the end of the data written to this
// symbol so far.
func (s *Sym) Rel(rels ...Rel) {
	for i := range rels {
		rels[i].Offset += uintptr(len(s.data))
	}

	s.rels = append(s.rels, rels...)
}

// PushRel32 pushes a 32-bit self-relative offset to the given symbol, plus
// addend bytes.
//
// Returns the offset of the pushed relocation.
func (s *Sym) PushRel32(symbol any, addend int) int {
	return s.pushRel(Rel{Symbol: symbol, Addend: addend, Kind: Rel32}, layout.Of[int32]())
}

// PushAbs32 pushes a 32-bit offset from the start of the image to the given
// symbol, plus addend bytes.
//
// Returns the offset of the pushed relocation.
func (s *Sym) PushAbs32(symbol any, addend int) int {
	return s.pushRel(Rel{Symbol: symbol, Addend: addend, Kind: Abs32}, layout.Of[uint32]())
}

// PushAddress pushes a pointer-sized slot that will hold the final address of
// the given symbol, plus addend bytes.
//
// Returns the offset of the pushed relocation.
func (s *Sym) PushAddress(symbol any, addend int) int {
	return s.pushRel(Rel{Symbol: symbol, Addend: addend, Kind: Address}, layout.Of[uintptr]())
}

func (s *Sym) pushRel(rel Rel, l layout.Layout) int {
	s.Reserve(0, l.Align) // Pad first, so the relocation lands on the value.
	offset := len(s.data)
	s.Rel(rel)
	s.Reserve(l.Size, l.Align)
	return offset
}
