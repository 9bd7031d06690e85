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

// Package linker provides a general-purpose in-memory linker, that is used to
// assemble position-independent images whose internal references are
// relative pointers.
package linker

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"buf.build/go/relptr/internal/debug"
	"buf.build/go/relptr/internal/xunsafe"
	"buf.build/go/relptr/internal/xunsafe/layout"
)

// Linker implements a primitive linker, for writing symbols to an output buffer
// and resolving relocations at the very end.
//
// A zero value is ready to use.
type Linker struct {
	symbols  []*Sym       // Symbols in order they are added to the linker.
	database map[any]*Sym // Map of names to symbols.
}

// NewSymbol allocates a new symbol. Symbols are laid out in the order in
// which they are added to the linker.
func (l *Linker) NewSymbol(name any) *Sym {
	s := &Sym{name: name, align: 1}
	l.symbols = append(l.symbols, s)

	if l.database == nil {
		l.database = make(map[any]*Sym)
	}
	if _, ok := l.database[name]; ok {
		panic(fmt.Sprintf("relptr: symbol defined twice: %#v", name))
	}
	l.database[name] = s

	return s
}

// Offset returns the offset of the symbol with the given name within the
// linked image. It is only meaningful after [Linker.Link].
func (l *Linker) Offset(name any) (int, bool) {
	sym, ok := l.database[name]
	if !ok {
		return 0, false
	}
	return sym.offset, true
}

// Link executes the final link and returns the result.
//
// alloc is used to obtain a suitable buffer for the size of the linked program.
func (l *Linker) Link(alloc func(size, align int) []byte) ([]byte, error) {
	// First, figure out the total size of the program.
	offset := 0
	align := 1
	for _, sym := range l.symbols {
		align = max(align, sym.align)
		offset = layout.RoundUp(offset, sym.align)
		sym.offset = offset // Record the start offset, *after* the padding!
		debug.Log(nil, "symbol", "%v @ %#x", sym.name, sym.offset)
		offset += len(sym.data)
	}

	if offset > math.MaxInt32 {
		return nil, errors.New("image is larger than 2GB")
	}

	// Get a buffer big enough for what we need.
	buf := alloc(offset, align)

	// Copy over each symbol, resolving relocations as we go.
	offset = 0
	for _, sym := range l.symbols {
		offset = layout.RoundUp(offset, sym.align)
		debug.Assert(offset == sym.offset, "symbol %v moved from %#x to %#x", sym.name, sym.offset, offset)
		copy(buf[offset:], sym.data)

		for i, rel := range sym.rels {
			size := rel.Kind.size()
			if size == 0 {
				return nil, fmt.Errorf("invalid relocation kind: %v", rel.Kind)
			}
			if int(rel.Offset)+size > len(sym.data) {
				return nil, fmt.Errorf("%v relocation at %#x runs past the end of %v", rel.Kind, rel.Offset, sym.name)
			}

			// Find the referenced symbol.
			ref, ok := l.database[rel.Symbol]
			if !ok {
				return nil, fmt.Errorf("undefined symbol: %v", rel.Symbol)
			}

			// Find the location we need to write to in this symbol.
			at := offset + int(rel.Offset)
			target := &buf[at]
			dest := ref.offset + rel.Addend

			switch rel.Kind {
			case Address:
				value := xunsafe.ByteAdd[byte](unsafe.SliceData(buf), dest)
				xunsafe.ByteStore(target, 0, value)

				debug.Log(nil, "rel:address", "%#v/%d %p->%p", rel.Symbol, i, target, value)

			case Abs32:
				if dest < 0 || int64(dest) > math.MaxUint32 {
					return nil, fmt.Errorf("abs32 relocation to %v out of range: %#x", rel.Symbol, dest)
				}
				value := uint32(dest)
				xunsafe.ByteStore(target, 0, value)

				debug.Log(nil, "rel:abs32", "%#v/%d %p->%#x", rel.Symbol, i, target, value)

			case Rel32:
				delta := dest - at
				if delta < math.MinInt32 || delta > math.MaxInt32 {
					return nil, fmt.Errorf("rel32 relocation to %v out of range: %d", rel.Symbol, delta)
				}
				value := int32(delta)
				xunsafe.ByteStore(target, 0, value)

				debug.Log(nil, "rel:rel32", "%#v/%d %p->%+d", rel.Symbol, i, target, value)

			default:
				return nil, fmt.Errorf("invalid relocation kind: %v", rel.Kind)
			}
		}

		offset += len(sym.data)
	}

	return buf, nil
}

// Alloc is an allocator suitable for [Linker.Link]. It returns a zeroed buffer
// of the given size whose start is aligned to align.
func Alloc(size, align int) []byte {
	words := make([]uint64, (size+align+7)/8)
	buf := unsafe.Slice(xunsafe.Cast[byte](unsafe.SliceData(words)), len(words)*8)
	pad := xunsafe.AddrOf(unsafe.SliceData(buf)).Padding(align)
	return buf[pad : pad+size : pad+size]
}
