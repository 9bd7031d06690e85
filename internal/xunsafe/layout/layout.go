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

// Package layout includes helpers for working with type layouts.
//
// It is separate from xunsafe, because nothing in this package is actually
// unsafe.
package layout

import (
	"fmt"
	"unsafe"
)

// Int is any integer type.
type Int interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~uintptr
}

// Size returns T's size in bytes.
func Size[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// Align returns T's alignment in bytes.
func Align[T any]() int {
	var z T
	return int(unsafe.Alignof(z))
}

// Layout is the layout of some type.
type Layout struct {
	Size, Align int
}

// Of returns the size and alignment of a given type.
func Of[T any]() Layout {
	return Layout{Size[T](), Align[T]()}
}

// Format implements [fmt.Formatter].
func (l Layout) Format(s fmt.State, verb rune) {
	fmt.Fprintf(s, "{%d, %d}", l.Size, l.Align)
}

// RoundUp rounds v up to align, which must be a power of two.
func RoundUp[I Int](v, align I) I {
	return (v + align - 1) &^ (align - 1)
}

// Padding returns the number of bytes needed to round v up to align, which
// must be a power of two.
func Padding[I Int](v, align I) I {
	return RoundUp(v, align) - v
}

// IsAligned returns whether v is a multiple of align, which must be a power
// of two.
func IsAligned[I Int](v, align I) bool {
	return v&(align-1) == 0
}

// PadSlice appends zeros to s until its length is a multiple of align.
func PadSlice[S ~[]E, E any](s S, align int) S {
	n := Padding(len(s), align)
	var z E
	for range n {
		s = append(s, z)
	}
	return s
}
