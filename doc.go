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

// Package relptr implements relative pointers: 32-bit signed offsets, stored
// inline in some larger structure, which locate a value by adding the offset to
// the address of the offset itself.
//
// Relative pointers are how position-independent binary layouts (runtime type
// metadata, linked images, memory-mapped files) refer to themselves. Because
// the displacement is relative to where it is stored, the layout can be
// copied or mapped anywhere and remain valid.
//
// # Resolving
//
// A [Pointer] never computes its own address. Every operation takes the base
// address, which is the address the offset was read from, explicitly:
//
//	type Header struct {
//	    Kind uint32
//	    Name relptr.Pointer[Name]
//	}
//
//	h := (*Header)(p)
//	name, ok := h.Name.Pointee(mem, unsafe.Pointer(&h.Name))
//
// [AddressOf] and [Deref] are shorthands for the common case where the
// [Pointer] was itself loaded in place.
//
// # Loading
//
// Interpreting bytes as a typed value is the only unsafe operation in this
// package, and it is funneled through [TryLoad]. A [Memory] decides whether a
// load may happen; [Native] trusts the caller entirely, while [Region]
// bounds-checks against a known span. Regardless of the [Memory], types that
// contain Go pointers can never be loaded, since the garbage collector has no
// way to know about them.
//
// Loads report failure as a false or a [*LoadError]; they never panic on a
// representation mismatch. Loading from an address that is not mapped is
// undefined behavior, exactly like any other raw memory access.
package relptr
