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

	"buf.build/go/relptr/internal/debug"
	"buf.build/go/relptr/internal/xunsafe"
	"buf.build/go/relptr/internal/xunsafe/layout"
)

// Load interprets the memory at addr as a T, if mem allows it.
func Load[T any](mem Memory, addr unsafe.Pointer) (T, bool) {
	v, err := TryLoad[T](mem, addr)
	return v, err == nil
}

// TryLoad is like [Load], but reports why the load failed.
//
// This is the only function in this package that reinterprets memory.
func TryLoad[T any](mem Memory, addr unsafe.Pointer) (T, error) {
	var z T
	raw := uintptr(addr)
	if !xunsafe.PointerFree[T]() {
		return z, newLoadError[T](raw, ErrPointerShaped)
	}

	// mem gets the first say on nil, since a Region over an empty slice
	// starts at nil too.
	l := layout.Of[T]()
	if err := mem.Check(raw, l.Size, l.Align); err != nil {
		debug.Log(nil, "load", "%T @ %#x: %v", z, raw, err)
		return z, newLoadError[T](raw, err)
	}
	if addr == nil {
		return z, newLoadError[T](raw, ErrNull)
	}

	return xunsafe.ByteLoad[T]((*byte)(addr), 0), nil
}

// LoadAs resolves ref against base and interprets the target as a U.
//
// U need not be the type ref was declared to point to; this is how a
// reference to some polymorphic record can be read first as a common header,
// and then again as a specific variant.
func LoadAs[U any](mem Memory, ref Reference, base unsafe.Pointer) (U, bool) {
	v, err := TryLoadAs[U](mem, ref, base)
	return v, err == nil
}

// TryLoadAs is like [LoadAs], but reports why the load failed.
func TryLoadAs[U any](mem Memory, ref Reference, base unsafe.Pointer) (U, error) {
	addr, err := ref.Target(mem, base)
	if err != nil {
		var z U
		if _, ok := err.(*LoadError); !ok { //nolint:errorlint
			err = newLoadError[U](uintptr(base), err)
		}
		return z, err
	}
	return TryLoad[U](mem, addr)
}
