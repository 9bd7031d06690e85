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

package xunsafe

import (
	"reflect"

	"buf.build/go/relptr/internal/xsync"
)

var pointerFreeMap xsync.Map[reflect.Type, bool]

// PointerFree returns whether T's representation contains no pointers the
// garbage collector would need to trace.
//
// Only pointer-free types may be conjured out of raw bytes: a pointer read out
// of memory the GC does not know about may point to anything at all.
func PointerFree[T any]() bool {
	return PointerFreeType(reflect.TypeFor[T]())
}

// PointerFreeType is like [PointerFree], but takes a [reflect.Type].
func PointerFreeType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true

	case reflect.Array:
		return t.Len() == 0 || PointerFreeType(t.Elem())

	case reflect.Struct:
		free, _ := pointerFreeMap.LoadOrStore(t, func() bool {
			for i := range t.NumField() {
				if !PointerFreeType(t.Field(i).Type) {
					return false
				}
			}
			return true
		})
		return free

	default:
		// Pointers, strings, slices, maps, chans, funcs, interfaces, and
		// unsafe.Pointer.
		return false
	}
}
