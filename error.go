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
	"errors"
	"fmt"
	"reflect"
)

const (
	ErrorOk            ErrorCode = iota // No error.
	ErrorPointerShaped                  // The type contains Go pointers.
	ErrorMisaligned                     // The address is not aligned for the type.
	ErrorOutOfBounds                    // The value does not fit in the memory.
	ErrorNull                           // The address, or the reference, is null.

	// A [Memory] rejected the load for a reason of its own.
	ErrorOther
)

// Sentinel errors that a [LoadError] may unwrap to. A [Memory] may return
// these, or wrap them, to select the matching [ErrorCode].
var (
	// ErrPointerShaped is reported for types that contain Go pointers, which
	// can never be loaded from raw memory.
	ErrPointerShaped = errors.New("type contains pointers")
	// ErrMisaligned is reported when an address is not suitably aligned.
	ErrMisaligned = errors.New("misaligned address")
	// ErrOutOfBounds is reported when a value does not lie within memory
	// that a [Memory] knows about.
	ErrOutOfBounds = errors.New("address out of bounds")
	// ErrNull is reported for null addresses and null references.
	ErrNull = errors.New("null relative pointer")
)

var errs = [...]error{
	ErrorOk:            nil,
	ErrorPointerShaped: ErrPointerShaped,
	ErrorMisaligned:    ErrMisaligned,
	ErrorOutOfBounds:   ErrOutOfBounds,
	ErrorNull:          ErrNull,
	ErrorOther:         nil,
}

var codeNames = [...]string{
	ErrorOk:            "ok",
	ErrorPointerShaped: "pointer-shaped",
	ErrorMisaligned:    "misaligned",
	ErrorOutOfBounds:   "out-of-bounds",
	ErrorNull:          "null",
	ErrorOther:         "other",
}

// ErrorCode is one of the possible types of errors in [LoadError].
type ErrorCode int

// String implements [fmt.Stringer].
func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
	return codeNames[c]
}

// LoadError is returned by the Try* functions when a value cannot be
// loaded from an address.
type LoadError struct {
	code ErrorCode
	addr uintptr
	typ  reflect.Type
	err  error
}

func newLoadError[T any](addr uintptr, err error) *LoadError {
	e := &LoadError{addr: addr, typ: reflect.TypeFor[T](), code: ErrorOther, err: err}
	for code, sentinel := range errs {
		if sentinel != nil && errors.Is(err, sentinel) {
			e.code = ErrorCode(code)
			break
		}
	}
	return e
}

// Code returns the kind of failure this error represents.
func (e *LoadError) Code() ErrorCode {
	return e.code
}

// Addr returns the address that could not be loaded from.
func (e *LoadError) Addr() uintptr {
	return e.addr
}

// Type returns the type that was being loaded.
func (e *LoadError) Type() reflect.Type {
	return e.typ
}

// Unwrap implements error unwrapping viz [errors.Unwrap].
func (e *LoadError) Unwrap() error {
	return e.err
}

// Error implements [error].
func (e *LoadError) Error() string {
	return fmt.Sprintf("relptr: cannot load %v at %#x: %v", e.typ, e.addr, e.Unwrap())
}
