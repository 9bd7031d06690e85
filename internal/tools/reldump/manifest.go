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

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"unsafe"

	"gopkg.in/yaml.v3"

	"buf.build/go/relptr"
)

// Manifest describes where the relative pointers in an image are.
type Manifest struct {
	Fields []Field `yaml:"fields"`
}

// Field is a single relative pointer within an image.
type Field struct {
	Name string `yaml:"name"`
	At   int    `yaml:"at"`   // Byte offset of the pointer within the image.
	Kind string `yaml:"kind"` // One of the keys of [kinds].
	Type string `yaml:"type"` // One of the keys of [types].
}

// kinds are the supported relative pointer flavors, keyed by manifest name.
var kinds = map[string]func(relptr.Memory, unsafe.Pointer) (relptr.Reference, error){
	"direct":       loadRef[relptr.Pointer[byte]],
	"nullable":     loadRef[relptr.Nullable[byte]],
	"indirectable": loadRef[relptr.Indirectable[byte]],
}

// types are the supported pointee types, keyed by manifest name.
var types = map[string]func(relptr.Memory, relptr.Reference, unsafe.Pointer) (any, error){
	"int8":    loadValue[int8],
	"int16":   loadValue[int16],
	"int32":   loadValue[int32],
	"int64":   loadValue[int64],
	"uint8":   loadValue[uint8],
	"uint16":  loadValue[uint16],
	"uint32":  loadValue[uint32],
	"uint64":  loadValue[uint64],
	"float32": loadValue[float32],
	"float64": loadValue[float64],
}

func loadRef[R relptr.Reference](mem relptr.Memory, at unsafe.Pointer) (relptr.Reference, error) {
	ref, err := relptr.TryLoad[R](mem, at)
	return ref, err
}

func loadValue[T any](mem relptr.Memory, ref relptr.Reference, base unsafe.Pointer) (any, error) {
	v, err := relptr.TryLoadAs[T](mem, ref, base)
	return v, err
}

// parseManifest parses and validates a manifest.
func parseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := new(Manifest)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	var errs []error
	seen := make(map[string]bool)
	for i, f := range m.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("field %d: missing name", i))
		} else if seen[f.Name] {
			errs = append(errs, fmt.Errorf("field %d: duplicate name %q", i, f.Name))
		}
		seen[f.Name] = true

		if f.Kind == "" {
			m.Fields[i].Kind = "direct"
		} else if _, ok := kinds[f.Kind]; !ok {
			errs = append(errs, fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind))
		}
		if _, ok := types[f.Type]; !ok {
			errs = append(errs, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type))
		}
		if f.At < 0 {
			errs = append(errs, fmt.Errorf("field %q: negative offset %d", f.Name, f.At))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	slices.SortStableFunc(m.Fields, func(a, b Field) int { return a.At - b.At })
	return m, nil
}
