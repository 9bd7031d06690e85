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

// Package mapping maps image files into memory, read-only, so that relative
// pointers inside them can be resolved in place.
package mapping

import (
	"fmt"
	"os"
	"unsafe"

	"buf.build/go/relptr"
	"buf.build/go/relptr/internal/debug"
)

// File is a read-only view of a file's contents.
//
// It is safe to read from a File from multiple goroutines. Close must not be
// called while reads are in progress.
type File struct {
	name   string
	data   []byte
	closer func([]byte) error
}

// Open maps the file at path into memory.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("mapping %s: not a regular file", path)
	}

	data, closer, err := mmap(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}

	debug.Log(nil, "open", "%s: %d bytes @ %p", path, len(data), unsafe.SliceData(data))
	return &File{name: path, data: data, closer: closer}, nil
}

// Name returns the path this file was opened with.
func (f *File) Name() string {
	return f.name
}

// Bytes returns the file's contents. The returned slice must not be written
// to, and must not be used after [File.Close].
func (f *File) Bytes() []byte {
	return f.data
}

// Region returns a [relptr.Region] covering the whole file.
func (f *File) Region() relptr.Region {
	return relptr.NewRegion(f.data)
}

// Close unmaps the file.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer(f.data)
	debug.Log(nil, "close", "%s: %v", f.Name(), err)
	f.data, f.closer = nil, nil
	return err
}
