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

package relptr_test

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buf.build/go/relptr"
	"buf.build/go/relptr/internal/linker"
)

func TestNullable(t *testing.T) {
	t.Parallel()

	buf := linker.Alloc(16, 8)
	binary.NativeEndian.PutUint64(buf[8:], 99)
	mem := relptr.NewRegion(buf)

	var null relptr.Nullable[uint64]
	assert.True(t, null.IsNull())
	assert.Nil(t, null.Address(mem.At(0)))
	_, ok := null.Pointee(mem, mem.At(0))
	assert.False(t, ok)
	_, err := relptr.TryLoadAs[uint64](mem, null, mem.At(0))
	assertCode(t, relptr.ErrorNull, err)
	assert.ErrorIs(t, err, relptr.ErrNull)

	p := relptr.Nullable[uint64](8)
	assert.False(t, p.IsNull())
	assert.Equal(t, int32(8), p.Offset())
	assert.Equal(t, mem.At(8), p.Address(mem.At(0)))
	v, ok := p.Pointee(mem, mem.At(0))
	assert.True(t, ok)
	assert.Equal(t, uint64(99), v)
}

func TestIndirect(t *testing.T) {
	t.Parallel()

	l := new(linker.Linker)
	rec := l.NewSymbol("rec")
	rec.PushRel32("got", 0)
	rec.PushRel32("got", 8)

	got := l.NewSymbol("got")
	got.PushAddress("value", 0)
	got.Push(uintptr(0)) // Unpatched slot.

	l.NewSymbol("value").Push(int64(-5))

	image, err := l.Link(linker.Alloc)
	require.NoError(t, err)
	mem := relptr.NewRegion(image)

	base := mem.At(0)
	p, ok := relptr.Load[relptr.Indirect[int64]](mem, base)
	require.True(t, ok)

	gotOff, _ := l.Offset("got")
	valueOff, _ := l.Offset("value")
	assert.Equal(t, mem.At(gotOff), p.Slot(base))

	target, err := p.Target(mem, base)
	require.NoError(t, err)
	assert.Equal(t, mem.At(valueOff), target)

	v, ok := p.Pointee(mem, base)
	assert.True(t, ok)
	assert.Equal(t, int64(-5), v)

	// The second record points at a slot that was never filled in.
	base = mem.At(4)
	p, ok = relptr.Load[relptr.Indirect[int64]](mem, base)
	require.True(t, ok)
	_, err = relptr.TryLoadAs[int64](mem, p, base)
	assertCode(t, relptr.ErrorNull, err)

	// A slot outside of the region.
	_, err = relptr.TryLoadAs[int64](mem, relptr.Indirect[int64](-64), base)
	assertCode(t, relptr.ErrorOutOfBounds, err)
}

func TestIndirectable(t *testing.T) {
	t.Parallel()

	type image struct {
		Direct, Indirect relptr.Indirectable[uint32]
		Slot             uintptr
		Value            uint32
	}

	img := new(image)
	img.Value = 7
	img.Slot = uintptr(unsafe.Pointer(&img.Value))
	img.Direct = relptr.Indirectable[uint32](unsafe.Offsetof(img.Value) - unsafe.Offsetof(img.Direct))
	img.Indirect = relptr.Indirectable[uint32](unsafe.Offsetof(img.Slot)-unsafe.Offsetof(img.Indirect)) | 1

	assert.False(t, img.Direct.IsIndirect())
	assert.True(t, img.Indirect.IsIndirect())
	assert.Equal(t, int32(unsafe.Offsetof(img.Slot)-unsafe.Offsetof(img.Indirect)), img.Indirect.Offset())

	mem := relptr.Aligned{}
	for _, p := range []*relptr.Indirectable[uint32]{&img.Direct, &img.Indirect} {
		target, err := p.Target(mem, unsafe.Pointer(p))
		require.NoError(t, err)
		assert.Equal(t, unsafe.Pointer(&img.Value), target)

		v, ok := p.Pointee(mem, unsafe.Pointer(p))
		assert.True(t, ok)
		assert.Equal(t, uint32(7), v)
	}
}

func TestIntPair(t *testing.T) {
	t.Parallel()

	p := relptr.NewIntPair[uint64](16, 5)
	assert.Equal(t, int32(16), p.Offset())
	assert.Equal(t, 5, p.Int())

	p = relptr.NewIntPair[uint64](-8, 7)
	assert.Equal(t, int32(-8), p.Offset())
	assert.Equal(t, 7, p.Int())

	assert.Panics(t, func() { relptr.NewIntPair[uint64](4, 0) })
	assert.Panics(t, func() { relptr.NewIntPair[uint64](8, 8) })
	assert.Panics(t, func() { relptr.NewIntPair[byte](8, 1) })

	buf := linker.Alloc(24, 8)
	binary.NativeEndian.PutUint64(buf[16:], 1234)
	mem := relptr.NewRegion(buf)

	p = relptr.NewIntPair[uint64](16, 3)
	assert.Equal(t, mem.At(16), p.Address(mem.At(0)))
	v, ok := p.Pointee(mem, mem.At(0))
	assert.True(t, ok)
	assert.Equal(t, uint64(1234), v)
}
