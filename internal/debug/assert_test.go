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

//go:build debug

package debug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"buf.build/go/relptr/internal/debug"
)

func TestAssert(t *testing.T) {
	t.Parallel()
	debug.WithT(t)

	assert.NotPanics(t, func() { debug.Assert(true, "unreachable") })
	assert.PanicsWithError(t, "relptr: internal assertion failed: offset 0x4", func() {
		debug.Assert(false, "offset %#x", 4)
	})

	debug.Log(nil, "test", "logged through %v", t.Name())
}
