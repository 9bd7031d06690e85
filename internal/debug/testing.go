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

package debug

import (
	"testing"

	"github.com/timandy/routine"
)

// tls holds the test, if any, that the current goroutine is logging to.
var tls = routine.NewThreadLocal[testing.TB]()

// WithT routes [Log] output on the calling goroutine to t until t finishes.
func WithT(t testing.TB) {
	tls.Set(t)
	t.Cleanup(tls.Remove)
}
