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
	"fmt"
	"io"

	"github.com/fatih/color"

	"buf.build/go/relptr"
	"buf.build/go/relptr/internal/debug"
)

// dump resolves every field in m against mem and writes one line per field
// to out.
//
// Fields that cannot be resolved are reported inline; dump only fails if
// writing to out does.
func dump(out io.Writer, mem relptr.Region, m *Manifest, colors bool) error {
	name := color.New(color.FgCyan, color.Bold)
	addr := color.New(color.FgYellow)
	bad := color.New(color.FgRed)
	for _, c := range []*color.Color{name, addr, bad} {
		if colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, f := range m.Fields {
		if _, err := fmt.Fprintf(out, "%s @ %s", name.Sprint(f.Name), addr.Sprintf("%#x", f.At)); err != nil {
			return err
		}

		line, err := resolve(mem, f)
		if err != nil {
			debug.Log(nil, "resolve", "%s: %v", f.Name, err)
			line += bad.Sprint("error: ", err)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// resolve resolves a single field and formats the rest of its line.
func resolve(mem relptr.Region, f Field) (string, error) {
	if f.At > mem.Len() {
		return ": ", fmt.Errorf("offset %#x past end of image (%#x bytes)", f.At, mem.Len())
	}

	base := mem.At(f.At)
	ref, err := kinds[f.Kind](mem, base)
	if err != nil {
		return ": ", err
	}
	prefix := fmt.Sprintf(" -> %+d", ref.Offset())

	target, err := ref.Target(mem, base)
	if err != nil {
		return prefix + ": ", err
	}
	prefix += fmt.Sprintf(" = %#x", mem.Offset(target))

	v, err := types[f.Type](mem, ref, base)
	if err != nil {
		return prefix + ": ", err
	}
	return fmt.Sprintf("%s: %v", prefix, v), nil
}
