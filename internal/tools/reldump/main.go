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

// reldump resolves the relative pointers in a binary image and prints what
// they point to.
//
// Which bytes of the image hold relative pointers, and what they point to, is
// described by a YAML manifest:
//
//	fields:
//	  - name: root
//	    at: 0x10
//	    kind: direct
//	    type: uint32
//
// The image is mapped read-only and every load is bounds-checked against it,
// so a corrupt image or manifest produces errors, not crashes.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"buf.build/go/relptr/internal/mapping"
)

var (
	manifestPath = flag.String("m", "", "path to the YAML manifest describing the image")
	output       = flag.String("o", "-", "location to dump to; defaults to stdout")
	colorMode    = flag.String("color", "auto", "whether to color output: 'auto', 'always', or 'never'")
)

func run(image string) (err error) {
	if *manifestPath == "" {
		return fmt.Errorf("missing required flag -m")
	}
	if image == "" {
		return fmt.Errorf("missing image argument")
	}

	data, err := os.ReadFile(*manifestPath)
	if err != nil {
		return err
	}
	m, err := parseManifest(data)
	if err != nil {
		return fmt.Errorf("%s: %w", *manifestPath, err)
	}

	f, err := mapping.Open(image)
	if err != nil {
		return err
	}
	defer closeInto(&err, f)

	var out io.Writer = os.Stdout
	colors := false
	switch *colorMode {
	case "auto":
		colors = *output == "-" && term.IsTerminal(int(os.Stdout.Fd()))
	case "always":
		colors = true
	case "never":
	default:
		return fmt.Errorf("invalid -color value: %q", *colorMode)
	}

	if *output != "-" {
		file, createErr := os.Create(*output)
		if createErr != nil {
			return createErr
		}
		defer closeInto(&err, file)
		out = file
	}

	return dump(out, f.Region(), m, colors)
}

// closeInto closes c, and reports its error through err unless err already
// holds one.
func closeInto(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}

func main() {
	flag.Parse()
	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "reldump:", err)
		os.Exit(1)
	}
}
