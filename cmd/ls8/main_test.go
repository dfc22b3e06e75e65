// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/cahaug/ls8/pkg/machine"
)

type runCase struct {
	Args   []string
	Status int
	Output string
}

const print8 = "../../examples/print8.ls8"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), name)

	if err := os.WriteFile(filename, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	return filename
}

func testRun(t *testing.T, name string, test runCase) {
	t.Run(name, func(t *testing.T) {
		var stdout bytes.Buffer

		status := ls8(test.Args, &stdout)

		if status != test.Status {
			t.Errorf(
				"Exit status mismatch\nwant:%d\nhave:%d\nargs:%s",
				test.Status,
				status,
				spew.Sdump(test.Args),
			)
		}

		if have := stdout.String(); have != test.Output {
			t.Errorf("Output mismatch\nwant:%q\nhave:%q", test.Output, have)
		}
	})
}

func TestRun(t *testing.T) {
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	tests := map[string]runCase{
		"Missing Filename": {
			Args:   []string{},
			Status: 1,
		},
		"Too Many Filenames": {
			Args:   []string{print8, print8},
			Status: 1,
		},
		"Unknown Flag": {
			Args:   []string{"-bogus", print8},
			Status: 1,
		},
		"Missing File": {
			Args:   []string{filepath.Join(t.TempDir(), "missing.ls8")},
			Status: 1,
		},
		"Print 8": {
			Args:   []string{print8},
			Status: 0,
			Output: "8\n",
		},
		"Unknown Opcode": {
			Args:   []string{writeTemp(t, "unknown.ls8", "11111111\n")},
			Status: 1,
		},
		"Bad Literal": {
			Args:   []string{writeTemp(t, "bad.ls8", "00000002\n")},
			Status: 1,
		},
		"Program Too Large": {
			Args: []string{
				"-config", writeTemp(t, "small.toml", "[machine]\nmemory = 4\n"),
				print8,
			},
			Status: 1,
		},
		"Trace": {
			Args:   []string{"-trace", print8},
			Status: 0,
			Output: "TRACE: 00 | 82 00 08 | 00 00 00 00 00 00 00 FF\n" +
				"TRACE: 03 | 47 00 01 | 08 00 00 00 00 00 00 FF\n" +
				"8\n" +
				"TRACE: 05 | 01 00 00 | 08 00 00 00 00 00 00 FF\n",
		},
	}

	for name, test := range tests {
		testRun(t, name, test)
	}
}

func TestRunHelp(t *testing.T) {
	var stdout bytes.Buffer

	if status := ls8([]string{"-help"}, &stdout); status != 0 {
		t.Fatalf("want:0\nhave:%d", status)
	}

	if !strings.HasPrefix(stdout.String(), usage+"\n") {
		t.Errorf("Usage missing from help\nhave:%q", stdout.String())
	}

	if !strings.Contains(stdout.String(), "-snapshot") {
		t.Errorf("Flag defaults missing from help\nhave:%q", stdout.String())
	}
}

func TestRunSnapshot(t *testing.T) {
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	filename := filepath.Join(t.TempDir(), "print8.cbor")

	var stdout bytes.Buffer

	if status := ls8([]string{"-snapshot", filename, print8}, &stdout); status != 0 {
		t.Fatalf("want:0\nhave:%d", status)
	}

	data, err := os.ReadFile(filename)

	if err != nil {
		t.Fatal(err)
	}

	state, err := machine.UnmarshalSnapshot(data)

	if err != nil {
		t.Fatal(err)
	}

	if !state.Halted || state.Program != 0x06 || state.Registers[0] != 0x08 {
		t.Errorf(
			"Snapshot mismatch\nwant:halted at 0x06 with R0 0x08\nhave:%s",
			spew.Sdump(state.Registers, state.Program, state.Halted),
		)
	}
}
