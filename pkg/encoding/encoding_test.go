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

package encoding_test

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/cahaug/ls8/pkg/encoding"
)

type decodeCase struct {
	Input  string
	Output byte
	Fail   bool
}

func testDecoder(t *testing.T, decode func(string) (byte, error), tests []decodeCase) {
	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			have, err := decode(test.Input)

			if test.Fail {
				if err == nil {
					t.Fatalf("want:error\nhave:0x%02x", have)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if have != test.Output {
				t.Fatalf("want:0x%02x\nhave:0x%02x", test.Output, have)
			}
		})
	}
}

func TestDecodeBinary(t *testing.T) {
	testDecoder(t, encoding.DecodeBinary, []decodeCase{
		{Input: "00001000", Output: 0x08},
		{Input: "0b00001000", Output: 0x08},
		{Input: "0B1", Output: 0x01},
		{Input: "1000", Output: 0x08},
		{Input: "11111111", Output: 0xFF},
		{Input: "", Fail: true},
		{Input: "0b", Fail: true},
		{Input: "100000000", Fail: true},
		{Input: "00000002", Fail: true},
		{Input: "-1", Fail: true},
	})
}

func TestDecodeHex(t *testing.T) {
	testDecoder(t, encoding.DecodeHex, []decodeCase{
		{Input: "0xFF", Output: 0xFF},
		{Input: "xFF", Output: 0xFF},
		{Input: "0x2a", Output: 0x2A},
		{Input: "FF", Fail: true},
		{Input: "0x", Fail: true},
		{Input: "0x100", Fail: true},
	})
}

func TestDecodeInt(t *testing.T) {
	testDecoder(t, encoding.DecodeInt, []decodeCase{
		{Input: "#123", Output: 123},
		{Input: "123", Output: 123},
		{Input: "0", Output: 0},
		{Input: "#256", Fail: true},
		{Input: "#", Fail: true},
		{Input: "12ab", Fail: true},
	})

	if _, err := encoding.DecodeInt("300"); !errors.Is(err, strconv.ErrRange) {
		t.Errorf("want:%v\nhave:%v", strconv.ErrRange, err)
	}
}

func TestDecodeLiteral(t *testing.T) {
	testDecoder(t, encoding.DecodeLiteral, []decodeCase{
		{Input: "0x2A", Output: 42},
		{Input: "x2A", Output: 42},
		{Input: "0b101010", Output: 42},
		{Input: "#42", Output: 42},
		{Input: "42", Output: 42},
		{Input: "0b2", Fail: true},
	})
}

func TestDecodeProgram(t *testing.T) {
	input := `# print8.ls8

10000010 # LDI R0,8
00000000
  00001000
0b01000111 # PRN R0
0
# trailing comment
00000001 # HLT
`

	program, err := encoding.DecodeProgram(strings.NewReader(input))

	if err != nil {
		t.Fatal(err)
	}

	want := []byte{0b10000010, 0x00, 0x08, 0b01000111, 0x00, 0x01}

	if !bytes.Equal(program, want) {
		t.Fatalf("want:%v\nhave:%v", want, program)
	}
}

func TestDecodeProgramEmpty(t *testing.T) {
	program, err := encoding.DecodeProgram(strings.NewReader("# nothing\n\n"))

	if err != nil {
		t.Fatal(err)
	}

	if len(program) != 0 {
		t.Fatalf("want:[]\nhave:%v", program)
	}
}

func TestDecodeProgramFail(t *testing.T) {
	input := "00000001\n\n00000002 # bad digit\n"

	_, err := encoding.DecodeProgram(strings.NewReader(input))

	var literalErr *encoding.LiteralError
	if !errors.As(err, &literalErr) {
		t.Fatalf("want:*encoding.LiteralError\nhave:%T", err)
	}

	if literalErr.Line != 3 || literalErr.Text != "00000002" {
		t.Errorf(
			"Literal error mismatch\nwant:line 3 '00000002'\nhave:line %d '%s'",
			literalErr.Line,
			literalErr.Text,
		)
	}

	if literalErr.Unwrap() == nil {
		t.Error("Literal error is missing its cause")
	}
}

func TestEncodeProgram(t *testing.T) {
	var buffer bytes.Buffer

	program := []byte{0b10000010, 0x00, 0x08, 0x01}
	comments := map[int]string{0: "LDI R0,8", 3: "HLT"}

	if err := encoding.EncodeProgram(&buffer, program, comments); err != nil {
		t.Fatal(err)
	}

	want := "10000010 # LDI R0,8\n" +
		"00000000\n" +
		"00001000\n" +
		"00000001 # HLT\n"

	if have := buffer.String(); have != want {
		t.Fatalf("want:%q\nhave:%q", want, have)
	}

	decoded, err := encoding.DecodeProgram(&buffer)

	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(decoded, program) {
		t.Fatalf("want:%v\nhave:%v", program, decoded)
	}
}
