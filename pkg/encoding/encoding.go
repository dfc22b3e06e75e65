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

package encoding

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type LiteralError struct {
	Line int
	Text string
	Err  error
}

func (err *LiteralError) Error() string {
	return fmt.Sprintf("%02d: Invalid binary literal '%s': %v", err.Line, err.Text, err.Err)
}

func (err *LiteralError) Unwrap() error {
	return err.Err
}

// Decodes a binary string in the formats: 0b00001000, 00001000, 1000
func DecodeBinary(s string) (byte, error) {
	if strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B") {
		s = s[2:]
	}

	if len(s) == 0 || len(s) > 8 {
		return 0, errors.New("Invalid binary string")
	}

	result, err := strconv.ParseUint(s, 2, 8)

	if err != nil {
		return 0, err
	}

	return byte(result), nil
}

// Decodes a hexidecimal string in the formats: 0xFF, xFF
func DecodeHex(s string) (byte, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 8)

	if err != nil {
		return 0, err
	}

	return byte(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (byte, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseUint(s, 10, 8)

	if err != nil {
		return 0, err
	}

	return byte(result), nil
}

// Decodes any of the hex, binary or base-10 formats above
func DecodeLiteral(s string) (byte, error) {
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "x"):
		return DecodeHex(s)
	case strings.HasPrefix(lower, "0b"):
		return DecodeBinary(s)
	default:
		return DecodeInt(s)
	}
}

// DecodeProgram reads one binary literal per line. Text after '#' is a
// comment; lines left empty are skipped.
func DecodeProgram(reader io.Reader) ([]byte, error) {
	program := make([]byte, 0, 64)
	scanner := bufio.NewScanner(reader)
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()

		if i := strings.IndexByte(text, '#'); i != -1 {
			text = text[:i]
		}

		text = strings.TrimSpace(text)

		if len(text) == 0 {
			continue
		}

		value, err := DecodeBinary(text)

		if err != nil {
			return nil, &LiteralError{line, text, err}
		}

		program = append(program, value)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return program, nil
}

// EncodeProgram writes program in the format DecodeProgram reads. comments
// are keyed by address.
func EncodeProgram(writer io.Writer, program []byte, comments map[int]string) error {
	buffer := bufio.NewWriter(writer)

	for addr, value := range program {
		var err error

		if comment, exists := comments[addr]; exists && comment != "" {
			_, err = fmt.Fprintf(buffer, "%08b # %s\n", value, comment)
		} else {
			_, err = fmt.Fprintf(buffer, "%08b\n", value)
		}

		if err != nil {
			return err
		}
	}

	return buffer.Flush()
}
