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

package assembler

import (
	"fmt"
	"strings"
)

type TokenType uint
type DirectiveType uint

// Cursor locates a token or character in the source. Byte is the offset of
// the token, LineByte the offset of the line holding it.
type Cursor struct {
	Line     int
	Column   int
	Byte     int64
	Size     int64
	LineByte int64
}

func (c Cursor) String() string {
	return fmt.Sprintf("%02d:%02d", c.Line, c.Column)
}

// GetPosition is promoted to every error type that embeds a Cursor.
func (c Cursor) GetPosition() Cursor {
	return c
}

type Token struct {
	Type     TokenType
	Position Cursor
	Value    string
}

// SymTable maps assembled addresses back to the source. Symbols holds the
// byte offset of the line that produced each address.
type SymTable struct {
	Source  string          `cbor:"source"`
	Symbols map[byte]int64  `cbor:"symbols"`
	Labels  map[byte]string `cbor:"labels"`
}

type TokenError interface {
	error
	GetPosition() Cursor
}

var tokenTypeNames = [...]string{
	TOKEN_NONE:      "<invalid>",
	TOKEN_IDENT:     "Identifier",
	TOKEN_LABEL:     "Label",
	TOKEN_DIRECTIVE: "Directive",
	TOKEN_LITERAL:   "Literal",
}

func (tokenType TokenType) String() string {
	if int(tokenType) < len(tokenTypeNames) {
		return tokenTypeNames[tokenType]
	}

	return tokenTypeNames[TOKEN_NONE]
}

type InvalidOperandError struct {
	Cursor
	Required []TokenType
	Received TokenType
}

func (err *InvalidOperandError) Error() string {
	names := make([]string, len(err.Required))

	for i, tokenType := range err.Required {
		names[i] = tokenType.String()
	}

	return fmt.Sprintf(
		"%s: Invalid operands\n\twant:%s\n\thave:%s",
		err.Cursor,
		strings.Join(names, " or "),
		err.Received,
	)
}

type InvalidNumArgumentsError struct {
	Cursor
	Required int
	Received int
}

func (err *InvalidNumArgumentsError) Error() string {
	return fmt.Sprintf(
		"%s: Invalid number of arguments\n\twant:%d\n\thave:%d",
		err.Cursor,
		err.Required,
		err.Received,
	)
}

type InvalidLiteralError struct {
	Cursor
}

func (err *InvalidLiteralError) Error() string {
	return err.Cursor.String() + ": Invalid numeric literal"
}

type OversizedLiteralError struct {
	Cursor
	Required int
	Received string
}

func (err *OversizedLiteralError) Error() string {
	return fmt.Sprintf(
		"%s: Literal exceeds one byte\n\twant:<= %d\n\thave:%s",
		err.Cursor,
		err.Required,
		err.Received,
	)
}

type InvalidRegisterError struct {
	Cursor
}

func (err *InvalidRegisterError) Error() string {
	return err.Cursor.String() + ": Invalid register, want R0 through R7"
}

type UnexpectedCharacterError struct {
	Cursor
	Received rune
}

func (err *UnexpectedCharacterError) Error() string {
	return fmt.Sprintf("%s: Unexpected character %q", err.Cursor, err.Received)
}

type OversizedCharacterError struct {
	Cursor
}

func (err *OversizedCharacterError) Error() string {
	return err.Cursor.String() + ": Character exceeds ASCII limit"
}

type RedeclaredLabelError struct {
	Cursor
	Received string
}

func (err *RedeclaredLabelError) Error() string {
	return fmt.Sprintf("%s: Redeclaration of label '%s'", err.Cursor, err.Received)
}

type UnknownLabelError struct {
	Cursor
	Received string
}

func (err *UnknownLabelError) Error() string {
	return fmt.Sprintf("%s: Unknown label '%s'", err.Cursor, err.Received)
}

type UnknownIdentifierError struct {
	Cursor
	Received string
}

func (err *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("%s: Unknown identifier '%s'", err.Cursor, err.Received)
}

type BackwardsOriginError struct {
	Cursor
	Required int
	Received int
}

func (err *BackwardsOriginError) Error() string {
	return fmt.Sprintf(
		"%s: Origin moves backwards\n\twant:>= 0x%02x\n\thave:0x%02x",
		err.Cursor,
		err.Required,
		err.Received,
	)
}

type OversizedBinaryError struct{}

func (err *OversizedBinaryError) Error() string {
	return "Program exceeds 256 bytes"
}
