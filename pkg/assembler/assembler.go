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
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/cahaug/ls8/pkg/encoding"
	"github.com/cahaug/ls8/pkg/machine"
)

type labelRef struct {
	Label    string
	Addr     int
	Position Cursor
}

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, ".ORG") {
		return DIRECTIVE_ORG
	} else if strings.EqualFold(ident, ".DB") {
		return DIRECTIVE_DB
	}

	return DIRECTIVE_INVALID
}

func parseLiteral(token *Token) (byte, error) {
	result, err := encoding.DecodeLiteral(token.Value)

	if errors.Is(err, strconv.ErrRange) {
		return 0, &OversizedLiteralError{token.Position, 0xFF, token.Value}
	} else if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	return result, nil
}

func parseRegister(token *Token) (byte, bool) {
	ident := token.Value

	if len(ident) != 2 || (ident[0] != 'R' && ident[0] != 'r') {
		return 0, false
	}

	if ident[1] < '0' || ident[1] >= '0'+machine.REGISTER_COUNT {
		return 0, false
	}

	return ident[1] - '0', true
}

// encodeInstruction type checks the operands and returns the encoded bytes.
// Label operands that are not declared yet come back as refs relative to the
// start of the instruction.
func encodeInstruction(
	instruction *machine.Instruction,
	keyword *Token,
	operands []Token,
	labels map[string]byte,
) (encoded []byte, refs []labelRef, errs []error) {
	if count := len(operands); count != len(instruction.Operands) {
		errs = append(
			errs,
			&InvalidNumArgumentsError{
				keyword.Position, len(instruction.Operands), count,
			},
		)

		return
	}

	encoded = make([]byte, instruction.Size())
	encoded[0] = instruction.Opcode

	for i, kind := range instruction.Operands {
		operand := &operands[i]

		switch kind {
		case machine.OPERAND_REGISTER:
			if operand.Type != TOKEN_IDENT {
				errs = append(
					errs,
					&InvalidOperandError{
						operand.Position,
						[]TokenType{TOKEN_IDENT},
						operand.Type,
					},
				)

				continue
			}

			reg, ok := parseRegister(operand)

			if !ok {
				errs = append(errs, &InvalidRegisterError{operand.Position})
				continue
			}

			encoded[i+1] = reg

		case machine.OPERAND_IMMEDIATE:
			switch operand.Type {
			case TOKEN_LITERAL:
				literal, err := parseLiteral(operand)

				if err != nil {
					errs = append(errs, err)
				}

				encoded[i+1] = literal

			case TOKEN_IDENT:
				if addr, exists := labels[operand.Value]; exists {
					encoded[i+1] = addr
				} else {
					refs = append(
						refs, labelRef{operand.Value, i + 1, operand.Position},
					)
				}

			default:
				errs = append(
					errs,
					&InvalidOperandError{
						operand.Position,
						[]TokenType{TOKEN_LITERAL, TOKEN_IDENT},
						operand.Type,
					},
				)
			}
		}
	}

	return
}

func AssembleLS8Source(input io.Reader, symtable *SymTable) (result []byte, errs []error) {
	var labels = make(map[string]byte)
	var labelRefs []labelRef

	// Next address to assemble into, and the end of the assembled image
	var program int = 0
	var size int = 0

	var builder strings.Builder
	var scanner = bufio.NewScanner(input)

	var cursor = Cursor{Line: 1, Column: 0, Size: 0, Byte: 0}

	result = make([]byte, machine.MEMORY_SIZE)
	errs = make([]error, 0)

	if symtable != nil {
		if symtable.Symbols == nil {
			symtable.Symbols = make(map[byte]int64)
		}

		if symtable.Labels == nil {
			symtable.Labels = make(map[byte]string)
		}
	}

	nextLine := func(line string) {
		cursor.Line++
		cursor.Byte += int64(len(line) + 1)
		cursor.LineByte += int64(len(line) + 1)
	}

	// Process:
	// - Parse line
	// - Assemble line
	for scanner.Scan() {
		var tokens = make([]Token, 0, 4)
		var tokenStart int = 0
		var tokenType TokenType = TOKEN_NONE
		var separator *Cursor = nil

		var lineErrs = len(errs)

		line := scanner.Text()
		builder.Grow(len(line))

		cursor.Size = int64(len(line))

		flushToken := func() {
			if builder.Len() > 0 {
				tokens = append(tokens, Token{
					Type: tokenType,
					Position: Cursor{
						Line:     cursor.Line,
						Column:   tokenStart,
						Byte:     cursor.Byte + int64(tokenStart-1),
						Size:     int64(builder.Len()),
						LineByte: cursor.Byte,
					},
					Value: builder.String(),
				})
				builder.Reset()
			}

			tokenType = TOKEN_NONE
		}

		// Single character errors underline one column
		charPosition := func() Cursor {
			position := cursor
			position.Size = 1
			return position
		}

		// Parse Line:
		// - Gather tokens and their types
		// - Check for syntax errors
	scan:
		for column, char := range line {
			cursor.Column = column + 1

			if tokenType == TOKEN_NONE {
				tokenStart = cursor.Column
			}

			switch {
			// Whitespace
			case unicode.IsSpace(char):
				flushToken()
				continue

			// Comments
			case char == ';':
				flushToken()
				break scan

			// Operand Separator
			case char == ',':
				flushToken()
				position := charPosition()
				separator = &position
				continue

			// Label Declaration (i.e. LOOP:)
			case char == ':':
				if tokenType != TOKEN_IDENT {
					errs = append(errs, &UnexpectedCharacterError{charPosition(), char})
					continue
				}

				tokenType = TOKEN_LABEL
				flushToken()
				continue

			// Assembler Directives
			case char == '.':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_DIRECTIVE
				} else {
					errs = append(errs, &UnexpectedCharacterError{charPosition(), char})
				}

			// Base 10 Literal (i.e. #42)
			case char == '#':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				} else {
					errs = append(errs, &UnexpectedCharacterError{charPosition(), char})
				}

			// Numeric Literal (i.e. 42, 0x2A, 0b00101010)
			case unicode.IsDigit(char):
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				}

			// Underscore'd Identifier
			case char == '_':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_IDENT
				} else if tokenType == TOKEN_LITERAL {
					errs = append(errs, &UnexpectedCharacterError{charPosition(), char})
				}

			// Identifier
			case unicode.IsLetter(char):
				if char > unicode.MaxASCII {
					errs = append(errs, &OversizedCharacterError{charPosition()})
				}

				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_IDENT
				}

			default:
				if char > unicode.MaxASCII {
					errs = append(errs, &OversizedCharacterError{charPosition()})
				} else {
					errs = append(errs, &UnexpectedCharacterError{charPosition(), char})
				}
			}

			separator = nil
			builder.WriteRune(char)
		}

		flushToken()

		// A separator must be followed by an operand
		if separator != nil {
			errs = append(errs, &UnexpectedCharacterError{*separator, ','})
		}

		if len(tokens) == 0 {
			nextLine(line)
			continue
		}

		// Pass any potential assembler errors if we already had parser errors
		if len(errs) > lineErrs {
			nextLine(line)
			continue
		}

		// Assemble line
		// - Write instruction bytes to result
		// - Save label refs for unknown labels
		// - Type check instruction arguments
		var label *Token = nil
		var directive DirectiveType = DIRECTIVE_INVALID
		var instruction *machine.Instruction = nil
		var keyword *Token = nil
		var operands []Token

		rest := tokens

		if tokens[0].Type == TOKEN_LABEL {
			label = &tokens[0]
			rest = tokens[1:]
		} else if tokens[0].Type == TOKEN_IDENT {
			if _, exists := machine.LookupName(tokens[0].Value); !exists {
				label = &tokens[0]
				rest = tokens[1:]
			}
		}

		if label != nil {
			if _, exists := labels[label.Value]; exists {
				errs = append(
					errs, &RedeclaredLabelError{label.Position, label.Value},
				)
			} else if program >= machine.MEMORY_SIZE {
				errs = append(errs, &OversizedBinaryError{})
				return
			} else {
				labels[label.Value] = byte(program)
			}
		}

		// No need to assemble label-only statements
		if len(rest) == 0 {
			nextLine(line)
			continue
		}

		keyword = &rest[0]
		operands = rest[1:]

		switch keyword.Type {
		case TOKEN_DIRECTIVE:
			directive = parseDirective(keyword.Value)
		case TOKEN_IDENT:
			instruction, _ = machine.LookupName(keyword.Value)
		}

		if directive == DIRECTIVE_INVALID && instruction == nil {
			errs = append(
				errs,
				&UnknownIdentifierError{keyword.Position, keyword.Value},
			)

			nextLine(line)
			continue
		}

		var encoded []byte
		start := program

		switch directive {
		// .ORG addr
		case DIRECTIVE_ORG:
			if count := len(operands); count != 1 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 1, count},
				)

				break
			}

			if operands[0].Type != TOKEN_LITERAL {
				errs = append(
					errs,
					&InvalidOperandError{
						operands[0].Position,
						[]TokenType{TOKEN_LITERAL},
						operands[0].Type,
					},
				)

				break
			}

			addr, err := parseLiteral(&operands[0])

			if err != nil {
				errs = append(errs, err)
				break
			}

			if int(addr) < program {
				errs = append(
					errs,
					&BackwardsOriginError{
						operands[0].Position, program, int(addr),
					},
				)

				break
			}

			program = int(addr)

		// .DB value[, value...]
		case DIRECTIVE_DB:
			if len(operands) == 0 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 1, 0},
				)

				break
			}

			encoded = make([]byte, len(operands))

			for i := range operands {
				operand := &operands[i]

				switch operand.Type {
				case TOKEN_LITERAL:
					literal, err := parseLiteral(operand)

					if err != nil {
						errs = append(errs, err)
					}

					encoded[i] = literal

				case TOKEN_IDENT:
					if addr, exists := labels[operand.Value]; exists {
						encoded[i] = addr
					} else {
						labelRefs = append(
							labelRefs,
							labelRef{operand.Value, start + i, operand.Position},
						)
					}

				default:
					errs = append(
						errs,
						&InvalidOperandError{
							operand.Position,
							[]TokenType{TOKEN_LITERAL, TOKEN_IDENT},
							operand.Type,
						},
					)
				}
			}
		}

		if instruction != nil {
			var refs []labelRef
			var instErrs []error

			encoded, refs, instErrs = encodeInstruction(
				instruction, keyword, operands, labels,
			)

			errs = append(errs, instErrs...)

			for _, ref := range refs {
				ref.Addr += start
				labelRefs = append(labelRefs, ref)
			}
		}

		if len(encoded) > 0 {
			if program+len(encoded) > machine.MEMORY_SIZE {
				errs = append(errs, &OversizedBinaryError{})
				return
			}

			if symtable != nil {
				symtable.Symbols[byte(program)] = cursor.LineByte
			}

			copy(result[program:], encoded)
			program += len(encoded)

			if program > size {
				size = program
			}
		}

		nextLine(line)
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range labelRefs {
		addr, exists := labels[ref.Label]

		if !exists {
			errs = append(errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		result[ref.Addr] = addr
	}

	if symtable != nil {
		for label, addr := range labels {
			symtable.Labels[addr] = label
		}
	}

	result = result[:size]

	return
}
