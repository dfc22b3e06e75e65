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

package machine

const (
	MEMORY_SIZE    = 256
	REGISTER_COUNT = 8
)

// R7 holds the stack pointer. The stack grows down from the top of memory.
const REG_SP byte = 7

// Returned by Write. There is no failure value; faults are reported as errors.
const WRITE_OK byte = 0b00000001

const (
	OP_HLT  byte = 0b00000001
	OP_LDI  byte = 0b10000010
	OP_PRN  byte = 0b01000111
	OP_ADD  byte = 0b10100000
	OP_MUL  byte = 0b10100010
	OP_PUSH byte = 0b01000101
	OP_POP  byte = 0b01000110
	OP_CALL byte = 0b01010000
	OP_RET  byte = 0b00010001
)

const (
	OPERAND_REGISTER OperandType = iota
	OPERAND_IMMEDIATE
)

const (
	ALU_ADD AluOp = iota
	ALU_SUB
	ALU_MUL
	ALU_DIV
)
