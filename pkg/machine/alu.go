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

import (
	"fmt"
	"strings"
)

var aluNames = [...]string{
	ALU_ADD: "ADD",
	ALU_SUB: "SUB",
	ALU_MUL: "MUL",
	ALU_DIV: "DIV",
}

func (op AluOp) String() string {
	if int(op) < len(aluNames) {
		return aluNames[op]
	}

	return fmt.Sprintf("AluOp(%d)", uint(op))
}

// ParseAluOp resolves an operation name such as "SUB", ignoring case.
func ParseAluOp(name string) (AluOp, error) {
	for op, opName := range aluNames {
		if strings.EqualFold(opName, name) {
			return AluOp(op), nil
		}
	}

	return 0, &UnsupportedOperationError{name}
}

// ALU applies op to regA in place, using regB as the second operand.
// Arithmetic wraps modulo 256. SUB and DIV have no opcode and are only
// reachable through this call.
func (mc *Machine) ALU(op AluOp, regA, regB byte) error {
	a, err := mc.Register(regA)

	if err != nil {
		return err
	}

	b, err := mc.Register(regB)

	if err != nil {
		return err
	}

	var result byte

	switch op {
	case ALU_ADD:
		result = a + b
	case ALU_SUB:
		result = a - b
	case ALU_MUL:
		result = a * b
	case ALU_DIV:
		if b == 0 {
			return ErrDivideByZero
		}

		result = a / b
	default:
		return &UnsupportedOperationError{op.String()}
	}

	mc.State.Registers[regA] = result

	return nil
}
