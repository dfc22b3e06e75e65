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

type Instruction struct {
	Name     string
	Opcode   byte
	Operands []OperandType
	Exec     func(mc *Machine, a, b byte) error
}

// Every handler receives both operand bytes and ignores the ones it does not
// use. Handlers advance or overwrite the program counter themselves.
var dispatch = map[byte]*Instruction{
	OP_HLT:  {"HLT", OP_HLT, nil, execHalt},
	OP_LDI:  {"LDI", OP_LDI, []OperandType{OPERAND_REGISTER, OPERAND_IMMEDIATE}, execLoadImmediate},
	OP_PRN:  {"PRN", OP_PRN, []OperandType{OPERAND_REGISTER}, execPrint},
	OP_ADD:  {"ADD", OP_ADD, []OperandType{OPERAND_REGISTER, OPERAND_REGISTER}, execAdd},
	OP_MUL:  {"MUL", OP_MUL, []OperandType{OPERAND_REGISTER, OPERAND_REGISTER}, execMultiply},
	OP_PUSH: {"PUSH", OP_PUSH, []OperandType{OPERAND_REGISTER}, execPush},
	OP_POP:  {"POP", OP_POP, []OperandType{OPERAND_REGISTER}, execPop},
	OP_CALL: {"CALL", OP_CALL, []OperandType{OPERAND_REGISTER}, execCall},
	OP_RET:  {"RET", OP_RET, nil, execReturn},
}

// Lookup returns the instruction for an opcode.
func Lookup(opcode byte) (*Instruction, bool) {
	instruction, exists := dispatch[opcode]
	return instruction, exists
}

// LookupName finds an instruction by mnemonic, ignoring case.
func LookupName(name string) (*Instruction, bool) {
	for _, instruction := range dispatch {
		if strings.EqualFold(instruction.Name, name) {
			return instruction, true
		}
	}

	return nil, false
}

// Instructions returns the instruction set in opcode order.
func Instructions() []*Instruction {
	result := make([]*Instruction, 0, len(dispatch))

	for opcode := 0; opcode <= 0xFF; opcode++ {
		if instruction, exists := dispatch[byte(opcode)]; exists {
			result = append(result, instruction)
		}
	}

	return result
}

// Size is the encoded length in bytes.
func (inst *Instruction) Size() byte {
	return byte(1 + len(inst.Operands))
}

// Format renders the instruction in assembler syntax, i.e. LDI R0,8.
func (inst *Instruction) Format(a, b byte) string {
	values := [2]byte{a, b}
	operands := make([]string, len(inst.Operands))

	for i, operand := range inst.Operands {
		if operand == OPERAND_REGISTER {
			operands[i] = fmt.Sprintf("R%d", values[i])
		} else {
			operands[i] = fmt.Sprintf("%d", values[i])
		}
	}

	if len(operands) == 0 {
		return inst.Name
	}

	return inst.Name + " " + strings.Join(operands, ",")
}

// HLT  |00000001|                         | Halt
func execHalt(mc *Machine, _, _ byte) error {
	mc.State.Halted = true
	mc.State.Program++
	return nil
}

// LDI  |10000010|reg     |imm             | Load immediate
func execLoadImmediate(mc *Machine, reg, imm byte) error {
	if err := mc.SetRegister(reg, imm); err != nil {
		return err
	}

	mc.State.Program += 3
	return nil
}

// PRN  |01000111|reg     |                | Print register as decimal
func execPrint(mc *Machine, reg, _ byte) error {
	value, err := mc.Register(reg)

	if err != nil {
		return err
	}

	if mc.Devices != nil && mc.Devices.Display != nil {
		if _, err := fmt.Fprintln(mc.Devices.Display, value); err != nil {
			return err
		}

		if err := mc.Devices.Display.Flush(); err != nil {
			return err
		}
	}

	mc.State.Program += 2
	return nil
}

// ADD  |10100000|regA    |regB            | regA += regB
func execAdd(mc *Machine, regA, regB byte) error {
	if err := mc.ALU(ALU_ADD, regA, regB); err != nil {
		return err
	}

	mc.State.Program += 3
	return nil
}

// MUL  |10100010|regA    |regB            | regA *= regB
func execMultiply(mc *Machine, regA, regB byte) error {
	if err := mc.ALU(ALU_MUL, regA, regB); err != nil {
		return err
	}

	mc.State.Program += 3
	return nil
}

// PUSH |01000101|reg     |                | SP--, mem[SP] = reg
func execPush(mc *Machine, reg, _ byte) error {
	if _, err := mc.Register(reg); err != nil {
		return err
	}

	sp, err := mc.reserve()

	if err != nil {
		return err
	}

	// Read after SP moved, PUSH R7 stores the decremented pointer
	if _, err := mc.Write(sp, mc.State.Registers[reg]); err != nil {
		return err
	}

	mc.State.Program += 2
	return nil
}

// POP  |01000110|reg     |                | reg = mem[SP], SP++
func execPop(mc *Machine, reg, _ byte) error {
	if _, err := mc.Register(reg); err != nil {
		return err
	}

	value, err := mc.Read(mc.State.Registers[REG_SP])

	if err != nil {
		return err
	}

	mc.State.Registers[reg] = value
	mc.State.Registers[REG_SP]++
	mc.State.Program += 2
	return nil
}

// CALL |01010000|reg     |                | SP--, mem[SP] = PC+2, PC = reg
func execCall(mc *Machine, reg, _ byte) error {
	if _, err := mc.Register(reg); err != nil {
		return err
	}

	if err := mc.push(mc.State.Program + 2); err != nil {
		return err
	}

	mc.State.Program = mc.State.Registers[reg]
	return nil
}

// RET  |00010001|                         | PC = pop
func execReturn(mc *Machine, _, _ byte) error {
	addr, err := mc.pop()

	if err != nil {
		return err
	}

	mc.State.Program = addr
	return nil
}
