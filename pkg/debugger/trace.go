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

package debugger

import (
	"fmt"
	"strings"

	"github.com/cahaug/ls8/pkg/machine"
)

func peek(memory []byte, addr int) byte {
	if addr < 0 || addr >= len(memory) {
		return 0
	}

	return memory[addr]
}

// FormatTrace renders the state as
//
//	TRACE: PC | OP A  B  | R0 R1 R2 R3 R4 R5 R6 R7
func FormatTrace(mc *machine.MachineState) string {
	var builder strings.Builder

	pc := int(mc.Program)

	fmt.Fprintf(
		&builder, "%02X | %02X %02X %02X |",
		mc.Program,
		peek(mc.Memory, pc),
		peek(mc.Memory, pc+1),
		peek(mc.Memory, pc+2),
	)

	for _, register := range mc.Registers {
		fmt.Fprintf(&builder, " %02X", register)
	}

	return builder.String()
}

func (tr *Tracer) Step(mc *machine.Machine) {
	prefix := "TRACE:"

	if tr.Color {
		prefix = ansiBold + prefix + ansiReset
	}

	fmt.Fprintf(tr.Output, "%s %s\n", prefix, FormatTrace(&mc.State))
}

func (tr *Tracer) Read(addr byte, mc *machine.Machine) {}

func (tr *Tracer) Write(addr byte, mc *machine.Machine) {}

func (chain Chain) Step(mc *machine.Machine) {
	for _, observer := range chain {
		observer.Step(mc)
	}
}

func (chain Chain) Read(addr byte, mc *machine.Machine) {
	for _, observer := range chain {
		observer.Read(addr, mc)
	}
}

func (chain Chain) Write(addr byte, mc *machine.Machine) {
	for _, observer := range chain {
		observer.Write(addr, mc)
	}
}

// Disassemble decodes the instruction at addr and returns its text and size.
// Bytes that are not opcodes decode as a one byte .DB directive.
func Disassemble(memory []byte, addr byte) (string, byte) {
	pc := int(addr)
	opcode := peek(memory, pc)

	instruction, exists := machine.Lookup(opcode)

	if !exists {
		return fmt.Sprintf(".DB 0b%08b", opcode), 1
	}

	return instruction.Format(peek(memory, pc+1), peek(memory, pc+2)),
		instruction.Size()
}
