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
)

// Reset zeroes memory and registers and points the stack at the last
// address. Sizes outside 1..MEMORY_SIZE are a programming error.
func (mc *MachineState) Reset(size int) {
	if size < 1 || size > MEMORY_SIZE {
		panic("Invalid memory size")
	}

	for i := range mc.Registers {
		mc.Registers[i] = 0x00
	}

	if len(mc.Memory) == size {
		for i := range mc.Memory {
			mc.Memory[i] = 0x00
		}
	} else {
		mc.Memory = make([]byte, size)
	}

	mc.Program = 0x00
	mc.Halted = false
	mc.Registers[REG_SP] = byte(size - 1)
}

// Load resets the machine and copies program into memory from address 0.
// A machine that was never reset gets MEMORY_SIZE bytes of memory.
func (mc *Machine) Load(program []byte) error {
	size := len(mc.State.Memory)

	if size == 0 {
		size = MEMORY_SIZE
	}

	if len(program) > size {
		return &ProgramTooLargeError{size, len(program)}
	}

	mc.State.Reset(size)
	copy(mc.State.Memory, program)

	log.Debugf("Loaded %d bytes into %d bytes of memory", len(program), size)

	return nil
}

func (mc *Machine) Read(addr byte) (byte, error) {
	if int(addr) >= len(mc.State.Memory) {
		return 0, &MemoryFaultError{int(addr), len(mc.State.Memory)}
	}

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr], nil
}

func (mc *Machine) Write(addr byte, value byte) (byte, error) {
	if int(addr) >= len(mc.State.Memory) {
		return 0, &MemoryFaultError{int(addr), len(mc.State.Memory)}
	}

	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}

	return WRITE_OK, nil
}

// peek reads memory without bounds faults or debugger hooks.
func (mc *Machine) peek(addr byte) byte {
	if int(addr) >= len(mc.State.Memory) {
		return 0
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) Register(index byte) (byte, error) {
	if int(index) >= REGISTER_COUNT {
		return 0, &InvalidRegisterError{index}
	}

	return mc.State.Registers[index], nil
}

func (mc *Machine) SetRegister(index byte, value byte) error {
	if int(index) >= REGISTER_COUNT {
		return &InvalidRegisterError{index}
	}

	mc.State.Registers[index] = value

	return nil
}

// reserve moves SP down one slot and returns the slot address. SP stays put
// when the slot is outside memory.
func (mc *Machine) reserve() (byte, error) {
	sp := mc.State.Registers[REG_SP] - 1

	if int(sp) >= len(mc.State.Memory) {
		return 0, &MemoryFaultError{int(sp), len(mc.State.Memory)}
	}

	mc.State.Registers[REG_SP] = sp

	return sp, nil
}

func (mc *Machine) push(value byte) error {
	sp, err := mc.reserve()

	if err != nil {
		return err
	}

	_, err = mc.Write(sp, value)

	return err
}

func (mc *Machine) pop() (byte, error) {
	value, err := mc.Read(mc.State.Registers[REG_SP])

	if err != nil {
		return 0, err
	}

	mc.State.Registers[REG_SP]++

	return value, nil
}

// Step runs one fetch-decode-execute cycle.
func (mc *Machine) Step() error {
	if mc.State.Halted {
		return ErrHalted
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)

		// The debugger may have stopped the machine
		if mc.State.Halted {
			return nil
		}
	}

	addr := mc.State.Program
	opcode, err := mc.Read(addr)

	if err != nil {
		log.Errorf("Fetch at 0x%02x failed: %v", addr, err)
		return err
	}

	// Both operand slots are read for every instruction so observers see the
	// same bytes regardless of the opcode
	operandA := mc.peek(addr + 1)
	operandB := mc.peek(addr + 2)

	instruction, exists := dispatch[opcode]

	if !exists {
		err := &UnknownOpcodeError{opcode, addr}
		log.Errorf("%v", err)
		return err
	}

	if end := int(addr) + len(instruction.Operands); end >= len(mc.State.Memory) {
		return &MemoryFaultError{end, len(mc.State.Memory)}
	}

	log.Tracef("0x%02x: %s", addr, instruction.Format(operandA, operandB))

	if err := instruction.Exec(mc, operandA, operandB); err != nil {
		log.Errorf("%s at 0x%02x failed: %v", instruction.Name, addr, err)
		return fmt.Errorf("%s at 0x%02x: %w", instruction.Name, addr, err)
	}

	if mc.State.Halted {
		log.Debugf("Halted at 0x%02x", addr)
	}

	return nil
}

// Run steps the machine until it halts or faults.
func (mc *Machine) Run() error {
	for !mc.State.Halted {
		if err := mc.Step(); err != nil {
			return err
		}
	}

	return nil
}
