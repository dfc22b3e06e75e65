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
	"bufio"
	"errors"
	"fmt"
)

type OperandType uint
type AluOp uint

type DeviceHandler struct {
	Display *bufio.Writer
}

type MachineState struct {
	Registers [REGISTER_COUNT]byte `cbor:"registers"`
	Program   byte                 `cbor:"program"`
	Halted    bool                 `cbor:"halted"`
	Memory    []byte               `cbor:"memory"`
}

// MachineDebugger observes execution. Step is called before every fetch,
// Read and Write after every checked memory access.
type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr byte, mc *Machine)
	Write(addr byte, mc *Machine)
}

type Machine struct {
	Devices  *DeviceHandler
	State    MachineState
	Debugger MachineDebugger
}

var (
	ErrHalted               = errors.New("Machine is halted")
	ErrDivideByZero         = errors.New("Division by zero")
	ErrUnsupportedOperation = errors.New("Unsupported ALU operation")
)

type UnknownOpcodeError struct {
	Opcode byte
	Addr   byte
}

func (err *UnknownOpcodeError) Error() string {
	return fmt.Sprintf(
		"Unknown opcode 0b%08b (0x%02x) at 0x%02x", err.Opcode, err.Opcode, err.Addr,
	)
}

type MemoryFaultError struct {
	Addr int
	Size int
}

func (err *MemoryFaultError) Error() string {
	return fmt.Sprintf(
		"Memory access out of range\n\twant:< 0x%02x\n\thave:0x%02x",
		err.Size,
		err.Addr,
	)
}

type InvalidRegisterError struct {
	Index byte
}

func (err *InvalidRegisterError) Error() string {
	return fmt.Sprintf(
		"Invalid register R%d\n\twant:< %d\n\thave:%d",
		err.Index,
		REGISTER_COUNT,
		err.Index,
	)
}

type UnsupportedOperationError struct {
	Name string
}

func (err *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("Unsupported ALU operation '%s'", err.Name)
}

func (err *UnsupportedOperationError) Unwrap() error {
	return ErrUnsupportedOperation
}

type ProgramTooLargeError struct {
	Size     int
	Received int
}

func (err *ProgramTooLargeError) Error() string {
	return fmt.Sprintf(
		"Program exceeds memory size\n\twant:<= %d\n\thave:%d",
		err.Size,
		err.Received,
	)
}
