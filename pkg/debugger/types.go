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
	"io"
	"sync/atomic"

	"github.com/cahaug/ls8/pkg/assembler"
	"github.com/cahaug/ls8/pkg/machine"
)

type WatchpointType uint

type Watchpoint struct {
	Addr byte
	Type WatchpointType
}

type Breakpoint struct {
	Addr byte
}

type Debugger struct {
	// Break stops before the next instruction
	Break bool

	// Interrupt is set from other goroutines (i.e. on SIGINT) and consumed
	// by the next Step
	Interrupt atomic.Bool

	Breakpoints []Breakpoint
	Watchpoints []Watchpoint

	Source   io.ReadSeeker
	Program  []byte
	SymTable *assembler.SymTable

	Output io.Writer
	Color  bool

	HandleBreak func(*Debugger, *machine.Machine)
	HandleRead  func(byte, *Debugger, *machine.Machine)
	HandleWrite func(byte, *Debugger, *machine.Machine)
}

// Tracer writes one line of machine state before every instruction.
type Tracer struct {
	Output io.Writer
	Color  bool
}

// Chain forwards machine events to every observer in order.
type Chain []machine.MachineDebugger
