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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cahaug/ls8/pkg/machine"
)

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Interrupt.Swap(false) {
		dbg.Break = true
	}

	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr byte, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr byte, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// AddBreakpoint reports whether a new breakpoint was created.
func (dbg *Debugger) AddBreakpoint(addr byte) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

func (dbg *Debugger) RemoveBreakpoint(i int) error {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return errors.New("Invalid breakpoint number")
	}

	dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
	return nil
}

// AddWatchpoint reports whether a new watchpoint was created.
func (dbg *Debugger) AddWatchpoint(addr byte, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) error {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return errors.New("Invalid watchpoint number")
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
	return nil
}

// FindLabel returns the address of a label from the symbol table.
func (dbg *Debugger) FindLabel(name string) (byte, bool) {
	if dbg.SymTable == nil {
		return 0, false
	}

	for addr, label := range dbg.SymTable.Labels {
		if label == name {
			return addr, true
		}
	}

	return 0, false
}

func (dbg *Debugger) output() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

func (dbg *Debugger) bold(s string) string {
	if !dbg.Color {
		return s
	}

	return ansiBold + s + ansiReset
}

func (dbg *Debugger) dim(s string) string {
	if !dbg.Color {
		return s
	}

	return ansiDim + s + ansiReset
}

func (dbg *Debugger) Prompt() string {
	return dbg.dim("(dbg)") + " "
}

func (dbg *Debugger) PrintSource(addr byte, count int) {
	out := dbg.output()

	if dbg.Source == nil {
		fmt.Fprintln(out, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(out, "No instruction found at 0x%02x\n", addr)
		return
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(out, err)
		return
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		foundaddr := false
		for lineaddr, linebyte := range dbg.SymTable.Symbols {
			if linebyte == offset {
				fmt.Fprint(out, dbg.bold(fmt.Sprintf("[0x%02x]", lineaddr))+" ")
				foundaddr = true
				break
			}
		}

		if !foundaddr {
			fmt.Fprint(out, dbg.dim("~~~~~~")+" ")
		}

		fmt.Fprintln(out, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(out, err)
	}
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr byte, count int) {
	out := dbg.output()

	for i := 0; i < count && int(addr)+i < len(mc.Memory); i++ {
		cur := int(addr) + i

		if i == 0 {
			fmt.Fprint(out, dbg.bold(fmt.Sprintf("[0x%02x]", cur))+" ")
		} else if i%8 == 0 {
			fmt.Fprintln(out)
			fmt.Fprint(out, dbg.bold(fmt.Sprintf("[0x%02x]", cur))+" ")
		}

		result := mc.Memory[cur]

		if result == 0 {
			fmt.Fprint(out, dbg.dim(fmt.Sprintf("0x%02x", result))+" ")
		} else {
			fmt.Fprintf(out, "0x%02x ", result)
		}
	}

	fmt.Fprintln(out)
}

func (dbg *Debugger) PrintDisasm(mc *machine.MachineState, addr byte, count int) {
	out := dbg.output()
	cur := int(addr)

	for i := 0; i < count && cur < len(mc.Memory); i++ {
		text, size := Disassemble(mc.Memory, byte(cur))

		marker := "  "
		if byte(cur) == mc.Program {
			marker = "=>"
		}

		label := ""
		if dbg.SymTable != nil {
			if name, exists := dbg.SymTable.Labels[byte(cur)]; exists {
				label = dbg.dim(" ; " + name)
			}
		}

		fmt.Fprintf(
			out, "%s %s %s%s\n",
			marker, dbg.bold(fmt.Sprintf("[0x%02x]", cur)), text, label,
		)

		cur += int(size)
	}
}

func (dbg *Debugger) PrintRegisters(mc *machine.MachineState) {
	out := dbg.output()

	for i, register := range mc.Registers {
		fmt.Fprintf(out, "%s 0x%02x\t", dbg.bold(fmt.Sprintf("R%d:", i)), register)
		if i == (len(mc.Registers)-1)/2 {
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(
		out, "%s 0x%02x\t%s 0x%02x\n",
		dbg.bold("PC:"), mc.Program,
		dbg.bold("SP:"), mc.Registers[machine.REG_SP],
	)
}

func (dbg *Debugger) PrintLabels() {
	out := dbg.output()

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	keys := make([]int, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, int(addr))
	}

	sort.Ints(keys)

	for _, addr := range keys {
		fmt.Fprintf(
			out, "%s %s\n",
			dbg.bold(fmt.Sprintf("[0x%02x]", addr)),
			dbg.SymTable.Labels[byte(addr)],
		)
	}
}
