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

package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/cahaug/ls8/pkg/debugger"
	"github.com/cahaug/ls8/pkg/encoding"
	"github.com/cahaug/ls8/pkg/machine"
)

// command is one REPL verb. Run returns true when the machine should resume.
type command struct {
	Names []string
	Usage string
	Run   func(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool
}

var commands []command
var lastcmd []string
var stdin = bufio.NewScanner(os.Stdin)

func init() {
	commands = []command{
		{[]string{"b", "bp", "break"}, "break [add 0x##|list|rm #|clear]", debugBreak},
		{[]string{"w", "wp", "watch"}, "watch [add 0x## r|w|rw|list|rm #|clear]", debugWatch},
		{[]string{"r", "reg", "register"}, "register [R#|PC|SP 0x##]", debugReg},
		{[]string{"s", "src", "source"}, "source [0x##|label] [#]", debugSource},
		{[]string{"d", "dis", "disasm"}, "disasm [0x##|label] [#]", debugDisasm},
		{[]string{"m", "mem", "memory"}, "memory [0x##|label] [#]", debugMemory},
		{[]string{"l", "labels"}, "labels", debugLabels},
		{[]string{"j", "jmp", "jump"}, "jump 0x##|label", debugJump},
		{[]string{"set"}, "set 0x## 0x##", debugSet},
		{[]string{"dump"}, "dump", debugDump},
		{[]string{"save"}, "save file", debugSave},
		{[]string{"load"}, "load file", debugLoad},
		{[]string{"reset"}, "reset", debugReset},
		{[]string{"c", "continue"}, "continue", debugContinue},
		{[]string{"n", "next"}, "next", debugNext},
		{[]string{"q", "quit", "exit"}, "quit", debugQuit},
		{[]string{"clear"}, "clear", debugClear},
		{[]string{"h", "help"}, "help", debugHelp},
	}
}

func findCommand(name string) *command {
	for i := range commands {
		for _, alias := range commands[i].Names {
			if alias == name {
				return &commands[i]
			}
		}
	}

	return nil
}

// parseAddr accepts a label from the symbol table or a numeric literal.
func parseAddr(dbg *debugger.Debugger, arg string) (byte, error) {
	if addr, exists := dbg.FindLabel(arg); exists {
		return addr, nil
	}

	return encoding.DecodeLiteral(arg)
}

// parseRange reads the optional [addr] [count] arguments, defaulting to the
// program counter and count.
func parseRange(dbg *debugger.Debugger, mc *machine.Machine, args []string, count int) (byte, int, error) {
	addr := mc.State.Program

	if len(args) > 2 {
		return 0, 0, fmt.Errorf("want at most 2 arguments, have %d", len(args))
	}

	if len(args) > 0 {
		var err error

		if addr, err = parseAddr(dbg, args[0]); err != nil {
			return 0, 0, err
		}
	}

	if len(args) > 1 {
		var err error

		if count, err = strconv.Atoi(args[1]); err != nil {
			return 0, 0, err
		}
	}

	return addr, count, nil
}

func watchTypeName(wtype debugger.WatchpointType) string {
	switch wtype {
	case debugger.ReadWatch:
		return "read"
	case debugger.WriteWatch:
		return "write"
	default:
		return "readwrite"
	}
}

func parseWatchType(name string) (debugger.WatchpointType, bool) {
	switch name {
	case "r", "read":
		return debugger.ReadWatch, true
	case "w", "write":
		return debugger.WriteWatch, true
	case "rw", "readwrite":
		return debugger.ReadWriteWatch, true
	default:
		return 0, false
	}
}

func debugBreak(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "a", "add":
		if len(args) != 2 {
			log.Println("break add 0x##|label")
			break
		}

		addr, err := parseAddr(dbg, args[1])

		if err != nil {
			log.Println(err)
			break
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [0x%02x]\n", addr)
		}

	case "l", "ls", "list":
		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf("#%d: 0x%02x\n", i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		if len(args) != 2 {
			log.Println("break rm #")
			break
		}

		i, err := strconv.Atoi(args[1])

		if err == nil {
			err = dbg.RemoveBreakpoint(i)
		}

		if err != nil {
			log.Println(err)
			break
		}

		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", args[0])
	}

	return false
}

func debugWatch(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "a", "add":
		if len(args) != 3 {
			log.Println("watch add 0x##|label r|w|rw")
			break
		}

		addr, err := parseAddr(dbg, args[1])

		if err != nil {
			log.Println(err)
			break
		}

		wtype, ok := parseWatchType(args[2])

		if !ok {
			log.Printf("watch: '%s' is not r, w or rw\n", args[2])
			break
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [0x%02x] (%s)\n", addr, watchTypeName(wtype))
		}

	case "l", "ls", "list":
		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf("#%d: 0x%02x %s\n", i, watchpoint.Addr, watchTypeName(watchpoint.Type))
		}

	case "r", "rm", "remove":
		if len(args) != 2 {
			log.Println("watch rm #")
			break
		}

		i, err := strconv.Atoi(args[1])

		if err == nil {
			err = dbg.RemoveWatchpoint(i)
		}

		if err != nil {
			log.Println(err)
			break
		}

		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", args[0])
	}

	return false
}

func debugReg(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if len(args) == 0 {
		dbg.PrintRegisters(&mc.State)
		return false
	}

	if len(args) != 2 {
		log.Println(findCommand("register").Usage)
		return false
	}

	value, err := encoding.DecodeLiteral(args[1])

	if err != nil {
		log.Println(err)
		return false
	}

	name := strings.ToUpper(args[0])

	switch {
	case name == "PC":
		mc.State.Program = value
	case name == "SP":
		mc.State.Registers[machine.REG_SP] = value
	case len(name) == 2 && name[0] == 'R':
		if err := mc.SetRegister(name[1]-'0', value); err != nil {
			log.Println(err)
			return false
		}
	default:
		log.Printf("register: '%s' is not a register\n", args[0])
		return false
	}

	fmt.Printf("%s: 0x%02x\n", name, value)
	return false
}

func debugSource(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if addr, count, err := parseRange(dbg, mc, args, 3); err != nil {
		log.Println(err)
	} else {
		dbg.PrintSource(addr, count)
	}

	return false
}

func debugDisasm(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if addr, count, err := parseRange(dbg, mc, args, 8); err != nil {
		log.Println(err)
	} else {
		dbg.PrintDisasm(&mc.State, addr, count)
	}

	return false
}

func debugMemory(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if addr, count, err := parseRange(dbg, mc, args, 8); err != nil {
		log.Println(err)
	} else {
		dbg.PrintMem(&mc.State, addr, count)
	}

	return false
}

func debugLabels(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	dbg.PrintLabels()
	return false
}

func debugJump(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if len(args) != 1 {
		log.Println(findCommand("jump").Usage)
		return false
	}

	addr, err := parseAddr(dbg, args[0])

	if err != nil {
		log.Printf("jump: unable to find '%s'\n", args[0])
		return false
	}

	mc.State.Program = addr
	fmt.Printf("PC: 0x%02x\n", addr)
	return false
}

func debugSet(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if len(args) != 2 {
		log.Println(findCommand("set").Usage)
		return false
	}

	addr, err := parseAddr(dbg, args[0])

	if err != nil {
		log.Println(err)
		return false
	}

	value, err := encoding.DecodeLiteral(args[1])

	if err != nil {
		log.Println(err)
		return false
	}

	// Direct access keeps watchpoints from firing inside the REPL
	if int(addr) >= len(mc.State.Memory) {
		log.Printf("set: 0x%02x is outside memory\n", addr)
		return false
	}

	mc.State.Memory[addr] = value
	dbg.PrintMem(&mc.State, addr, 1)
	return false
}

func debugDump(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	spew.Fdump(os.Stdout, mc.State)
	return false
}

func debugSave(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if len(args) != 1 {
		log.Println(findCommand("save").Usage)
		return false
	}

	if err := writeSnapshot(mc, args[0]); err != nil {
		log.Println(err)
		return false
	}

	fmt.Printf("Snapshot written to %s\n", args[0])
	return false
}

func debugLoad(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if len(args) != 1 {
		log.Println(findCommand("load").Usage)
		return false
	}

	data, err := os.ReadFile(args[0])

	if err != nil {
		log.Println(err)
		return false
	}

	state, err := machine.UnmarshalSnapshot(data)

	if err == nil {
		err = mc.Restore(state)
	}

	if err != nil {
		log.Println(err)
		return false
	}

	fmt.Printf("Snapshot restored from %s\n", args[0])
	return false
}

func debugReset(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	if err := mc.Load(dbg.Program); err != nil {
		log.Println(err)
		return false
	}

	fmt.Println("Machine reset")
	return false
}

func debugContinue(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	dbg.Break = false
	return true
}

func debugNext(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	dbg.Break = true
	return true
}

func debugQuit(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	mc.State.Halted = true
	return true
}

func debugClear(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	fmt.Print("\033[H\033[2J")
	return false
}

func debugHelp(dbg *debugger.Debugger, mc *machine.Machine, args []string) bool {
	for _, cmd := range commands {
		fmt.Printf("%-18s %s\n", strings.Join(cmd.Names, ","), cmd.Usage)
	}

	return false
}

// debugREPL reads commands until one of them resumes the machine. An empty
// line repeats the previous command.
func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	for {
		fmt.Print(dbg.Prompt())

		if !stdin.Scan() {
			fmt.Println()
			mc.State.Halted = true
			return
		}

		args := strings.Fields(stdin.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}

			args = lastcmd
		} else {
			lastcmd = args
		}

		cmd := findCommand(args[0])

		if cmd == nil {
			log.Printf("'%s' is not a valid command, try help\n", args[0])
			continue
		}

		if cmd.Run(dbg, mc, args[1:]) {
			return
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break {
		fmt.Printf("\nBreakpoint at 0x%02x\n", mc.State.Program)
	}

	if dbg.Source != nil && dbg.SymTable != nil {
		dbg.PrintSource(mc.State.Program, 1)
	} else {
		dbg.PrintDisasm(&mc.State, mc.State.Program, 1)
	}

	debugREPL(dbg, mc)
}

func handleWatch(kind string, addr byte, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Printf("\nWatchpoint %s at 0x%02x\n", kind, addr)
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

func handleRead(addr byte, dbg *debugger.Debugger, mc *machine.Machine) {
	handleWatch("read", addr, dbg, mc)
}

func handleWrite(addr byte, dbg *debugger.Debugger, mc *machine.Machine) {
	handleWatch("write", addr, dbg, mc)
}
