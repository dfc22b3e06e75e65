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

package debugger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cahaug/ls8/pkg/assembler"
	"github.com/cahaug/ls8/pkg/debugger"
	"github.com/cahaug/ls8/pkg/machine"
)

const testSource = `LDI R0, 8
loop:
PRN R0
HLT
`

func newTestMachine(t *testing.T, source string) (*machine.Machine, *assembler.SymTable) {
	var symtable assembler.SymTable

	program, errs := assembler.AssembleLS8Source(strings.NewReader(source), &symtable)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	var mc machine.Machine

	if err := mc.Load(program); err != nil {
		t.Fatal(err)
	}

	return &mc, &symtable
}

func TestFormatTrace(t *testing.T) {
	mc, _ := newTestMachine(t, testSource)
	mc.State.Registers[0] = 0x2A

	want := "00 | 82 00 08 | 2A 00 00 00 00 00 00 FF"

	if have := debugger.FormatTrace(&mc.State); have != want {
		t.Fatalf("want:%q\nhave:%q", want, have)
	}

	// Operand bytes past the end of memory read as zero
	mc.State.Reset(2)
	mc.State.Memory[1] = 0x01
	mc.State.Program = 0x01

	want = "01 | 01 00 00 | 00 00 00 00 00 00 00 01"

	if have := debugger.FormatTrace(&mc.State); have != want {
		t.Fatalf("want:%q\nhave:%q", want, have)
	}
}

func TestTracer(t *testing.T) {
	var output bytes.Buffer

	mc, _ := newTestMachine(t, testSource)
	mc.Debugger = &debugger.Tracer{Output: &output}

	if err := mc.Run(); err != nil {
		t.Fatal(err)
	}

	want := "TRACE: 00 | 82 00 08 | 00 00 00 00 00 00 00 FF\n" +
		"TRACE: 03 | 47 00 01 | 08 00 00 00 00 00 00 FF\n" +
		"TRACE: 05 | 01 00 00 | 08 00 00 00 00 00 00 FF\n"

	if have := output.String(); have != want {
		t.Fatalf("want:\n%s\nhave:\n%s", want, have)
	}
}

func TestDisassemble(t *testing.T) {
	memory := []byte{
		0b10000010, 0x01, 0x2A, // LDI R1,42
		0b10100010, 0x01, 0x02, // MUL R1,R2
		0b00010001,             // RET
		0b11111111,             // not an opcode
		0b01000111,             // PRN past the end
	}

	tests := []struct {
		Addr byte
		Text string
		Size byte
	}{
		{0x00, "LDI R1,42", 3},
		{0x03, "MUL R1,R2", 3},
		{0x06, "RET", 1},
		{0x07, ".DB 0b11111111", 1},
		{0x08, "PRN R0", 2},
	}

	for _, test := range tests {
		text, size := debugger.Disassemble(memory, test.Addr)

		if text != test.Text || size != test.Size {
			t.Errorf(
				"Disassembly mismatch at 0x%02x\nwant:%s (%d)\nhave:%s (%d)",
				test.Addr,
				test.Text,
				test.Size,
				text,
				size,
			)
		}
	}
}

func TestBreakpoints(t *testing.T) {
	var dbg debugger.Debugger
	var hits []byte

	dbg.HandleBreak = func(dbg *debugger.Debugger, mc *machine.Machine) {
		hits = append(hits, mc.State.Program)
	}

	if !dbg.AddBreakpoint(0x03) {
		t.Fatal("AddBreakpoint refused a new breakpoint")
	}

	if dbg.AddBreakpoint(0x03) {
		t.Fatal("AddBreakpoint accepted a duplicate breakpoint")
	}

	mc, _ := newTestMachine(t, testSource)
	mc.Debugger = &dbg

	if err := mc.Run(); err != nil {
		t.Fatal(err)
	}

	if len(hits) != 1 || hits[0] != 0x03 {
		t.Fatalf("want:[3]\nhave:%v", hits)
	}

	if err := dbg.RemoveBreakpoint(1); err == nil {
		t.Error("RemoveBreakpoint accepted an invalid index")
	}

	if err := dbg.RemoveBreakpoint(0); err != nil || len(dbg.Breakpoints) != 0 {
		t.Errorf("RemoveBreakpoint failed: %v", err)
	}
}

func TestBreakHalts(t *testing.T) {
	var dbg debugger.Debugger

	dbg.Break = true
	dbg.HandleBreak = func(dbg *debugger.Debugger, mc *machine.Machine) {
		mc.State.Halted = true
	}

	mc, _ := newTestMachine(t, testSource)
	mc.Debugger = &dbg

	if err := mc.Run(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != 0x00 || mc.State.Registers[0] != 0x00 {
		t.Fatalf("Machine ran past a break that halted it\nPC:0x%02x", mc.State.Program)
	}
}

func TestInterrupt(t *testing.T) {
	var dbg debugger.Debugger
	var breaks int

	dbg.HandleBreak = func(dbg *debugger.Debugger, mc *machine.Machine) {
		breaks++
		dbg.Break = false
	}

	mc, _ := newTestMachine(t, testSource)
	mc.Debugger = &dbg

	dbg.Interrupt.Store(true)

	if err := mc.Run(); err != nil {
		t.Fatal(err)
	}

	if breaks != 1 {
		t.Fatalf("want:1 break\nhave:%d", breaks)
	}

	if dbg.Interrupt.Load() {
		t.Error("Interrupt was not consumed")
	}
}

func TestWatchpoints(t *testing.T) {
	var dbg debugger.Debugger
	var reads, writes []byte

	dbg.HandleRead = func(addr byte, dbg *debugger.Debugger, mc *machine.Machine) {
		reads = append(reads, addr)
	}

	dbg.HandleWrite = func(addr byte, dbg *debugger.Debugger, mc *machine.Machine) {
		writes = append(writes, addr)
	}

	// PUSH writes 0xFE, POP reads it back
	dbg.AddWatchpoint(0xFE, debugger.ReadWriteWatch)
	dbg.AddWatchpoint(0x00, debugger.WriteWatch)

	if dbg.AddWatchpoint(0xFE, debugger.ReadWriteWatch) {
		t.Fatal("AddWatchpoint accepted a duplicate watchpoint")
	}

	mc, _ := newTestMachine(t, "PUSH R0\nPOP R1\nHLT\n")
	mc.Debugger = &dbg

	if err := mc.Run(); err != nil {
		t.Fatal(err)
	}

	if len(reads) != 1 || reads[0] != 0xFE {
		t.Errorf("Read watch mismatch\nwant:[254]\nhave:%v", reads)
	}

	if len(writes) != 1 || writes[0] != 0xFE {
		t.Errorf("Write watch mismatch\nwant:[254]\nhave:%v", writes)
	}

	if err := dbg.RemoveWatchpoint(5); err == nil {
		t.Error("RemoveWatchpoint accepted an invalid index")
	}

	if err := dbg.RemoveWatchpoint(0); err != nil || len(dbg.Watchpoints) != 1 {
		t.Errorf("RemoveWatchpoint failed: %v", err)
	}
}

func TestChain(t *testing.T) {
	var first, second bytes.Buffer
	var breaks int

	dbg := &debugger.Debugger{
		HandleBreak: func(dbg *debugger.Debugger, mc *machine.Machine) {
			breaks++
		},
	}

	dbg.AddBreakpoint(0x05)

	mc, _ := newTestMachine(t, testSource)
	mc.Debugger = debugger.Chain{
		&debugger.Tracer{Output: &first},
		dbg,
		&debugger.Tracer{Output: &second},
	}

	if err := mc.Run(); err != nil {
		t.Fatal(err)
	}

	if first.String() != second.String() || strings.Count(first.String(), "\n") != 3 {
		t.Errorf("Tracers saw different steps\nfirst:\n%s\nsecond:\n%s", &first, &second)
	}

	if breaks != 1 {
		t.Errorf("want:1 break\nhave:%d", breaks)
	}
}

func TestFindLabel(t *testing.T) {
	_, symtable := newTestMachine(t, testSource)

	dbg := debugger.Debugger{SymTable: symtable}

	if addr, ok := dbg.FindLabel("loop"); !ok || addr != 0x03 {
		t.Errorf("want:0x03 true\nhave:0x%02x %t", addr, ok)
	}

	if _, ok := dbg.FindLabel("missing"); ok {
		t.Error("FindLabel found a missing label")
	}

	dbg.SymTable = nil

	if _, ok := dbg.FindLabel("loop"); ok {
		t.Error("FindLabel found a label without a symbol table")
	}
}

func TestPrint(t *testing.T) {
	var output bytes.Buffer

	mc, symtable := newTestMachine(t, testSource)

	dbg := debugger.Debugger{
		Source:   strings.NewReader(testSource),
		SymTable: symtable,
		Output:   &output,
	}

	dbg.PrintDisasm(&mc.State, 0x00, 3)

	want := "=> [0x00] LDI R0,8\n" +
		"   [0x03] PRN R0 ; loop\n" +
		"   [0x05] HLT\n"

	if have := output.String(); have != want {
		t.Errorf("PrintDisasm mismatch\nwant:\n%s\nhave:\n%s", want, have)
	}

	output.Reset()
	dbg.PrintSource(0x03, 2)

	want = "[0x03] PRN R0\n" +
		"[0x05] HLT\n"

	if have := output.String(); have != want {
		t.Errorf("PrintSource mismatch\nwant:\n%s\nhave:\n%s", want, have)
	}

	output.Reset()
	dbg.PrintMem(&mc.State, 0x00, 9)

	want = "[0x00] 0x82 0x00 0x08 0x47 0x00 0x01 0x00 0x00 \n" +
		"[0x08] 0x00 \n"

	if have := output.String(); have != want {
		t.Errorf("PrintMem mismatch\nwant:\n%s\nhave:\n%s", want, have)
	}

	output.Reset()
	dbg.PrintLabels()

	if have := output.String(); have != "[0x03] loop\n" {
		t.Errorf("PrintLabels mismatch\nwant:[0x03] loop\nhave:%s", have)
	}

	output.Reset()
	dbg.PrintRegisters(&mc.State)

	if have := output.String(); !strings.Contains(have, "PC: 0x00\tSP: 0xff") {
		t.Errorf("PrintRegisters is missing PC and SP\nhave:\n%s", have)
	}
}
