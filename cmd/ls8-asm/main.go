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
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cahaug/ls8/pkg/assembler"
	"github.com/cahaug/ls8/pkg/debugger"
	"github.com/cahaug/ls8/pkg/encoding"
	"github.com/cahaug/ls8/pkg/machine"
)

var helpvar bool
var debugvar bool
var outvar string

const usage = "ls8-asm [-debug] [-out outfile] filename"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'.ls8db'",
	)
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	flag.Parse()
}

// comments labels every instruction in the output with its disassembly.
func comments(program []byte) map[int]string {
	result := make(map[int]string)

	for addr := 0; addr < len(program); {
		opcode := program[addr]

		if _, exists := machine.Lookup(opcode); !exists {
			addr++
			continue
		}

		text, size := debugger.Disassemble(program, byte(addr))
		result[addr] = text
		addr += int(size)
	}

	return result
}

func printErrors(input io.ReadSeeker, errs []error) {
	for _, err := range errs {
		tokenErr, ok := err.(assembler.TokenError)

		if !ok || input == nil {
			log.Println(err)
			continue
		}

		cursor := tokenErr.GetPosition()

		if _, err := input.Seek(cursor.LineByte, io.SeekStart); err != nil {
			panic(err)
		}

		line, _ := bufio.NewReader(input).ReadString('\n')
		line = strings.TrimSuffix(line, "\n")

		size := int(cursor.Size)
		if size < 1 {
			size = 1
		}

		column := cursor.Column
		if column < 1 {
			column = 1
		}

		underlinefmt := fmt.Sprintf(
			"%% %ds%s",
			column,
			strings.Repeat("~", size-1),
		)

		log.Printf(
			"%s\n%s\n\033[31m%s\033[0m",
			err,
			line,
			fmt.Sprintf(underlinefmt, "^"),
		)
	}
}

func writeProgram(filename string, program []byte) error {
	file, err := os.Create(filename)

	if err != nil {
		return err
	}

	if err := encoding.EncodeProgram(file, program, comments(program)); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

func writeSymTable(filename string, symtable *assembler.SymTable) error {
	data, err := assembler.MarshalSymTable(symtable)

	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0666)
}

func ls8_asm() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	var infile string
	var input io.ReadSeeker
	var seekable io.ReadSeeker

	if stat, _ := os.Stdin.Stat(); len(args) == 0 && stat.Mode()&os.ModeCharDevice == 0 {
		input = os.Stdin
		log.SetPrefix("\033[1m<stdin>:\033[0m")

		if outvar == "" {
			outvar = "out.ls8"
		}
	} else {
		if len(args) != 1 {
			log.Println(usage)
			return 1
		}

		file, err := os.Open(args[0])

		if err != nil {
			log.Println(err)
			return 1
		}

		defer file.Close()

		filename := filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			log.Println(err)
			return 1
		} else if stat.IsDir() {
			log.Printf("%s is not a valid LS-8 assembly file", filename)
			return 1
		}

		input = file
		seekable = file
		infile = file.Name()
		log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m", filename))

		if outvar == "" {
			outvar = strings.TrimSuffix(
				filename, filepath.Ext(filename),
			) + ".ls8"
		}
	}

	var symtable assembler.SymTable
	var symtarget *assembler.SymTable = nil

	if debugvar {
		if infile != "" {
			var err error
			if symtable.Source, err = filepath.Abs(infile); err != nil {
				log.Println(err)
				symtable.Source = ""
			}
		}
		symtable.Symbols = make(map[byte]int64)
		symtable.Labels = make(map[byte]string)
		symtarget = &symtable
	}

	result, errs := assembler.AssembleLS8Source(input, symtarget)

	if len(errs) > 0 {
		printErrors(seekable, errs)
		return 1
	}

	if err := writeProgram(outvar, result); err != nil {
		log.Printf("Error writing %s: %v\n", outvar, err)
		return 1
	}

	if debugvar {
		filename := strings.TrimSuffix(outvar, filepath.Ext(outvar)) + ".ls8db"

		if err := writeSymTable(filename, &symtable); err != nil {
			log.Printf("Error writing %s: %v\n", filename, err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(ls8_asm())
}
