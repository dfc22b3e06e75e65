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
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/cahaug/ls8/pkg/assembler"
	"github.com/cahaug/ls8/pkg/config"
	"github.com/cahaug/ls8/pkg/debugger"
	"github.com/cahaug/ls8/pkg/encoding"
	"github.com/cahaug/ls8/pkg/machine"
)

type options struct {
	help     bool
	debug    bool
	trace    bool
	config   string
	snapshot string
}

const usage = "ls8 [-debug] [-trace] [-config file] [-snapshot file] filename"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func parseFlags(args []string, opts *options) (*flag.FlagSet, error) {
	flags := flag.NewFlagSet("ls8", flag.ContinueOnError)
	flags.SetOutput(log.Writer())

	flags.BoolVar(&opts.help, "help", false, "Displays command usage")
	flags.BoolVar(&opts.debug, "debug", false, "Runs the machine in a debug CLI")
	flags.BoolVar(
		&opts.trace, "trace", false,
		"Prints the machine state before every instruction",
	)
	flags.StringVar(
		&opts.config, "config", "",
		"Specifies a TOML configuration file",
	)
	flags.StringVar(
		&opts.snapshot, "snapshot", "",
		"Specifies a file to write the final machine state to",
	)

	return flags, flags.Parse(args)
}

func loadSymTable(dbg *debugger.Debugger, program string) {
	filename := filepath.Join(
		filepath.Dir(program),
		strings.TrimSuffix(filepath.Base(program), filepath.Ext(program))+".ls8db",
	)

	data, err := os.ReadFile(filename)

	if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return
	}

	symtable, err := assembler.UnmarshalSymTable(data)

	if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return
	}

	dbg.SymTable = symtable
}

func writeSnapshot(mc *machine.Machine, filename string) error {
	state := mc.Snapshot()
	data, err := machine.MarshalSnapshot(&state)

	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0666)
}

// ls8 runs the machine for the command line args and returns the exit
// status. Program output and traces go to stdout.
func ls8(args []string, stdout io.Writer) int {
	var opts options

	flags, err := parseFlags(args, &opts)

	if err != nil {
		return 1
	}

	if opts.help {
		fmt.Fprintln(stdout, usage)
		flags.SetOutput(stdout)
		flags.PrintDefaults()
		return 0
	}

	args = flags.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	cfg := config.Default()

	if opts.config != "" {
		if cfg, err = config.Load(opts.config); err != nil {
			log.Println(err)
			return 1
		}
	}

	if opts.trace {
		cfg.Trace.Enabled = true
	}

	logger := btclog.NewBackend(os.Stderr).Logger("LS8")
	logger.SetLevel(cfg.LogLevel())
	machine.UseLogger(logger)

	file, err := os.Open(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	program, err := encoding.DecodeProgram(file)
	file.Close()

	if err != nil {
		log.Println(err)
		return 1
	}

	var mc machine.Machine
	var dh machine.DeviceHandler
	dh.Display = bufio.NewWriter(stdout)
	mc.Devices = &dh

	mc.State.Reset(cfg.Machine.Memory)

	if err := mc.Load(program); err != nil {
		log.Println(err)
		return 1
	}

	color := useColor(cfg.Trace.Color, stdout)

	var observers debugger.Chain

	if cfg.Trace.Enabled {
		observers = append(
			observers, &debugger.Tracer{Output: stdout, Color: color},
		)
	}

	if opts.debug {
		dbg := &debugger.Debugger{
			Break:       true,
			Program:     program,
			Output:      os.Stdout,
			Color:       color,
			HandleBreak: handleBreak,
			HandleRead:  handleRead,
			HandleWrite: handleWrite,
		}

		loadSymTable(dbg, args[0])

		if dbg.SymTable != nil && dbg.SymTable.Source != "" {
			if file, err := os.Open(dbg.SymTable.Source); err == nil {
				dbg.Source = file
				defer file.Close()
			} else {
				log.Println("Error loading source file")
				log.Println(err)
			}
		}

		c := make(chan os.Signal, 1)
		defer close(c)

		signal.Notify(c, os.Interrupt)
		defer signal.Stop(c)

		go func() {
			for range c {
				fmt.Println()
				dbg.Interrupt.Store(true)
			}
		}()

		observers = append(observers, dbg)
	}

	if len(observers) == 1 {
		mc.Debugger = observers[0]
	} else if len(observers) > 1 {
		mc.Debugger = observers
	}

	runErr := mc.Run()

	if opts.snapshot != "" {
		if err := writeSnapshot(&mc, opts.snapshot); err != nil {
			log.Println("Error writing snapshot")
			log.Println(err)
			return 1
		}
	}

	if runErr != nil {
		log.Println(runErr)
		return 1
	}

	return 0
}

func main() {
	os.Exit(ls8(os.Args[1:], os.Stdout))
}
