// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tebeka/atexit"

	"github.com/ezrec/regmach/emulator"
	"github.com/ezrec/regmach/fixture"
	"github.com/ezrec/regmach/machine"
)

// open returns stdin for "-", otherwise the named file. Files are closed at exit.
func open(name string) (input io.Reader) {
	if name == "-" {
		return os.Stdin
	}

	inf, err := os.Open(name)
	if err != nil {
		atexit.Fatalf("%v: %v", name, err)
	}
	atexit.Register(func() { inf.Close() })

	return inf
}

func check(name string, verbose bool) {
	suite, err := fixture.Load(open(name))
	if err != nil {
		atexit.Fatalf("%v: %v", name, err)
	}
	suite.Verbose = verbose

	results := suite.Check()
	if fixture.Report(os.Stdout, results) != len(results) {
		atexit.Exit(1)
	}
}

func main() {
	var input string
	var repl bool
	var debug bool
	var exercises string
	var verbose bool

	flag.StringVar(&input, "i", "-", "Program input")
	flag.BoolVar(&repl, "repl", false, "Interactive REPL, no program")
	flag.BoolVar(&debug, "debug", false, "Debug the program interactively")
	flag.StringVar(&exercises, "check", "", "Exercise .yaml file to check")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	log.SetPrefix("regmach: ")

	if flag.NArg() != 0 {
		atexit.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(exercises) != 0 {
		check(exercises, verbose)
		atexit.Exit(0)
	}

	if repl {
		emu := emulator.NewEmulator(nil, nil)
		emu.Verbose = verbose
		emu.Input = os.Stdin
		emu.Output = os.Stdout
		if err := emu.Session(); err != nil {
			atexit.Fatal(err)
		}
		atexit.Exit(0)
	}

	asm := &machine.Assembler{Verbose: verbose}
	prog, regs, err := asm.Assemble(open(input))
	if err != nil {
		atexit.Fatalf("%v: %v", input, err)
	}

	if debug {
		if input == "-" {
			atexit.Fatalf("%v: -debug needs a program file, stdin is the console", os.Args[0])
		}
		emu := emulator.NewEmulator(prog, regs)
		emu.Verbose = verbose
		emu.Input = os.Stdin
		emu.Output = os.Stdout
		if err := emu.Session(); err != nil {
			atexit.Fatal(err)
		}
		atexit.Exit(0)
	}

	m := machine.NewMachine(prog, regs)
	m.Verbose = verbose
	m.Run()

	// Reloadable as a register line only while every value fits in
	// machine.MAX_REGISTER_BITS.
	fmt.Println(m.Registers())
	atexit.Exit(0)
}
