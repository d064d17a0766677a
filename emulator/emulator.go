// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator provides the interactive REPL and debugger sessions
// around a register machine.
package emulator

import (
	"io"
	"log"
	"math/big"

	"github.com/ezrec/regmach/machine"
)

// Mode is the session mode.
type Mode int

const (
	MODE_REPL  = Mode(1 << 0) // No program; registers are changed by hand.
	MODE_DEBUG = Mode(1 << 1) // A program is loaded and single stepped.
)

// Emulator state. Machine + console.
type Emulator struct {
	Verbose          bool // If set, enables verbose logging.
	*machine.Machine      // Reference to the machine simulation.

	Input  io.Reader // Session commands.
	Output io.Writer // Session responses.

	mode Mode
}

// NewEmulator creates a new emulator. With a nil program the emulator is
// in REPL mode, otherwise in debug mode.
func NewEmulator(prog *machine.Program, regs *machine.Store) (emu *Emulator) {
	emu = &Emulator{
		Machine: machine.NewMachine(prog, regs),
		Output:  io.Discard,
		mode:    MODE_DEBUG,
	}

	if prog == nil {
		emu.mode = MODE_REPL
	}

	return
}

// Mode returns the session mode.
func (emu *Emulator) Mode() Mode {
	return emu.mode
}

// StepOnce executes a single instruction and returns the resulting state.
func (emu *Emulator) StepOnce() machine.State {
	emu.Machine.Verbose = emu.Verbose

	emu.Machine.Step()

	return emu.Machine.State()
}

// Continue executes until a breakpoint or halt.
func (emu *Emulator) Continue() machine.Stop {
	emu.Machine.Verbose = emu.Verbose

	return emu.Machine.Debug()
}

func (emu *Emulator) mutate(in machine.Instruction) (jump bool, err error) {
	if emu.mode != MODE_REPL {
		err = ErrModeDebug
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %v", in)
	}

	jump = emu.Machine.Execute(in)
	return
}

// Inc increments a register. REPL mode only.
func (emu *Emulator) Inc(reg machine.Index) (err error) {
	_, err = emu.mutate(machine.MakeInc(reg))
	return
}

// Dec decrements a register, saturating at zero. REPL mode only.
func (emu *Emulator) Dec(reg machine.Index) (err error) {
	_, err = emu.mutate(machine.MakeDec(reg))
	return
}

// DecNoJump decrements a register as "decjz" would, returning true if the
// register was already zero. The jump is never taken. REPL mode only.
func (emu *Emulator) DecNoJump(reg machine.Index) (zero bool, err error) {
	return emu.mutate(machine.MakeDecJumpZero(reg, machine.TARGET_HALT, ""))
}

// SetRegisters replaces the registers with new initial values.
// REPL mode only.
func (emu *Emulator) SetRegisters(values []*big.Int) (err error) {
	if emu.mode != MODE_REPL {
		err = ErrModeDebug
		return
	}

	regs, err := machine.Seed(values)
	if err != nil {
		return
	}

	emu.Machine.ReplaceRegisters(regs)
	return
}
