package machine

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strconv"
)

// Stop is the reason Debug returned.
type Stop int

//go:generate go tool stringer -linecomment -type=Stop
const (
	STOP_HALTED     = Stop(0) // halted
	STOP_BREAKPOINT = Stop(1) // breakpoint
)

// Machine is the simulation context for a loaded program.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Program *Program // Program being executed.
	Steps   int      // Steps taken since the last reset.

	state       State
	initial     *Store
	breakpoints map[int]bool
	arrived     bool // PC was set by NewMachine, Reset or GoTo; nothing executed since.
}

// NewMachine creates a machine at the start of a program.
// A nil program gives a machine with no instructions, for interactive use.
func NewMachine(prog *Program, regs *Store) (m *Machine) {
	if prog == nil {
		prog = &Program{}
	}
	if regs == nil {
		regs = NewStore()
	}

	m = &Machine{
		Program:     prog,
		initial:     regs.Clone(),
		breakpoints: map[int]bool{},
		arrived:     true,
	}
	m.state = prog.Start(regs)

	return
}

// Reset restores the initial registers and moves to the first instruction.
// Breakpoints are kept.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("machine: reset")
	}

	m.state = m.Program.Start(m.initial.Clone())
	m.Steps = 0
	m.arrived = true
}

// State returns the current machine state.
func (m *Machine) State() State {
	return m.state
}

// Registers returns the live register file.
func (m *Machine) Registers() *Store {
	return m.state.Registers
}

// ReplaceRegisters replaces the live register file.
func (m *Machine) ReplaceRegisters(regs *Store) {
	m.state.Registers = regs
}

// Halted is true once the machine has halted.
func (m *Machine) Halted() bool {
	return m.state.Halted
}

// PC returns the index of the next instruction.
func (m *Machine) PC() int {
	return m.state.PC
}

// Line returns the next line to execute, if the machine has not halted.
func (m *Machine) Line() (line *Line, ok bool) {
	if m.state.Halted {
		return
	}

	return m.Program.Debug(m.state.PC)
}

// Step executes one instruction. Returns true if the machine is halted.
func (m *Machine) Step() (halted bool) {
	if m.Verbose {
		if line, ok := m.Line(); ok {
			log.Printf("machine: %d: %v", line.LineNo, line.Format())
		}
	}

	if !m.state.Halted {
		m.Steps++
	}
	m.arrived = false
	m.state = m.Program.Step(m.state)

	return m.state.Halted
}

// Run executes until the machine halts.
func (m *Machine) Run() {
	for !m.Step() {
	}
}

// Debug executes until the machine halts, or stops at a breakpoint.
// A breakpoint at the PC set by NewMachine, Reset or GoTo stops before
// anything executes. Otherwise the instruction at the current PC always
// executes, so Debug can be resumed from a breakpoint.
func (m *Machine) Debug() (stop Stop) {
	if m.arrived && !m.state.Halted && m.breakpoints[m.state.PC] {
		m.arrived = false
		m.breakpointLog()
		return STOP_BREAKPOINT
	}

	for !m.Step() {
		if m.breakpoints[m.state.PC] {
			m.breakpointLog()
			return STOP_BREAKPOINT
		}
	}

	return STOP_HALTED
}

func (m *Machine) breakpointLog() {
	if m.Verbose {
		log.Printf("machine: breakpoint at %d", m.state.PC)
	}
}

// Execute applies an instruction to the registers, outside of the program.
// The PC is not changed. For OP_DECJZ, jump is true if the register was
// zero; the jump itself is not taken.
func (m *Machine) Execute(in Instruction) (jump bool) {
	regs := m.state.Registers

	switch in.Kind {
	case OP_INC, OP_MANY:
		for _, reg := range in.Registers {
			regs.Inc(reg)
		}
	case OP_DEC:
		regs.Dec(in.Register())
	case OP_DECJZ:
		jump = !regs.Dec(in.Register())
	}

	if m.Verbose {
		log.Printf("machine: execute %v", in)
	}

	return
}

// Resolve converts a label or instruction index into an instruction index.
func (m *Machine) Resolve(word string) (pc int, err error) {
	pc, err = strconv.Atoi(word)
	if err == nil {
		if pc < 0 || pc >= len(m.Program.Lines) {
			err = ErrTargetInvalid
		}
		return
	}
	err = nil

	pc, ok := m.Program.Label[word]
	if !ok {
		err = ErrLabelMissing(word)
	}

	return
}

// ToggleBreakpoint adds or removes a breakpoint. Returns true if the
// breakpoint is now set.
func (m *Machine) ToggleBreakpoint(word string) (set bool, err error) {
	pc, err := m.Resolve(word)
	if err != nil {
		return
	}

	set = !m.breakpoints[pc]
	if set {
		m.breakpoints[pc] = true
	} else {
		delete(m.breakpoints, pc)
	}

	return
}

// Breakpoints returns the instruction indexes with breakpoints, in order.
func (m *Machine) Breakpoints() []int {
	return slices.Sorted(maps.Keys(m.breakpoints))
}

// IsBreakpoint is true if the instruction index has a breakpoint.
func (m *Machine) IsBreakpoint(pc int) bool {
	return m.breakpoints[pc]
}

// GoTo moves the PC to a label or instruction index. HALT halts the machine.
func (m *Machine) GoTo(word string) (err error) {
	if IsHalt(word) {
		m.state.Halted = true
		return
	}

	pc, err := m.Resolve(word)
	if err != nil {
		return
	}

	m.state.PC = pc
	m.state.Halted = false
	m.arrived = true

	return
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	if line, ok := m.Line(); ok {
		text = fmt.Sprintf("   pc: %d (line %d) %v\n", m.state.PC, line.LineNo, line.Format())
	} else {
		text = "   pc: halted\n"
	}
	text += fmt.Sprintf("steps: %d\n", m.Steps)
	text += m.state.Registers.String() + "\n"

	return
}
