package machine

import (
	"iter"
)

// Line is a loaded instruction with its source location.
type Line struct {
	LineNo int    // Source line number.
	Label  string // Label defined on this line, if any.
	Instruction
}

// Program is a loaded, immutable instruction list.
type Program struct {
	Lines []Line         // Instructions in source order.
	Label map[string]int // Map of labels to instruction indexes.
}

// State is the machine state between steps.
// The Registers are shared between a state and the states derived from it.
type State struct {
	PC        int    // Index of the next instruction.
	Halted    bool   // Set once the machine has halted.
	Registers *Store // Register file.
}

// Start returns the initial state for a register file.
func (prog *Program) Start(regs *Store) State {
	return State{
		Halted:    len(prog.Lines) == 0,
		Registers: regs,
	}
}

// Lookup finds the target of a jump operand.
func (prog *Program) Lookup(name string) (target Target, ok bool) {
	if IsHalt(name) {
		return TARGET_HALT, true
	}

	index, ok := prog.Label[name]
	target = Target(index)
	return
}

// Debug returns the line at an instruction index.
func (prog *Program) Debug(pc int) (line *Line, ok bool) {
	if pc < 0 || pc >= len(prog.Lines) {
		return
	}

	return &prog.Lines[pc], true
}

// All iterates over the instruction indexes and lines.
func (prog *Program) All() iter.Seq2[int, *Line] {
	return func(yield func(int, *Line) bool) {
		for n := range prog.Lines {
			if !yield(n, &prog.Lines[n]) {
				return
			}
		}
	}
}

func (prog *Program) jump(state State, target Target) State {
	if target == TARGET_HALT || int(target) < 0 || int(target) >= len(prog.Lines) {
		state.Halted = true
		return state
	}

	state.PC = int(target)
	return state
}

func (prog *Program) next(state State) State {
	return prog.jump(state, Target(state.PC+1))
}

// Step applies the instruction at the state's PC and returns the next state.
// Stepping a halted state returns it unchanged.
func (prog *Program) Step(state State) State {
	line, ok := prog.Debug(state.PC)
	if state.Halted || !ok {
		state.Halted = true
		return state
	}

	regs := state.Registers

	switch line.Kind {
	case OP_INC, OP_MANY:
		for _, reg := range line.Registers {
			regs.Inc(reg)
		}
	case OP_DEC:
		regs.Dec(line.Register())
	case OP_DECJZ:
		if !regs.Dec(line.Register()) {
			return prog.jump(state, line.Target)
		}
	}

	return prog.next(state)
}

// Run steps the state until the machine halts.
// A program that never halts never returns.
func (prog *Program) Run(state State) State {
	for !state.Halted {
		state = prog.Step(state)
	}

	return state
}
