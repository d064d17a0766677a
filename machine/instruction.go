package machine

import (
	"fmt"
	"strings"
)

// Kind is the instruction type.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	OP_INC   = Kind(0) // inc
	OP_DECJZ = Kind(1) // decjz
	OP_MANY  = Kind(2) // many
	OP_DEC   = Kind(3) // dec
)

// Target is a resolved jump target: an instruction index, or TARGET_HALT.
type Target int

const (
	TARGET_HALT = Target(-1) // Terminates the machine.
)

// IsHalt is true for the terminal sentinel.
func IsHalt(name string) bool {
	return strings.EqualFold(name, "HALT")
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Kind      Kind    // Instruction type.
	Registers []Index // Operands. One for all kinds except OP_MANY.
	Target    Target  // Jump target of OP_DECJZ.
	Jump      string  // Source spelling of Target, if any.
}

// MakeInc returns "inc r".
func MakeInc(reg Index) Instruction {
	return Instruction{Kind: OP_INC, Registers: []Index{reg}}
}

// MakeDecJumpZero returns "decjz r label".
func MakeDecJumpZero(reg Index, target Target, label string) Instruction {
	return Instruction{Kind: OP_DECJZ, Registers: []Index{reg}, Target: target, Jump: label}
}

// MakeMany returns "many r...".
func MakeMany(regs ...Index) Instruction {
	return Instruction{Kind: OP_MANY, Registers: regs}
}

// MakeDec returns the interactive-only "dec r".
func MakeDec(reg Index) Instruction {
	return Instruction{Kind: OP_DEC, Registers: []Index{reg}}
}

// Register returns the first register operand.
func (in Instruction) Register() Index {
	if len(in.Registers) == 0 {
		return 0
	}
	return in.Registers[0]
}

// String returns the instruction in source form.
func (in Instruction) String() string {
	words := []string{in.Kind.String()}
	for _, reg := range in.Registers {
		words = append(words, reg.String())
	}

	if in.Kind == OP_DECJZ {
		switch {
		case in.Target == TARGET_HALT:
			words = append(words, "HALT")
		case len(in.Jump) != 0:
			words = append(words, in.Jump)
		default:
			words = append(words, fmt.Sprintf("@%d", int(in.Target)))
		}
	}

	return strings.Join(words, " ")
}
