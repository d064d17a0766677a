package machine

import (
	"log"
	"math/big"
	"strings"
	"unicode"
)

const (
	MAX_REGISTER_BITS = 128 // Largest initial register value, in bits.
)

// Record is a single parsed instruction line.
type Record struct {
	LineNo   int      // Source line number.
	Line     string   // Source text, for error reporting.
	Label    string   // Label defined on the line, if any.
	Keyword  string   // Instruction keyword.
	Operands []string // Instruction operands.
}

// Loader converts records into a Program.
type Loader struct {
	Verbose bool // If set, verbosely logs the loader actions.
}

// Load resolves records and initial register values with a default Loader.
func Load(records []Record, initial []*big.Int) (prog *Program, regs *Store, err error) {
	return (&Loader{}).Load(records, initial)
}

// ValidLabel is true if name can be used as a label.
func ValidLabel(name string) bool {
	return len(name) != 0 && !strings.ContainsFunc(name, func(r rune) bool {
		return r == ':' || r == '#' || unicode.IsSpace(r)
	})
}

// Seed builds the initial register file, validating each value.
func Seed(initial []*big.Int) (regs *Store, err error) {
	for _, value := range initial {
		if value == nil {
			continue
		}
		if value.Sign() < 0 || value.BitLen() > MAX_REGISTER_BITS {
			err = ErrRegisterValueTooLarge
			return
		}
	}

	regs = NewStore(initial...)
	return
}

// decode converts a record to an instruction. The jump target is left
// unresolved.
func decode(rec *Record) (in Instruction, err error) {
	args := rec.Operands

	registers := func(lo, hi int) (regs []Index, err error) {
		if len(args) < lo {
			err = ErrOpcodeMissing
			return
		}
		if hi >= 0 && len(args) > hi {
			err = ErrOpcodeExtraArgs
			return
		}
		for _, word := range args {
			var reg Index
			reg, err = ParseIndex(word)
			if err != nil {
				return
			}
			regs = append(regs, reg)
		}
		return
	}

	switch rec.Keyword {
	case "inc":
		var regs []Index
		regs, err = registers(1, 1)
		if err != nil {
			return
		}
		in = MakeInc(regs[0])
	case "many":
		var regs []Index
		regs, err = registers(1, -1)
		if err != nil {
			return
		}
		in = MakeMany(regs...)
	case "decjz":
		if len(args) < 2 {
			err = ErrOpcodeMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var reg Index
		reg, err = ParseIndex(args[0])
		if err != nil {
			return
		}
		if !IsHalt(args[1]) && !ValidLabel(args[1]) {
			err = ErrLabelInvalid
			return
		}
		in = MakeDecJumpZero(reg, TARGET_HALT, args[1])
	default:
		err = ErrInstructionInvalid
	}

	return
}

// Load builds a Program from records, and the initial register file from
// the register line values.
//
// Labels are collected before any jump is resolved, so forward references
// work. When a label is defined more than once, the last definition wins.
func (ld *Loader) Load(records []Record, initial []*big.Int) (prog *Program, regs *Store, err error) {
	var rec *Record

	defer func() {
		if err != nil && rec != nil {
			err = &ErrSyntax{LineNo: rec.LineNo, Line: rec.Line, Err: err}
		}
	}()

	if len(records) == 0 {
		err = ErrEmptyProgram
		return
	}

	seeded, err := Seed(initial)
	if err != nil {
		return
	}

	lines := make([]Line, 0, len(records))
	label := make(map[string]int, 16)

	for n := range records {
		rec = &records[n]

		if len(rec.Label) != 0 {
			if !ValidLabel(rec.Label) {
				err = ErrLabelInvalid
				return
			}
			if ld.Verbose {
				if prior, ok := label[rec.Label]; ok {
					log.Printf("loader: line %d: label %v redefined, was index %d", rec.LineNo, rec.Label, prior)
				}
			}
			label[rec.Label] = len(lines)
		}

		var in Instruction
		in, err = decode(rec)
		if err != nil {
			return
		}

		lines = append(lines, Line{LineNo: rec.LineNo, Label: rec.Label, Instruction: in})
	}

	// Final linking of jump labels.
	for n := range lines {
		line := &lines[n]
		if line.Kind != OP_DECJZ || IsHalt(line.Jump) {
			continue
		}

		rec = &records[n]
		index, ok := label[line.Jump]
		if !ok {
			err = ErrLabelMissing(line.Jump)
			return
		}
		line.Target = Target(index)
	}
	rec = nil

	if ld.Verbose {
		log.Printf("loader: %d instructions, %d labels", len(lines), len(label))
	}

	prog = &Program{
		Lines: lines,
		Label: label,
	}
	regs = seeded

	return
}
