// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math/big"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const (
	REGISTERS_KEYWORD = "registers" // Keyword of the initial register line.
	COMMENT_PREFIX    = "#"         // Prefix of comment lines.
)

var parenExpr = regexp.MustCompile(`\$\([^\$]*\)`)

// Assembler parses program text into line records.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Records []Record   // Parsed instruction lines.
	Initial []*big.Int // Initial register values, if a register line was seen.

	hasInitial bool
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string, lineno int) (value *big.Int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{
		"LINENO": starlark.MakeInt(lineno),
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = st_int.BigInt()
	return
}

// expand replaces $(...) expressions in a line with their decimal value.
func (asm *Assembler) expand(line string, lineno int) (expanded string, err error) {
	expanded = parenExpr.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2:len(str)-1], lineno)
		if _err != nil {
			if err == nil {
				err = _err
			}
			return str
		}
		return value.String()
	})

	return
}

// ParseNatural parses an unsigned decimal number of any size.
func ParseNatural(word string) (value *big.Int, err error) {
	if len(word) == 0 || word[0] == '+' || word[0] == '-' {
		err = ErrParseNumber(word)
		return
	}

	value, ok := new(big.Int).SetString(word, 10)
	if !ok {
		value = nil
		err = ErrParseNumber(word)
	}

	return
}

// ParseValue parses a single initial register value, limited to
// MAX_REGISTER_BITS.
func ParseValue(word string) (value *big.Int, err error) {
	value, err = ParseNatural(word)
	if err != nil {
		return
	}

	if value.BitLen() > MAX_REGISTER_BITS {
		value = nil
		err = ErrRegisterValueTooLarge
		return
	}

	return
}

// ParseRegisters parses the values of a "registers ..." line.
func ParseRegisters(words []string) (values []*big.Int, err error) {
	for _, word := range words {
		var value *big.Int
		value, err = ParseValue(word)
		if err != nil {
			return
		}
		values = append(values, value)
	}

	return
}

// parseLine parses a single source line. Blank and comment lines produce
// no record.
func (asm *Assembler) parseLine(text string, lineno int) (err error) {
	line := strings.TrimSpace(text)
	if len(line) == 0 || strings.HasPrefix(line, COMMENT_PREFIX) {
		return
	}

	line, err = asm.expand(line, lineno)
	if err != nil {
		return
	}

	words := strings.Fields(line)
	if words[0] == REGISTERS_KEYWORD {
		if asm.hasInitial || len(asm.Records) != 0 {
			err = ErrRegistersMisplaced
			return
		}
		asm.Initial, err = ParseRegisters(words[1:])
		if err != nil {
			return
		}
		asm.hasInitial = true
		return
	}

	var label string
	if before, after, ok := strings.Cut(line, ":"); ok {
		label = strings.TrimSpace(before)
		if !ValidLabel(label) {
			err = ErrLabelInvalid
			return
		}
		words = strings.Fields(after)
	}

	if len(words) == 0 {
		err = ErrOpcodeMissing
		return
	}

	asm.Records = append(asm.Records, Record{
		LineNo:   lineno,
		Line:     line,
		Label:    label,
		Keyword:  words[0],
		Operands: words[1:],
	})

	return
}

// Parse parses an input stream into line records and initial register values.
func (asm *Assembler) Parse(input io.Reader) (records []Record, initial []*big.Int, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Records = nil
	asm.Initial = nil
	asm.hasInitial = false

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	records = asm.Records
	initial = asm.Initial

	return
}

// Assemble parses and loads a program.
func (asm *Assembler) Assemble(input io.Reader) (prog *Program, regs *Store, err error) {
	records, initial, err := asm.Parse(input)
	if err != nil {
		return
	}

	loader := &Loader{Verbose: asm.Verbose}
	prog, regs, err = loader.Load(records, initial)
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("assembler: %v", regs)
	}

	return
}

// Assemble parses and loads a program with a default Assembler.
func Assemble(input io.Reader) (prog *Program, regs *Store, err error) {
	return (&Assembler{}).Assemble(input)
}

// AssembleString is Assemble for in-memory source text.
func AssembleString(source string) (prog *Program, regs *Store, err error) {
	return Assemble(strings.NewReader(source))
}

// Format returns the source form of a line, ie "loop: decjz r0 HALT".
func (line *Line) Format() string {
	if len(line.Label) == 0 {
		return line.Instruction.String()
	}

	return fmt.Sprintf("%v: %v", line.Label, line.Instruction)
}
