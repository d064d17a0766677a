package machine

import (
	"errors"

	"github.com/ezrec/regmach/translate"
)

var f = translate.From

var (
	// Loader errors
	ErrEmptyProgram          = errors.New(f("no instructions"))
	ErrMalformedRegister     = errors.New(f("register invalid"))
	ErrRegisterValueTooLarge = errors.New(f("register value out of range"))

	// Assembler errors
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrOpcodeMissing      = errors.New(f("operand missing"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrRegistersMisplaced = errors.New(f("registers line must come before any instruction"))
	ErrLabelInvalid       = errors.New(f("label invalid"))

	// Machine errors
	ErrTargetInvalid = errors.New(f("target invalid"))
)

// ErrLabelMissing names a jump target that is neither HALT nor a label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSyntax locates an error in the program source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
