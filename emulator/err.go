package emulator

import (
	"errors"

	"github.com/ezrec/regmach/translate"
)

var f = translate.From

var (
	ErrModeRepl  = errors.New(f("no program loaded"))
	ErrModeDebug = errors.New(f("registers can only be changed in REPL mode"))
)

// ErrCommandUnknown is an unrecognized session command.
type ErrCommandUnknown string

func (err ErrCommandUnknown) Error() string {
	return f("unknown command \"%v\"", string(err))
}

// ErrUsage reports a malformed command, with its correct usage.
type ErrUsage struct {
	Usage string
	Err   error
}

func (err *ErrUsage) Error() string {
	return f("%v, usage: %v", err.Err, err.Usage)
}

func (err *ErrUsage) Unwrap() error {
	return err.Err
}
