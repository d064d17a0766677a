package fixture

import (
	"errors"

	"github.com/ezrec/regmach/translate"
)

var f = translate.From

var (
	ErrSuiteEmpty    = errors.New(f("no exercises"))
	ErrCaseUnnamed   = errors.New(f("exercise has no name"))
	ErrCaseNoProgram = errors.New(f("exercise has no program"))
	ErrStepLimit     = errors.New(f("step limit reached"))
	ErrMismatch      = errors.New(f("registers do not match"))
)

// ErrCase names the exercise an error belongs to.
type ErrCase struct {
	Name string
	Err  error
}

func (err *ErrCase) Error() string {
	return f("exercise %v: %v", err.Name, err.Err)
}

func (err *ErrCase) Unwrap() error {
	return err.Err
}
