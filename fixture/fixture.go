// Package fixture checks register machine programs against exercise files.
//
// An exercise file is YAML:
//
//	name: arithmetic
//	cases:
//	  - name: add
//	    registers: [2, 3]
//	    expect: [5]
//	    max_steps: 1000
//	    program: |
//	      loop: decjz r1 HALT
//	      inc r0
//	      decjz r-1 loop
//
// The "registers" list, if present, replaces the program's own register
// line. Registers not listed in "expect" must be zero.
package fixture

import (
	"io"
	"log"
	"math/big"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/regmach/machine"
)

// Case is a single exercise.
type Case struct {
	Name      string   `yaml:"name"`
	Program   string   `yaml:"program"`
	Registers []string `yaml:"registers,omitempty"`
	Expect    []string `yaml:"expect"`
	MaxSteps  int      `yaml:"max_steps,omitempty"` // 0 is unbounded.
}

// Suite is a named list of exercises.
type Suite struct {
	Name    string `yaml:"name"`
	Cases   []Case `yaml:"cases"`
	Verbose bool   `yaml:"-"`
}

// Result is the outcome of one exercise.
type Result struct {
	Case  *Case
	Got   *machine.Store // Final registers, if the program ran.
	Steps int            // Instructions executed.
	Err   error          // Nil if the exercise passed.
}

// Passed is true if the exercise passed.
func (res *Result) Passed() bool {
	return res.Err == nil
}

// Load reads and validates an exercise file.
func Load(input io.Reader) (suite *Suite, err error) {
	suite = &Suite{}

	err = yaml.NewDecoder(input).Decode(suite)
	if err == io.EOF {
		err = ErrSuiteEmpty
	}
	if err != nil {
		suite = nil
		return
	}

	if len(suite.Cases) == 0 {
		suite = nil
		err = ErrSuiteEmpty
		return
	}

	for n := range suite.Cases {
		c := &suite.Cases[n]
		switch {
		case len(c.Name) == 0:
			err = ErrCaseUnnamed
		case len(c.Program) == 0:
			err = &ErrCase{Name: c.Name, Err: ErrCaseNoProgram}
		}
		if err != nil {
			suite = nil
			return
		}
	}

	return
}

// compare checks registers against expected values. Missing values on
// either side are zero.
func compare(got *machine.Store, expect []*big.Int) bool {
	count := max(len(expect), int(got.High())+1)
	for n := range count {
		want := new(big.Int)
		if n < len(expect) {
			want = expect[n]
		}
		if want.Cmp(got.Get(machine.Index(n))) != 0 {
			return false
		}
	}

	return true
}

// Run assembles and runs the exercise.
func (c *Case) Run() (res Result) {
	res.Case = c

	defer func() {
		if res.Err != nil {
			res.Err = &ErrCase{Name: c.Name, Err: res.Err}
		}
	}()

	var expect []*big.Int
	for _, word := range c.Expect {
		value, err := machine.ParseNatural(word)
		if err != nil {
			res.Err = err
			return
		}
		expect = append(expect, value)
	}

	prog, regs, err := machine.AssembleString(c.Program)
	if err != nil {
		res.Err = err
		return
	}

	if c.Registers != nil {
		var values []*big.Int
		values, err = machine.ParseRegisters(c.Registers)
		if err != nil {
			res.Err = err
			return
		}
		regs, err = machine.Seed(values)
		if err != nil {
			res.Err = err
			return
		}
	}

	m := machine.NewMachine(prog, regs)
	for !m.Halted() {
		if c.MaxSteps > 0 && m.Steps >= c.MaxSteps {
			res.Err = ErrStepLimit
			break
		}
		m.Step()
	}

	res.Got = m.Registers()
	res.Steps = m.Steps

	if res.Err == nil && !compare(res.Got, expect) {
		res.Err = ErrMismatch
	}

	return
}

// Check runs every exercise in the suite.
func (suite *Suite) Check() (results []Result) {
	for n := range suite.Cases {
		res := suite.Cases[n].Run()
		if suite.Verbose {
			log.Printf("fixture: %v: %v steps, err %v", res.Case.Name, res.Steps, res.Err)
		}
		results = append(results, res)
	}

	return
}
