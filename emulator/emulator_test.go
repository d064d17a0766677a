package emulator

import (
	"bytes"
	"math/big"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/regmach/machine"
)

func newDebug(t *testing.T, program ...string) (emu *Emulator) {
	prog, regs, err := machine.AssembleString(strings.Join(program, "\n"))
	assert.NoError(t, err)
	if err != nil {
		t.Fatal(err)
	}

	return NewEmulator(prog, regs)
}

func doSession(emu *Emulator, commands ...string) string {
	output := &bytes.Buffer{}
	emu.Input = strings.NewReader(strings.Join(commands, "\n"))
	emu.Output = output

	emu.Session()

	return output.String()
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	assert.False(emu.Verbose)
	assert.Equal(MODE_REPL, emu.Mode())
	assert.NotNil(emu.Machine)
	assert.True(emu.Halted())

	emu = newDebug(t, "inc r0")
	assert.Equal(MODE_DEBUG, emu.Mode())
	assert.False(emu.Halted())
}

func TestEmulatorStepOnce(t *testing.T) {
	assert := assert.New(t)

	emu := newDebug(t,
		"registers 2",
		"start: decjz r0 HALT",
		"inc r1",
		"decjz r-1 start",
	)

	expected := []struct {
		pc     int
		halted bool
		r0, r1 int64
	}{
		{1, false, 1, 0},
		{2, false, 1, 1},
		{0, false, 1, 1},
		{1, false, 0, 1},
		{2, false, 0, 2},
		{0, false, 0, 2},
		{0, true, 0, 2},
		{0, true, 0, 2},
	}

	for n, entry := range expected {
		state := emu.StepOnce()
		assert.Equal(entry.halted, state.Halted, n)
		if !entry.halted {
			assert.Equal(entry.pc, state.PC, n)
		}
		assert.Equal(entry.r0, state.Registers.Get(0).Int64(), n)
		assert.Equal(entry.r1, state.Registers.Get(1).Int64(), n)
	}
}

func TestEmulatorMutate(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)

	assert.NoError(emu.Inc(3))
	assert.NoError(emu.Inc(3))
	assert.NoError(emu.Dec(3))
	assert.Equal("registers 0 0 0 1", emu.Registers().String())

	zero, err := emu.DecNoJump(3)
	assert.NoError(err)
	assert.False(zero)

	zero, err = emu.DecNoJump(3)
	assert.NoError(err)
	assert.True(zero)

	assert.NoError(emu.Dec(3))
	assert.Equal(int64(0), emu.Registers().Get(3).Int64())

	assert.NoError(emu.SetRegisters([]*big.Int{big.NewInt(4), big.NewInt(5)}))
	assert.Equal("registers 4 5", emu.Registers().String())

	// Debug sessions are driven by the program only.
	emu = newDebug(t, "inc r0")
	assert.ErrorIs(emu.Inc(0), ErrModeDebug)
	assert.ErrorIs(emu.Dec(0), ErrModeDebug)
	_, err = emu.DecNoJump(0)
	assert.ErrorIs(err, ErrModeDebug)
	assert.ErrorIs(emu.SetRegisters(nil), ErrModeDebug)
}

func TestEmulatorReplSession(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	output := doSession(emu,
		"inc r0",
		"inc r0",
		"inc r-1",
		"dec r0",
		"decjz r2 somewhere",
		"",
		"registers",
		"registers 7 8",
		"r",
		"inc x",
		"step",
		"frobnicate",
		"q",
		"inc r0",
	)

	assert.Contains(output, "REPL mode")
	assert.Contains(output, "Register r0 is now 2.")
	assert.Contains(output, "Register r-1 is now 1.")
	assert.Contains(output, "Register r0 is now 1.")
	assert.Contains(output, "Register was already 0. Not jumping due to being in REPL mode.")
	assert.Contains(output, "registers 1 0 0")
	assert.Contains(output, "Registers successfully changed.")
	assert.Contains(output, "registers 7 8")
	assert.Contains(output, "Type \"help\" for a list of commands.")

	// The session stopped at "q".
	assert.Equal("registers 7 8", emu.Registers().String())
}

func TestEmulatorCommandErrors(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)

	_, err := emu.Command("frobnicate")
	assert.ErrorIs(err, ErrCommandUnknown("frobnicate"))

	_, err = emu.Command("step")
	assert.ErrorIs(err, ErrModeRepl)

	_, err = emu.Command("inc")
	assert.ErrorIs(err, machine.ErrOpcodeMissing)
	var usage *ErrUsage
	if assert.ErrorAs(err, &usage) {
		assert.Equal("inc r[NUMBER]", usage.Usage)
	}

	_, err = emu.Command("inc r0 r1")
	assert.ErrorIs(err, machine.ErrOpcodeExtraArgs)

	_, err = emu.Command("decjz r0")
	assert.ErrorIs(err, machine.ErrOpcodeMissing)

	_, err = emu.Command("dec q")
	assert.ErrorIs(err, machine.ErrMalformedRegister)

	_, err = emu.Command("registers 1 x")
	assert.ErrorIs(err, machine.ErrParseNumber("x"))

	stop, err := emu.Command("   ")
	assert.NoError(err)
	assert.False(stop)

	stop, err = emu.Command("exit")
	assert.NoError(err)
	assert.True(stop)

	emu = newDebug(t, "inc r0")
	_, err = emu.Command("inc r0")
	assert.ErrorIs(err, ErrModeDebug)

	_, err = emu.Command("step x")
	assert.ErrorIs(err, machine.ErrParseNumber("x"))

	_, err = emu.Command("break")
	assert.ErrorIs(err, machine.ErrOpcodeMissing)

	_, err = emu.Command("break nosuch")
	assert.ErrorIs(err, machine.ErrLabelMissing("nosuch"))
}

func TestEmulatorDebugSession(t *testing.T) {
	assert := assert.New(t)

	emu := newDebug(t,
		"registers 3",
		"start: decjz r0 HALT",
		"inc r1",
		"decjz r-1 start",
	)

	output := doSession(emu,
		"step",
		"s 2",
		"b 2",
		"c",
		"l",
		"b 2",
		"c",
	)

	assert.Contains(output, "debug mode")
	assert.Contains(output, "Next: 1: inc r1")
	assert.Contains(output, "Breakpoint set at 2.")
	assert.Contains(output, "Breakpoint reached.")
	assert.Contains(output, "Breakpoint removed from 2.")
	assert.Contains(output, "Machine halted.")
	assert.Contains(output, "decjz r-1 start")

	assert.True(emu.Halted())
	assert.Equal("registers 0 3", emu.Registers().String())
}

func TestEmulatorDebugGotoReset(t *testing.T) {
	assert := assert.New(t)

	emu := newDebug(t,
		"registers 1",
		"inc r0",
		"skip: inc r1",
	)

	_, err := emu.Command("goto skip")
	assert.NoError(err)
	assert.Equal(1, emu.PC())

	emu.Output = &bytes.Buffer{}
	_, err = emu.Command("step")
	assert.NoError(err)
	assert.True(emu.Halted())
	assert.Equal("registers 1 1", emu.Registers().String())

	_, err = emu.Command("reset")
	assert.NoError(err)
	assert.False(emu.Halted())
	assert.Equal("registers 1", emu.Registers().String())

	output := doSession(emu, "b 0", "c")
	assert.Contains(output, "Breakpoint reached.")
	assert.Equal(0, emu.PC())
	assert.Equal("registers 1", emu.Registers().String())

	_, err = emu.Command("goto HALT")
	assert.NoError(err)
	assert.True(emu.Halted())
}

func TestEmulatorRender(t *testing.T) {
	assert := assert.New(t)

	emu := newDebug(t,
		"registers 5 6",
		"loop: many r0 r-2",
		"decjz r1 loop",
	)
	emu.StepOnce()
	_, err := emu.ToggleBreakpoint("loop")
	assert.NoError(err)

	regs := emu.RenderRegisters()
	assert.Contains(regs, "r0")
	assert.Contains(regs, "6")
	assert.Contains(regs, "r-2")

	listing := emu.RenderListing()
	assert.Contains(listing, "many r0 r-2")
	assert.Contains(listing, "decjz r1 loop")
	assert.Contains(listing, "*")
	assert.Contains(listing, ">")

	help := emu.RenderHelp()
	assert.Contains(help, "step")
	assert.NotContains(help, "dec r[NUMBER]")
}

func TestEmulatorRenderHelpVerbatim(t *testing.T) {
	assert := assert.New(t)

	saved := commands
	defer func() { commands = saved }()

	commands = append(slices.Clone(saved), &Command{
		Name:    "ratio",
		Summary: "Show 100% of r0 as %d.",
		Modes:   MODE_REPL,
	})

	help := NewEmulator(nil, nil).RenderHelp()
	assert.Contains(help, "Show 100% of r0 as %d.")
	assert.NotContains(help, "%!")
	assert.Contains(help, "Quit the session.")
}
