package emulator

import (
	"bufio"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/regmach/machine"
)

const PROMPT = "> "

// Command is a session command.
type Command struct {
	Name    string   // Command name.
	Aliases []string // Alternate names.
	Usage   string   // Argument synopsis.
	Summary string   // One line description, already translated.
	Modes   Mode     // Modes in which the command is available.

	// Exec runs the command. Returning stop ends the session.
	Exec func(emu *Emulator, args []string) (stop bool, err error)
}

var commands []*Command

func init() {
	commands = []*Command{
		{"exit", []string{"quit", "q"}, "", f("Quit the session."), MODE_REPL | MODE_DEBUG, exitExec},
		{"help", []string{"h"}, "", f("Display this help text."), MODE_REPL | MODE_DEBUG, helpExec},
		{"registers", []string{"r"}, "[NUMBERS]", f("Display the registers, or set them to the given values."), MODE_REPL | MODE_DEBUG, registersExec},
		{"inc", nil, "r[NUMBER]", f("Increase the given register by 1."), MODE_REPL, incExec},
		{"decjz", nil, "r[NUMBER] [LABEL]", f("Decrease the given register by 1. The label is ignored."), MODE_REPL, decjzExec},
		{"dec", nil, "r[NUMBER]", f("Decrease the given register by 1, if it is not 0."), MODE_REPL, decExec},
		{"step", []string{"s"}, "[COUNT]", f("Execute the next instruction, or COUNT instructions."), MODE_DEBUG, stepExec},
		{"continue", []string{"c"}, "", f("Execute until a breakpoint or the machine halts."), MODE_DEBUG, continueExec},
		{"break", []string{"b"}, "LABEL|INDEX", f("Toggle a breakpoint."), MODE_DEBUG, breakExec},
		{"list", []string{"l"}, "", f("List the program."), MODE_DEBUG, listExec},
		{"goto", []string{"g"}, "LABEL|INDEX|HALT", f("Move to an instruction without executing."), MODE_DEBUG, gotoExec},
		{"reset", nil, "", f("Restore the initial registers and go to the first instruction."), MODE_DEBUG, resetExec},
	}
}

// Lookup finds a command by name or alias.
func Lookup(name string) (cmd *Command, ok bool) {
	for _, cmd = range commands {
		if cmd.Name == name || slices.Contains(cmd.Aliases, name) {
			return cmd, true
		}
	}

	return nil, false
}

func (emu *Emulator) printf(format string, args ...any) {
	fmt.Fprintf(emu.Output, format, args...)
}

func (emu *Emulator) println(text string) {
	fmt.Fprintln(emu.Output, text)
}

// Command executes a single session command line.
func (emu *Emulator) Command(line string) (stop bool, err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	cmd, ok := Lookup(words[0])
	if !ok {
		err = ErrCommandUnknown(words[0])
		return
	}

	if cmd.Modes&emu.mode == 0 {
		err = ErrModeRepl
		if emu.mode == MODE_DEBUG {
			err = ErrModeDebug
		}
		return
	}

	stop, err = cmd.Exec(emu, words[1:])
	if err != nil && len(cmd.Usage) != 0 {
		err = &ErrUsage{Usage: strings.TrimSpace(cmd.Name + " " + cmd.Usage), Err: err}
	}

	return
}

// Welcome returns the session banner.
func (emu *Emulator) Welcome() string {
	if emu.mode == MODE_REPL {
		return f("regmach in REPL mode. Type \"h\" for help.")
	}

	return f("regmach in debug mode, %v instructions. Type \"h\" for help.", strconv.Itoa(len(emu.Program.Lines)))
}

// Session runs commands from Input until EOF or "exit".
func (emu *Emulator) Session() (err error) {
	scanner := bufio.NewScanner(emu.Input)

	emu.println(emu.Welcome())
	if emu.mode == MODE_DEBUG {
		emu.showState()
	}

	for {
		emu.printf("%v", PROMPT)
		if !scanner.Scan() {
			emu.println("")
			break
		}

		stop, cerr := emu.Command(scanner.Text())
		if cerr != nil {
			emu.println(f("Error: %v", cerr))
			if _, ok := cerr.(ErrCommandUnknown); ok {
				emu.println(f("Type \"help\" for a list of commands."))
			}
		}
		if stop {
			break
		}
	}

	return scanner.Err()
}

func parseRegister(args []string, count int) (reg machine.Index, err error) {
	if len(args) < count {
		err = machine.ErrOpcodeMissing
		return
	}
	if len(args) > count {
		err = machine.ErrOpcodeExtraArgs
		return
	}

	return machine.ParseIndex(args[0])
}

func (emu *Emulator) showRegister(reg machine.Index) {
	emu.println(f("Register %v is now %v.", reg.String(), emu.Registers().Get(reg).String()))
}

func (emu *Emulator) showState() {
	if line, ok := emu.Line(); ok {
		emu.println(f("Next: %v", fmt.Sprintf("%d: %v", emu.PC(), line.Format())))
	} else {
		emu.println(f("Machine halted."))
	}
	emu.println(emu.RenderRegisters())
}

func exitExec(emu *Emulator, args []string) (stop bool, err error) {
	stop = true
	return
}

func helpExec(emu *Emulator, args []string) (stop bool, err error) {
	emu.println(emu.RenderHelp())
	return
}

func registersExec(emu *Emulator, args []string) (stop bool, err error) {
	if len(args) == 0 {
		emu.println(emu.Registers().String())
		return
	}

	values, err := machine.ParseRegisters(args)
	if err != nil {
		return
	}

	err = emu.SetRegisters(values)
	if err != nil {
		return
	}

	emu.println(f("Registers successfully changed. Current state:"))
	emu.println(emu.Registers().String())
	return
}

func incExec(emu *Emulator, args []string) (stop bool, err error) {
	reg, err := parseRegister(args, 1)
	if err != nil {
		return
	}

	err = emu.Inc(reg)
	if err != nil {
		return
	}

	emu.showRegister(reg)
	return
}

func decjzExec(emu *Emulator, args []string) (stop bool, err error) {
	reg, err := parseRegister(args, 2)
	if err != nil {
		return
	}

	zero, err := emu.DecNoJump(reg)
	if err != nil {
		return
	}

	if zero {
		emu.println(f("Register was already 0. Not jumping due to being in REPL mode."))
		return
	}

	emu.showRegister(reg)
	return
}

func decExec(emu *Emulator, args []string) (stop bool, err error) {
	reg, err := parseRegister(args, 1)
	if err != nil {
		return
	}

	err = emu.Dec(reg)
	if err != nil {
		return
	}

	emu.showRegister(reg)
	return
}

func stepExec(emu *Emulator, args []string) (stop bool, err error) {
	count := 1
	if len(args) > 1 {
		err = machine.ErrOpcodeExtraArgs
		return
	}
	if len(args) == 1 {
		count, err = strconv.Atoi(args[0])
		if err != nil || count < 1 {
			err = machine.ErrParseNumber(args[0])
			return
		}
	}

	for range count {
		if emu.StepOnce().Halted {
			break
		}
	}

	emu.showState()
	return
}

func continueExec(emu *Emulator, args []string) (stop bool, err error) {
	if emu.Continue() == machine.STOP_BREAKPOINT {
		emu.println(f("Breakpoint reached."))
	}

	emu.showState()
	return
}

func breakExec(emu *Emulator, args []string) (stop bool, err error) {
	if len(args) != 1 {
		err = machine.ErrOpcodeMissing
		if len(args) > 1 {
			err = machine.ErrOpcodeExtraArgs
		}
		return
	}

	set, err := emu.ToggleBreakpoint(args[0])
	if err != nil {
		return
	}

	if set {
		emu.println(f("Breakpoint set at %v.", args[0]))
	} else {
		emu.println(f("Breakpoint removed from %v.", args[0]))
	}
	return
}

func listExec(emu *Emulator, args []string) (stop bool, err error) {
	emu.println(emu.RenderListing())
	return
}

func gotoExec(emu *Emulator, args []string) (stop bool, err error) {
	if len(args) != 1 {
		err = machine.ErrOpcodeMissing
		if len(args) > 1 {
			err = machine.ErrOpcodeExtraArgs
		}
		return
	}

	err = emu.GoTo(args[0])
	if err != nil {
		return
	}

	emu.showState()
	return
}

func resetExec(emu *Emulator, args []string) (stop bool, err error) {
	emu.Reset()
	emu.showState()
	return
}
