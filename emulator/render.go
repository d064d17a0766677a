package emulator

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderRegisters renders the registers as a table. Program registers come
// first, then the scratch registers that have been written.
func (emu *Emulator) RenderRegisters() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{f("Register"), f("Value")})

	for idx, value := range emu.Registers().All() {
		tw.AppendRow(table.Row{idx.String(), value.String()})
	}

	return tw.Render()
}

// RenderListing renders the program, marking the next instruction with
// '>' and breakpoints with '*'.
func (emu *Emulator) RenderListing() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"", "#", f("Line"), f("Label"), f("Instruction")})

	for pc, line := range emu.Program.All() {
		var mark string
		if emu.IsBreakpoint(pc) {
			mark += "*"
		}
		if !emu.Halted() && emu.PC() == pc {
			mark += ">"
		}
		tw.AppendRow(table.Row{mark, strconv.Itoa(pc), strconv.Itoa(line.LineNo), line.Label, line.Instruction.String()})
	}

	return tw.Render()
}

// RenderHelp renders the commands available in the current mode.
func (emu *Emulator) RenderHelp() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{f("Command"), f("Aliases"), f("Description")})

	for _, cmd := range commands {
		if cmd.Modes&emu.mode == 0 {
			continue
		}
		tw.AppendRow(table.Row{
			strings.TrimSpace(cmd.Name + " " + cmd.Usage),
			strings.Join(cmd.Aliases, ", "),
			cmd.Summary,
		})
	}

	return tw.Render()
}
