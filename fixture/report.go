package fixture

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report writes a table of results, and returns the number that passed.
func Report(output io.Writer, results []Result) (passed int) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{f("Exercise"), f("Result"), f("Steps"), f("Registers")})

	for n := range results {
		res := &results[n]

		status := f("PASS")
		if res.Passed() {
			passed++
		} else {
			status = f("FAIL")
		}

		got := "-"
		if res.Got != nil {
			got = strings.TrimPrefix(res.Got.String(), "registers")
			got = strings.TrimSpace(got)
		}

		row := table.Row{res.Case.Name, status, strconv.Itoa(res.Steps), got}
		if !res.Passed() {
			row[1] = status + ": " + res.Err.Error()
		}
		tw.AppendRow(row)
	}

	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d", passed, len(results)), "", ""})

	fmt.Fprintln(output, tw.Render())

	return
}
