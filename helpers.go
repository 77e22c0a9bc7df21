package main

import (
	"fmt"
	"io"
	"strconv"
)

func PrintTable(w io.Writer, headers []string, rows [][]string, footers []string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	// print header
	for i, header := range headers {
		fmt.Fprintf(w, "%-*s\t", colWidths[i], header)
	}
	fmt.Fprintln(w)

	// print rows
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(w, "%-*s\t", colWidths[i], cell)
		}
		fmt.Fprintln(w)
	}

	if len(footers) == 0 {
		return
	}

	// print footer
	for i, footer := range footers {
		fmt.Fprintf(w, "%-*s\t", colWidths[i], footer)
	}
	fmt.Fprintln(w)
}

// tableView draws the meal list on a terminal.
type tableView struct {
	out io.Writer
	app *App
}

var _ View = (*tableView)(nil)

func (v *tableView) Reload() {
	fmt.Fprintln(v.out, v.app.Title())

	headers := []string{"#", "Meal time", "Ago"}

	var rows [][]string
	for i := 0; i < v.app.RowCount(); i++ {
		num := strconv.Itoa(i + 1)
		if v.app.MealCount() == 0 {
			num = ""
		}
		rows = append(rows, []string{num, v.app.RowLabel(i), v.app.RowAge(i)})
	}

	footers := []string{"", fmt.Sprintf("Total: %d", v.app.MealCount()), ""}
	PrintTable(v.out, headers, rows, footers)
}

func (v *tableView) DeleteRow(position int) {
	fmt.Fprintf(v.out, "Deleted meal #%d\n\n", position+1)
	v.Reload()
}
