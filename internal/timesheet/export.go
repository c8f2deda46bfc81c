package timesheet

import (
	"fmt"

	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/shopspring/decimal"
)

// ExportHeader is the first row of every export.
var ExportHeader = []string{"Date", "Hours Worked", "Daily Amount", "Note"}

// ExportRows lays out a timesheet as rows: the header, one row per entry in
// date order, an empty separator row and a three-column totals row.
// Numbers are plain decimals without currency formatting or padding.
func ExportRows(entries []models.TimesheetEntry, rate decimal.Decimal) [][]string {
	ordered := make([]models.TimesheetEntry, len(entries))
	copy(ordered, entries)
	SortEntries(ordered)

	rows := make([][]string, 0, len(ordered)+3)
	rows = append(rows, append([]string(nil), ExportHeader...))
	for _, e := range ordered {
		rows = append(rows, []string{
			e.Date.String(),
			e.HoursWorked.String(),
			Amount(e.HoursWorked, rate).String(),
			e.Note,
		})
	}

	totals := Aggregate(ordered, rate)
	rows = append(rows,
		[]string{},
		[]string{"Total", totals.Hours.String(), totals.Amount.String()},
	)
	return rows
}

// ExportFilename is the attachment name for a timesheet export.
func ExportFilename(ts models.Timesheet) string {
	return fmt.Sprintf("timesheet_%d_%d.csv", ts.Month, ts.Year)
}
