package timesheet

import (
	"sort"

	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/shopspring/decimal"
)

// Totals are the aggregate figures of one timesheet.
type Totals struct {
	Hours  decimal.Decimal
	Amount decimal.Decimal
}

// Aggregate sums the hours of the entries and their amount at rate.
// A zero rate (no profile) yields a zero amount, never an error.
func Aggregate(entries []models.TimesheetEntry, rate decimal.Decimal) Totals {
	totals := Totals{Hours: decimal.Zero, Amount: decimal.Zero}
	for _, e := range entries {
		totals.Hours = totals.Hours.Add(e.HoursWorked)
		totals.Amount = totals.Amount.Add(Amount(e.HoursWorked, rate))
	}
	return totals
}

// SortEntries orders entries by date ascending. Entries on the same day keep
// their creation order.
func SortEntries(entries []models.TimesheetEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Time.Before(b.Date.Time)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// EntriesOf returns the entries that belong to timesheetID.
func EntriesOf(entries []models.TimesheetEntry, timesheetID string) []models.TimesheetEntry {
	var out []models.TimesheetEntry
	for _, e := range entries {
		if e.TimesheetID == timesheetID {
			out = append(out, e)
		}
	}
	return out
}
