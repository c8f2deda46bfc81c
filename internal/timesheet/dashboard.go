package timesheet

import (
	"sort"

	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/shopspring/decimal"
)

// Summary holds the cross-timesheet statistics shown on a user's dashboard.
type Summary struct {
	Current           *models.Timesheet
	Previous          *models.Timesheet
	CurrentTotal      decimal.Decimal
	PreviousTotal     decimal.Decimal
	AverageDailyHours decimal.Decimal
}

// Summarize computes the dashboard figures for the period month/year.
//
// timesheets are all of the user's timesheets and entries are all of the
// user's entries across every timesheet, as returned by a single join.
// The previous timesheet is the most recently created one that is not the
// current one. Average daily hours divide the hours of every entry by the
// number of distinct dates, so two timesheets logging the same date count
// as one day.
func Summarize(month, year int, timesheets []models.Timesheet, entries []models.TimesheetEntry, rate decimal.Decimal) Summary {
	s := Summary{
		CurrentTotal:      decimal.Zero,
		PreviousTotal:     decimal.Zero,
		AverageDailyHours: AverageDailyHours(entries),
	}

	s.Current = FindPeriod(timesheets, month, year)
	if s.Current != nil {
		s.CurrentTotal = Aggregate(EntriesOf(entries, s.Current.ID), rate).Amount
	}

	s.Previous = MostRecentExcept(timesheets, s.Current)
	if s.Previous != nil {
		s.PreviousTotal = Aggregate(EntriesOf(entries, s.Previous.ID), rate).Amount
	}

	return s
}

// FindPeriod returns the timesheet for month/year, or nil.
func FindPeriod(timesheets []models.Timesheet, month, year int) *models.Timesheet {
	for i := range timesheets {
		if timesheets[i].Month == month && timesheets[i].Year == year {
			ts := timesheets[i]
			return &ts
		}
	}
	return nil
}

// MostRecentExcept returns the most recently created timesheet other than
// exclude. Equal creation times fall back to the later period.
func MostRecentExcept(timesheets []models.Timesheet, exclude *models.Timesheet) *models.Timesheet {
	var best *models.Timesheet
	for i := range timesheets {
		ts := timesheets[i]
		if exclude != nil && ts.ID == exclude.ID {
			continue
		}
		if best == nil || createdAfter(ts, *best) {
			best = &ts
		}
	}
	return best
}

func createdAfter(a, b models.Timesheet) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	return a.Month > b.Month
}

// AverageDailyHours divides the total hours by the number of distinct dates
// with at least one entry. It is zero when there are no entries.
func AverageDailyHours(entries []models.TimesheetEntry) decimal.Decimal {
	if len(entries) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	days := make(map[string]struct{})
	for _, e := range entries {
		total = total.Add(e.HoursWorked)
		days[e.Date.String()] = struct{}{}
	}
	return total.Div(decimal.NewFromInt(int64(len(days))))
}

// SortByPeriod orders timesheets newest period first (year, then month, descending).
func SortByPeriod(timesheets []models.Timesheet) {
	sort.SliceStable(timesheets, func(i, j int) bool {
		if timesheets[i].Year != timesheets[j].Year {
			return timesheets[i].Year > timesheets[j].Year
		}
		return timesheets[i].Month > timesheets[j].Month
	})
}
