package timesheet

import (
	"testing"
	"time"

	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_NoTimesheets(t *testing.T) {
	s := Summarize(3, 2024, nil, nil, decimal.NewFromInt(10))
	assert.Nil(t, s.Current)
	assert.Nil(t, s.Previous)
	assert.True(t, s.CurrentTotal.IsZero())
	assert.True(t, s.PreviousTotal.IsZero())
	assert.True(t, s.AverageDailyHours.IsZero())
}

func TestAverageDailyHours_DistinctDatesAcrossTimesheets(t *testing.T) {
	entries := []models.TimesheetEntry{
		entry("jan", 1, "3", ""),
		entry("other", 1, "2", ""),
		entry("jan", 2, "4", ""),
	}
	avg := AverageDailyHours(entries)
	assert.True(t, avg.Equal(decimal.RequireFromString("4.5")), "got %s", avg)
}

func TestSummarize_CurrentAndPrevious(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	timesheets := []models.Timesheet{
		{ID: "jan", Month: 1, Year: 2024, CreatedAt: created},
		// created last although it is the oldest period
		{ID: "dec", Month: 12, Year: 2023, CreatedAt: created.Add(2 * time.Hour)},
		{ID: "mar", Month: 3, Year: 2024, CreatedAt: created.Add(3 * time.Hour)},
	}
	entries := []models.TimesheetEntry{
		entry("jan", 10, "5", ""),
		entry("dec", 11, "2", ""),
		entry("mar", 12, "8", ""),
		entry("mar", 13, "1.5", ""),
	}

	s := Summarize(3, 2024, timesheets, entries, decimal.NewFromInt(20))

	require.NotNil(t, s.Current)
	assert.Equal(t, "mar", s.Current.ID)
	assert.Equal(t, "190", s.CurrentTotal.String())

	require.NotNil(t, s.Previous)
	assert.Equal(t, "dec", s.Previous.ID)
	assert.Equal(t, "40", s.PreviousTotal.String())

	assert.True(t, s.AverageDailyHours.Equal(decimal.RequireFromString("4.125")), "got %s", s.AverageDailyHours)
}

func TestSummarize_NoCurrentUsesMostRecent(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	timesheets := []models.Timesheet{
		{ID: "jan", Month: 1, Year: 2024, CreatedAt: created.Add(time.Hour)},
		{ID: "feb", Month: 2, Year: 2024, CreatedAt: created},
	}
	entries := []models.TimesheetEntry{entry("jan", 5, "2", "")}

	s := Summarize(7, 2024, timesheets, entries, decimal.NewFromInt(10))

	assert.Nil(t, s.Current)
	assert.True(t, s.CurrentTotal.IsZero())
	require.NotNil(t, s.Previous)
	assert.Equal(t, "jan", s.Previous.ID)
	assert.Equal(t, "20", s.PreviousTotal.String())
}

func TestMostRecentExcept_TieBreak(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	timesheets := []models.Timesheet{
		{ID: "a", Month: 4, Year: 2024, CreatedAt: created},
		{ID: "b", Month: 5, Year: 2024, CreatedAt: created},
	}
	got := MostRecentExcept(timesheets, nil)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)

	assert.Nil(t, MostRecentExcept(timesheets[:1], &timesheets[0]))
}

func TestSortByPeriod(t *testing.T) {
	timesheets := []models.Timesheet{
		{ID: "2023-12", Month: 12, Year: 2023},
		{ID: "2024-02", Month: 2, Year: 2024},
		{ID: "2024-01", Month: 1, Year: 2024},
	}
	SortByPeriod(timesheets)
	assert.Equal(t, "2024-02", timesheets[0].ID)
	assert.Equal(t, "2024-01", timesheets[1].ID)
	assert.Equal(t, "2023-12", timesheets[2].ID)
}
