package timesheet

import (
	"testing"
	"time"

	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func entry(timesheetID string, day int, hours string, note string) models.TimesheetEntry {
	return models.TimesheetEntry{
		ID:          timesheetID + "-" + hours,
		TimesheetID: timesheetID,
		Date:        models.NewDate(2024, time.January, day),
		HoursWorked: decimal.RequireFromString(hours),
		Note:        note,
	}
}

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil, decimal.NewFromInt(25))
	assert.True(t, totals.Hours.IsZero())
	assert.True(t, totals.Amount.IsZero())
}

func TestAggregate_ZeroRate(t *testing.T) {
	totals := Aggregate([]models.TimesheetEntry{entry("ts", 1, "8", "")}, decimal.Zero)
	assert.Equal(t, "8", totals.Hours.String())
	assert.True(t, totals.Amount.IsZero())
}

func TestAggregate_AmountEqualsRateTimesHours(t *testing.T) {
	rates := []string{"0", "0.01", "12.34", "99999999.99"}
	entries := []models.TimesheetEntry{
		entry("ts", 1, "0.1", ""),
		entry("ts", 2, "0.2", ""),
		entry("ts", 3, "7.33", ""),
		entry("ts", 3, "999.99", ""),
	}
	for _, r := range rates {
		rate := decimal.RequireFromString(r)
		totals := Aggregate(entries, rate)
		assert.True(t, totals.Amount.Equal(rate.Mul(totals.Hours)), "rate %s: %s != %s × %s", r, totals.Amount, rate, totals.Hours)
	}
}

func TestSortEntries(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	a := entry("ts", 3, "1", "a")
	b := entry("ts", 1, "2", "b")
	c := entry("ts", 3, "3", "c")
	a.CreatedAt = base
	b.CreatedAt = base.Add(time.Minute)
	c.CreatedAt = base.Add(2 * time.Minute)

	entries := []models.TimesheetEntry{c, a, b}
	SortEntries(entries)

	assert.Equal(t, []string{"b", "a", "c"}, []string{entries[0].Note, entries[1].Note, entries[2].Note})
}

func TestEntriesOf(t *testing.T) {
	entries := []models.TimesheetEntry{entry("a", 1, "1", ""), entry("b", 1, "2", ""), entry("a", 2, "3", "")}
	assert.Len(t, EntriesOf(entries, "a"), 2)
	assert.Len(t, EntriesOf(entries, "b"), 1)
	assert.Empty(t, EntriesOf(entries, "c"))
}
