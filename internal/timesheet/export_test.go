package timesheet

import (
	"testing"

	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExportRows(t *testing.T) {
	entries := []models.TimesheetEntry{
		entry("ts", 3, "2.00", ""),
		entry("ts", 1, "3.00", "a"),
	}

	rows := ExportRows(entries, decimal.NewFromInt(10))

	assert.Equal(t, [][]string{
		{"Date", "Hours Worked", "Daily Amount", "Note"},
		{"2024-01-01", "3", "30", "a"},
		{"2024-01-03", "2", "20", ""},
		{},
		{"Total", "5", "50"},
	}, rows)
}

func TestExportRows_Empty(t *testing.T) {
	rows := ExportRows(nil, decimal.Zero)

	assert.Equal(t, [][]string{
		{"Date", "Hours Worked", "Daily Amount", "Note"},
		{},
		{"Total", "0", "0"},
	}, rows)
}

func TestExportRows_KeepsNaturalPrecision(t *testing.T) {
	entries := []models.TimesheetEntry{entry("ts", 1, "7.25", "x")}

	rows := ExportRows(entries, decimal.RequireFromString("33.33"))

	assert.Equal(t, []string{"2024-01-01", "7.25", "241.6425", "x"}, rows[1])
	assert.Equal(t, []string{"Total", "7.25", "241.6425"}, rows[3])
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "timesheet_3_2024.csv", ExportFilename(models.Timesheet{Month: 3, Year: 2024}))
}
