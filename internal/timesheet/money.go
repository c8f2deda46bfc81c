// Package timesheet holds the arithmetic behind timesheets: hours and rate
// parsing, per-timesheet totals, dashboard statistics and the export layout.
//
// All quantities are shopspring decimals so that hours × rate never picks up
// binary floating point drift.
package timesheet

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// decimalPlaces is the precision of stored hours and rates.
	decimalPlaces = 2

	// Column widths of the stored values, in total digits.
	hoursMaxDigits = 5
	rateMaxDigits  = 10

	// MaxNoteLength is the maximum note length in characters.
	MaxNoteLength = 255
)

// Amount converts hours into money at the given hourly rate.
func Amount(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate)
}

// ParseHours parses a worked-hours quantity such as "7.5" or "7,50".
func ParseHours(s string) (decimal.Decimal, error) {
	return parseQuantity("hours_worked", s, hoursMaxDigits)
}

// ParseRate parses an hourly rate.
func ParseRate(s string) (decimal.Decimal, error) {
	return parseQuantity("hourly_rate", s, rateMaxDigits)
}

// ValidateHours checks an already-decoded hours value.
func ValidateHours(d decimal.Decimal) error {
	return validateQuantity("hours_worked", d, hoursMaxDigits)
}

// ValidateRate checks an already-decoded rate value.
func ValidateRate(d decimal.Decimal) error {
	return validateQuantity("hourly_rate", d, rateMaxDigits)
}

// ValidateNote enforces the note length limit. Empty notes are allowed.
func ValidateNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return invalid("note", "must be at most %d characters", MaxNoteLength)
	}
	return nil
}

// ValidatePeriod checks a timesheet month and year.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return invalid("month", "must be between 1 and 12, got %d", month)
	}
	// year is stored as a positive small integer
	if year < 1 || year > 32767 {
		return invalid("year", "must be a positive year, got %d", year)
	}
	return nil
}

func parseQuantity(field, s string, maxDigits int) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return decimal.Zero, invalid(field, "value is required")
	}
	// Accept a decimal comma as well as a dot
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero, invalid(field, "%q is not a decimal number", raw)
	}
	if err := validateQuantity(field, d, maxDigits); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func validateQuantity(field string, d decimal.Decimal, maxDigits int) error {
	if d.IsNegative() {
		return invalid(field, "must not be negative")
	}
	if !d.Equal(d.Round(decimalPlaces)) {
		return invalid(field, "at most %d decimal places allowed", decimalPlaces)
	}
	limit := decimal.New(1, int32(maxDigits-decimalPlaces))
	if d.GreaterThanOrEqual(limit) {
		return invalid(field, "must be less than %s", limit.String())
	}
	return nil
}
