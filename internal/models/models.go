package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user in the system
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Password  string    `db:"password" json:"-"` // Password hash, not returned in JSON
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UserProfile holds the per-user billing settings (one row per user)
type UserProfile struct {
	UserID     string          `db:"user_id" json:"userId"`
	HourlyRate decimal.Decimal `db:"hourly_rate" json:"hourlyRate"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// Timesheet is a user's record of work for one month of one year
type Timesheet struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Month     int       `db:"month" json:"month"`
	Year      int       `db:"year" json:"year"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// TimesheetEntry is a single day's logged hours within a timesheet
type TimesheetEntry struct {
	ID          string          `db:"id" json:"id"`
	TimesheetID string          `db:"timesheet_id" json:"timesheetId"`
	Date        Date            `db:"work_date" json:"date"`
	HoursWorked decimal.Decimal `db:"hours_worked" json:"hoursWorked"`
	Note        string          `db:"note" json:"note"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}
