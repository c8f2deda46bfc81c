package models

import "github.com/shopspring/decimal"

// Request models
type SignUpRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Name            string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	HourlyRate Quantity `json:"hourlyRate" binding:"required"`
}

type CreateTimesheetRequest struct {
	Month int `json:"month" binding:"required"`
	Year  int `json:"year" binding:"required"`
}

type AddEntryRequest struct {
	Date        string   `json:"date" binding:"required"`
	HoursWorked Quantity `json:"hoursWorked" binding:"required"`
	Note        string   `json:"note"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type ProfileResponse struct {
	Status     string          `json:"status"`
	UserID     string          `json:"userId"`
	Email      string          `json:"email,omitempty"`
	Name       string          `json:"name,omitempty"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
}

type TimesheetResponse struct {
	Status    string    `json:"status"`
	Timesheet Timesheet `json:"timesheet"`
}

type TimesheetSummary struct {
	Timesheet
	TotalHours  decimal.Decimal `json:"totalHours"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type TimesheetListResponse struct {
	Status     string             `json:"status"`
	Timesheets []TimesheetSummary `json:"timesheets"`
}

type EntryView struct {
	TimesheetEntry
	DailyAmount decimal.Decimal `json:"dailyAmount"`
}

type TimesheetDetailResponse struct {
	Status      string          `json:"status"`
	Timesheet   Timesheet       `json:"timesheet"`
	Entries     []EntryView     `json:"entries"`
	HourlyRate  decimal.Decimal `json:"hourlyRate"`
	TotalHours  decimal.Decimal `json:"totalHours"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type EntryResponse struct {
	Status string         `json:"status"`
	Entry  TimesheetEntry `json:"entry"`
}

type DashboardResponse struct {
	Status            string          `json:"status"`
	Month             int             `json:"month"`
	Year              int             `json:"year"`
	HourlyRate        decimal.Decimal `json:"hourlyRate"`
	CurrentTimesheet  *Timesheet      `json:"currentTimesheet"`
	RecentTimesheets  []Timesheet     `json:"recentTimesheets"`
	CurrentTotal      decimal.Decimal `json:"currentTotal"`
	PreviousTotal     decimal.Decimal `json:"previousTotal"`
	AverageDailyHours decimal.Decimal `json:"averageDailyHours"`
}

// TimesheetExport is a rendered export ready to be written as CSV
type TimesheetExport struct {
	Filename string
	Rows     [][]string
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
