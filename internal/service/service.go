package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/timesheet-server/internal/config"
	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/rongwang/timesheet-server/internal/repository"
	"github.com/rongwang/timesheet-server/internal/timesheet"
	"github.com/rongwang/timesheet-server/internal/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// recentTimesheets is how many timesheets the dashboard lists
const recentTimesheets = 6

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	// Profile
	GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.ProfileResponse, error)

	// Dashboard; a zero month or year means the current one
	Dashboard(ctx context.Context, userID string, month, year int) (*models.DashboardResponse, error)

	// Timesheet operations
	ListTimesheets(ctx context.Context, userID string) (*models.TimesheetListResponse, error)
	CreateTimesheet(ctx context.Context, userID string, req models.CreateTimesheetRequest) (*models.TimesheetResponse, error)
	GetTimesheet(ctx context.Context, userID, timesheetID string) (*models.TimesheetDetailResponse, error)
	DeleteTimesheet(ctx context.Context, userID, timesheetID string) error

	// Entry operations
	AddEntry(ctx context.Context, userID, timesheetID string, req models.AddEntryRequest) (*models.EntryResponse, error)
	DeleteEntry(ctx context.Context, userID, timesheetID, entryID string) error

	// Export
	ExportTimesheet(ctx context.Context, userID, timesheetID string) (*models.TimesheetExport, error)
	ExportByPeriod(ctx context.Context, email string, month, year int) (*models.TimesheetExport, error)

	Health(ctx context.Context) error
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	logger        *utils.Logger
	now           func() time.Time
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, auth config.AuthConfig, logger *utils.Logger) *DefaultService {
	if logger == nil {
		logger = utils.NopLogger()
	}
	tokenDuration := auth.TokenTTL
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}

	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(auth.JWTSecret),
		tokenDuration: tokenDuration,
		logger:        logger.WithComponent(utils.ComponentService),
		now:           time.Now,
	}
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, &timesheet.ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	// Create the user with its zero-rate profile
	user := &models.User{
		Email:    normalizeEmail(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Password: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up", utils.FieldUserID, user.ID)

	return &models.AuthResponse{
		Status: "success",
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	// Get the user
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, timesheet.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Generate JWT token
	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// Profile methods

// GetProfile returns the user's profile, creating it on first access. A token
// whose user has since been removed yields ErrNotFound.
func (s *DefaultService) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	profile, err := s.repo.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting profile: %w", err)
	}

	return &models.ProfileResponse{
		Status:     "success",
		UserID:     profile.UserID,
		Email:      user.Email,
		Name:       user.Name,
		HourlyRate: profile.HourlyRate,
	}, nil
}

func (s *DefaultService) UpdateProfile(
	ctx context.Context,
	userID string,
	req models.UpdateProfileRequest,
) (*models.ProfileResponse, error) {
	rate, err := timesheet.ParseRate(string(req.HourlyRate))
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.SetHourlyRate(ctx, userID, rate)
	if err != nil {
		return nil, fmt.Errorf("error updating hourly rate: %w", err)
	}

	s.logger.InfoContext(ctx, "hourly rate updated", utils.FieldUserID, userID)

	return &models.ProfileResponse{
		Status:     "success",
		UserID:     profile.UserID,
		HourlyRate: profile.HourlyRate,
	}, nil
}

// Dashboard computes the period statistics and lists the most recent timesheets
func (s *DefaultService) Dashboard(ctx context.Context, userID string, month, year int) (*models.DashboardResponse, error) {
	now := s.now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if err := timesheet.ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	timesheets, err := s.repo.GetUserTimesheets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting timesheets: %w", err)
	}

	entries, err := s.repo.GetUserEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting entries: %w", err)
	}

	rate := s.rateFor(ctx, userID)
	summary := timesheet.Summarize(month, year, timesheets, entries, rate)

	timesheet.SortByPeriod(timesheets)
	recent := timesheets
	if len(recent) > recentTimesheets {
		recent = recent[:recentTimesheets]
	}

	return &models.DashboardResponse{
		Status:            "success",
		Month:             month,
		Year:              year,
		HourlyRate:        rate,
		CurrentTimesheet:  summary.Current,
		RecentTimesheets:  recent,
		CurrentTotal:      summary.CurrentTotal,
		PreviousTotal:     summary.PreviousTotal,
		AverageDailyHours: summary.AverageDailyHours,
	}, nil
}

// Timesheet operations
func (s *DefaultService) ListTimesheets(ctx context.Context, userID string) (*models.TimesheetListResponse, error) {
	timesheets, err := s.repo.GetUserTimesheets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting timesheets: %w", err)
	}

	entries, err := s.repo.GetUserEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting entries: %w", err)
	}

	rate := s.rateFor(ctx, userID)
	summaries := make([]models.TimesheetSummary, 0, len(timesheets))
	for _, ts := range timesheets {
		totals := timesheet.Aggregate(timesheet.EntriesOf(entries, ts.ID), rate)
		summaries = append(summaries, models.TimesheetSummary{
			Timesheet:   ts,
			TotalHours:  totals.Hours,
			TotalAmount: totals.Amount,
		})
	}

	return &models.TimesheetListResponse{
		Status:     "success",
		Timesheets: summaries,
	}, nil
}

// CreateTimesheet opens the timesheet for month/year. A second timesheet for the
// same period fails with timesheet.ErrDuplicate and leaves the first untouched.
func (s *DefaultService) CreateTimesheet(
	ctx context.Context,
	userID string,
	req models.CreateTimesheetRequest,
) (*models.TimesheetResponse, error) {
	if err := timesheet.ValidatePeriod(req.Month, req.Year); err != nil {
		return nil, err
	}

	ts := &models.Timesheet{
		UserID: userID,
		Month:  req.Month,
		Year:   req.Year,
	}

	if err := s.repo.CreateTimesheet(ctx, ts); err != nil {
		return nil, fmt.Errorf("error creating timesheet: %w", err)
	}

	s.logger.InfoContext(ctx, "timesheet created",
		utils.FieldUserID, userID,
		utils.FieldTimesheetID, ts.ID,
	)

	return &models.TimesheetResponse{
		Status:    "success",
		Timesheet: *ts,
	}, nil
}

func (s *DefaultService) GetTimesheet(
	ctx context.Context,
	userID string,
	timesheetID string,
) (*models.TimesheetDetailResponse, error) {
	ts, err := s.repo.GetTimesheet(ctx, userID, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("error getting timesheet: %w", err)
	}

	entries, err := s.repo.GetTimesheetEntries(ctx, ts.ID)
	if err != nil {
		return nil, fmt.Errorf("error getting entries: %w", err)
	}

	rate := s.rateFor(ctx, userID)
	timesheet.SortEntries(entries)

	views := make([]models.EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, models.EntryView{
			TimesheetEntry: e,
			DailyAmount:    timesheet.Amount(e.HoursWorked, rate),
		})
	}
	totals := timesheet.Aggregate(entries, rate)

	return &models.TimesheetDetailResponse{
		Status:      "success",
		Timesheet:   *ts,
		Entries:     views,
		HourlyRate:  rate,
		TotalHours:  totals.Hours,
		TotalAmount: totals.Amount,
	}, nil
}

func (s *DefaultService) DeleteTimesheet(ctx context.Context, userID, timesheetID string) error {
	if err := s.repo.DeleteTimesheet(ctx, userID, timesheetID); err != nil {
		return fmt.Errorf("error deleting timesheet: %w", err)
	}

	s.logger.InfoContext(ctx, "timesheet deleted",
		utils.FieldUserID, userID,
		utils.FieldTimesheetID, timesheetID,
	)

	return nil
}

// Entry operations

// AddEntry validates the whole request before touching storage, then appends
// the entry to a timesheet the user owns. The ownership check and the insert
// are one statement.
func (s *DefaultService) AddEntry(
	ctx context.Context,
	userID string,
	timesheetID string,
	req models.AddEntryRequest,
) (*models.EntryResponse, error) {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, &timesheet.ValidationError{Field: "date", Message: "expected YYYY-MM-DD"}
	}

	hours, err := timesheet.ParseHours(string(req.HoursWorked))
	if err != nil {
		return nil, err
	}

	if err := timesheet.ValidateNote(req.Note); err != nil {
		return nil, err
	}

	entry := &models.TimesheetEntry{
		TimesheetID: timesheetID,
		Date:        date,
		HoursWorked: hours,
		Note:        req.Note,
	}

	if err := s.repo.AddEntry(ctx, userID, entry); err != nil {
		return nil, fmt.Errorf("error adding entry: %w", err)
	}

	s.logger.InfoContext(ctx, "entry added",
		utils.FieldTimesheetID, timesheetID,
		utils.FieldEntryID, entry.ID,
	)

	return &models.EntryResponse{
		Status: "success",
		Entry:  *entry,
	}, nil
}

// DeleteEntry removes an entry of a timesheet the user owns. An entry id that
// does not exist or belongs to another timesheet is ignored.
func (s *DefaultService) DeleteEntry(ctx context.Context, userID, timesheetID, entryID string) error {
	if _, err := s.repo.GetTimesheet(ctx, userID, timesheetID); err != nil {
		return fmt.Errorf("error getting timesheet: %w", err)
	}

	deleted, err := s.repo.DeleteEntry(ctx, userID, timesheetID, entryID)
	if err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}

	if deleted {
		s.logger.InfoContext(ctx, "entry deleted",
			utils.FieldTimesheetID, timesheetID,
			utils.FieldEntryID, entryID,
		)
	} else {
		s.logger.DebugContext(ctx, "entry delete matched nothing",
			utils.FieldTimesheetID, timesheetID,
			utils.FieldEntryID, entryID,
		)
	}

	return nil
}

// Export
func (s *DefaultService) ExportTimesheet(ctx context.Context, userID, timesheetID string) (*models.TimesheetExport, error) {
	ts, err := s.repo.GetTimesheet(ctx, userID, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("error getting timesheet: %w", err)
	}

	return s.export(ctx, ts)
}

// ExportByPeriod exports the timesheet of the user with the given email for month/year
func (s *DefaultService) ExportByPeriod(ctx context.Context, email string, month, year int) (*models.TimesheetExport, error) {
	if err := timesheet.ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	ts, err := s.repo.GetTimesheetByPeriod(ctx, user.ID, month, year)
	if err != nil {
		return nil, fmt.Errorf("error getting timesheet: %w", err)
	}

	return s.export(ctx, ts)
}

func (s *DefaultService) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Helper methods
func (s *DefaultService) export(ctx context.Context, ts *models.Timesheet) (*models.TimesheetExport, error) {
	entries, err := s.repo.GetTimesheetEntries(ctx, ts.ID)
	if err != nil {
		return nil, fmt.Errorf("error getting entries: %w", err)
	}

	return &models.TimesheetExport{
		Filename: timesheet.ExportFilename(*ts),
		Rows:     timesheet.ExportRows(entries, s.rateFor(ctx, ts.UserID)),
	}, nil
}

// rateFor returns the user's hourly rate. It never fails: a missing profile or a
// lookup error yields zero.
func (s *DefaultService) rateFor(ctx context.Context, userID string) decimal.Decimal {
	rate, err := s.repo.GetHourlyRate(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "hourly rate lookup failed, using zero",
			utils.FieldUserID, userID,
			utils.FieldError, err,
		)
		return decimal.Zero
	}
	return rate
}

func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	now := s.now()
	expirationTime := now.Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub": user.ID, // subject
		"exp": expirationTime.Unix(),
		"iat": now.Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
